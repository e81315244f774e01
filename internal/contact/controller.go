package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"sync"
)

// Status is the submission lifecycle flag.
type Status int

const (
	StatusIdle Status = iota
	StatusSending
)

func (s Status) String() string {
	if s == StatusSending {
		return "sending"
	}
	return "idle"
}

// FailureNotice is shown to the visitor when the last send did not go through.
const FailureNotice = "Sorry, your message could not be sent. Please try again."

// SuccessNotice confirms a delivered message.
const SuccessNotice = "Thank you for your message! I'll get back to you soon."

var (
	// ErrInvalid is returned by Submit when validation found problems.
	ErrInvalid = errors.New("contact form is invalid")
	// ErrSubmitInFlight is returned by Submit while an earlier send is pending.
	ErrSubmitInFlight = errors.New("contact form submission already in flight")
)

// Receipt is the transport's success response.
type Receipt struct {
	Status int
	Text   string
}

// Sender delivers a submitted form.
type Sender interface {
	Send(ctx context.Context, form Form) (Receipt, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, form Form) (Receipt, error)

// Send calls fn.
func (fn SenderFunc) Send(ctx context.Context, form Form) (Receipt, error) {
	return fn(ctx, form)
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Form    Form
	Errors  Errors
	Status  Status
	Failure string
}

// Sending reports whether a send is pending.
func (s Snapshot) Sending() bool { return s.Status == StatusSending }

// Controller owns one contact form. It is safe for concurrent use.
type Controller struct {
	sender   Sender
	observer func(Snapshot)

	mu      sync.Mutex
	form    Form
	errors  Errors
	status  Status
	failure string
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers fn to receive a snapshot after every Submit
// transition: validation, start of sending and resolution.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) { c.observer = fn }
}

// NewController returns an empty form bound to sender.
func NewController(sender Sender, opts ...Option) *Controller {
	c := &Controller{sender: sender, errors: Errors{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpdateField sets one field. It never validates.
func (c *Controller) UpdateField(field Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Set(field, value)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Form:    c.form,
		Errors:  maps.Clone(c.errors),
		Status:  c.status,
		Failure: c.failure,
	}
}

// Submit validates the form and, when valid, hands it to the sender.
//
// On success the form and errors are cleared. On a transport failure the form
// is kept for resubmission and the failure notice is set. The status is idle
// again whenever Submit returns.
func (c *Controller) Submit(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	if c.status == StatusSending {
		c.mu.Unlock()
		return Receipt{}, ErrSubmitInFlight
	}
	c.failure = ""
	c.errors = Validate(c.form)
	if len(c.errors) > 0 {
		c.mu.Unlock()
		c.notify()
		return Receipt{}, ErrInvalid
	}
	c.status = StatusSending
	form := c.form
	c.mu.Unlock()
	c.notify()

	settled := false
	defer func() {
		// A panicking sender must not leave the form stuck in sending.
		if !settled {
			c.mu.Lock()
			c.status = StatusIdle
			c.mu.Unlock()
			c.notify()
		}
	}()

	receipt, err := c.sender.Send(ctx, form)

	c.mu.Lock()
	settled = true
	c.status = StatusIdle
	if err != nil {
		c.failure = FailureNotice
	} else {
		c.form = Form{}
		c.errors = Errors{}
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		log.Printf("contact: send failed: %v", err)
		return Receipt{}, fmt.Errorf("send contact message: %w", err)
	}
	log.Printf("contact: message sent (status %d %s)", receipt.Status, receipt.Text)
	return receipt, nil
}

func (c *Controller) notify() {
	if c.observer != nil {
		c.observer(c.Snapshot())
	}
}
