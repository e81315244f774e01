package site

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/devfolio/internal/analytics"
	"github.com/Zachkp/devfolio/internal/contact"
	"github.com/Zachkp/devfolio/internal/content"
	"github.com/Zachkp/devfolio/internal/nav"
)

const busyMessage = "Your previous message is still being sent. Please wait a moment."

var errBusy = errors.New("contact submission already in flight for this client")

// inflightGuard allows one pending send per client.
type inflightGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{pending: make(map[string]struct{})}
}

func (g *inflightGuard) acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[key]; busy {
		return nil, false
	}
	g.pending[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.pending, key)
		g.mu.Unlock()
	}, true
}

// contactView is the template model of the contact form.
type contactView struct {
	Form    contact.Form
	Errors  map[string]string
	Failure string
	Success string
	Busy    string
}

func newContactView(snap contact.Snapshot) contactView {
	v := contactView{Form: snap.Form, Failure: snap.Failure, Errors: map[string]string{}}
	for field, msg := range snap.Errors {
		v.Errors[string(field)] = msg
	}
	return v
}

type homeView struct {
	Title     string
	Portfolio content.Portfolio
	Nav       nav.State
	Contact   contactView
}

func (s *Server) renderHome(c *gin.Context, status int, active nav.SectionID, view contactView) {
	c.HTML(status, "index.html", homeView{
		Title:     s.opts.Portfolio.Profile.Name,
		Portfolio: s.opts.Portfolio,
		Nav:       nav.State{Active: active},
		Contact:   view,
	})
}

func (s *Server) handleHome(c *gin.Context) {
	s.renderHome(c, http.StatusOK, nav.SectionHello, contactView{Errors: map[string]string{}})
}

// submit runs one contact submission for the requesting client and records
// its outcome.
func (s *Server) submit(c *gin.Context, form contact.Form) (contact.Snapshot, error) {
	release, ok := s.inflight.acquire(s.opts.Hasher.Hash(c.ClientIP()))
	if !ok {
		return contact.Snapshot{Form: form}, errBusy
	}
	defer release()

	ctrl := contact.NewController(s.opts.Sender)
	for _, field := range contact.Fields {
		if err := ctrl.UpdateField(field, form.Get(field)); err != nil {
			return contact.Snapshot{}, err
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.SendTimeout)
	defer cancel()
	_, err := ctrl.Submit(ctx)
	s.recordDelivery(context.WithoutCancel(c.Request.Context()), err)
	return ctrl.Snapshot(), err
}

func (s *Server) recordDelivery(ctx context.Context, err error) {
	d := analytics.Delivery{Transport: s.opts.Transport, Outcome: analytics.OutcomeSent}
	switch {
	case errors.Is(err, contact.ErrInvalid):
		d.Outcome = analytics.OutcomeRejected
	case err != nil:
		d.Outcome = analytics.OutcomeFailed
		d.Error = err.Error()
	}
	if recErr := s.opts.Store.RecordDelivery(ctx, d); recErr != nil {
		log.Printf("Error recording delivery: %v", recErr)
	}
}

// handleContactPost serves the plain form post. HTMX requests get the form
// fragment back, everything else the full page.
func (s *Server) handleContactPost(c *gin.Context) {
	form := contact.Form{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	}

	snap, err := s.submit(c, form)
	view := newContactView(snap)
	status := http.StatusOK
	switch {
	case errors.Is(err, errBusy):
		status = http.StatusTooManyRequests
		view.Busy = busyMessage
	case err == nil:
		view.Success = contact.SuccessNotice
	}

	if c.GetHeader("HX-Request") == "true" {
		c.HTML(status, "contact.html", view)
		return
	}
	s.renderHome(c, status, nav.SectionContact, view)
}

// handleContactAPI serves the wasm client.
func (s *Server) handleContactAPI(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	snap, err := s.submit(c, form)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "sent"})
	case errors.Is(err, errBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": busyMessage})
	case errors.Is(err, contact.ErrInvalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": snap.Errors})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": snap.Failure})
	}
}
