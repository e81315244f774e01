package nav

import (
	"sync"
	"time"
)

// Layout is the rendering surface as seen by the tracker.
type Layout interface {
	ScrollY() float64
	ViewportWidth() float64
	// SectionBounds measures a section. ok is false when it is not rendered.
	SectionBounds(id SectionID) (b Bounds, ok bool)
	// ScrollTo smoothly scrolls the viewport to y.
	ScrollTo(y float64)
}

// Tracker owns the navigation state of one page.
type Tracker struct {
	layout    Layout
	opts      Options
	afterFunc func(time.Duration, func())
	onChange  func(State)

	mu    sync.Mutex
	state State
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithOptions overrides DefaultOptions.
func WithOptions(opts Options) TrackerOption {
	return func(t *Tracker) { t.opts = opts }
}

// WithAfterFunc replaces time.AfterFunc for the deferred scroll.
func WithAfterFunc(fn func(time.Duration, func())) TrackerOption {
	return func(t *Tracker) { t.afterFunc = fn }
}

// WithOnChange registers fn to be called with the new state after every
// transition that changed it.
func WithOnChange(fn func(State)) TrackerOption {
	return func(t *Tracker) { t.onChange = fn }
}

// NewTracker measures the viewport once and returns a tracker in the initial state.
func NewTracker(layout Layout, options ...TrackerOption) *Tracker {
	t := &Tracker{
		layout: layout,
		opts:   DefaultOptions(),
		afterFunc: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
	for _, opt := range options {
		opt(t)
	}
	t.state = Initial(layout.ViewportWidth(), t.opts)
	return t
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// HandleScroll updates the active section from the current scroll offset.
func (t *Tracker) HandleScroll() State {
	bounds := make(map[SectionID]Bounds, len(Sections))
	for _, id := range Sections {
		if b, ok := t.layout.SectionBounds(id); ok {
			bounds[id] = b
		}
	}
	scrollY := t.layout.ScrollY()
	return t.apply(func(s State) State {
		return Scroll(s, scrollY, bounds, t.opts)
	})
}

// HandleResize reclassifies the viewport width.
func (t *Tracker) HandleResize() State {
	width := t.layout.ViewportWidth()
	return t.apply(func(s State) State {
		return Resize(s, width, t.opts)
	})
}

// ToggleMenu flips the mobile menu.
func (t *Tracker) ToggleMenu() State {
	return t.apply(ToggleMenu)
}

// NavigateTo activates target, closes the menu and, once the menu has had
// time to close, scrolls target to just below the header.
func (t *Tracker) NavigateTo(target SectionID) State {
	if !Known(target) {
		return t.State()
	}
	next := t.apply(func(s State) State {
		return Navigate(s, target)
	})
	t.afterFunc(t.opts.MenuCloseDelay, func() {
		b, ok := t.layout.SectionBounds(target)
		if !ok {
			return
		}
		t.layout.ScrollTo(ScrollTarget(b, t.opts))
	})
	return next
}

func (t *Tracker) apply(transition func(State) State) State {
	t.mu.Lock()
	prev := t.state
	t.state = transition(prev)
	next := t.state
	t.mu.Unlock()

	if next != prev && t.onChange != nil {
		t.onChange(next)
	}
	return next
}
