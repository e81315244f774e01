// Package nav tracks which page section is active, whether the mobile menu is
// open and whether the viewport is wide enough for the desktop navigation.
//
// The transitions are pure functions over State. Tracker binds them to a
// Layout that answers scroll and geometry queries, so the same logic runs in
// the browser and in tests.
package nav

import "time"

// SectionID names a navigable page section.
type SectionID string

const (
	SectionHello    SectionID = "hello"
	SectionAbout    SectionID = "about"
	SectionProjects SectionID = "projects"
	SectionContact  SectionID = "contact"
)

// Sections is the fixed top-to-bottom order of the page.
var Sections = []SectionID{SectionHello, SectionAbout, SectionProjects, SectionContact}

// Known reports whether id is one of Sections.
func Known(id SectionID) bool {
	for _, s := range Sections {
		if s == id {
			return true
		}
	}
	return false
}

// Bounds is a section's measured vertical extent in page coordinates.
type Bounds struct {
	Top    float64
	Height float64
}

// Contains reports whether y lies in [Top, Top+Height).
func (b Bounds) Contains(y float64) bool {
	return y >= b.Top && y < b.Top+b.Height
}

// Options are the fixed layout constants.
type Options struct {
	// HeaderOffset is the height of the fixed header in pixels.
	HeaderOffset float64
	// WideThreshold is the viewport width at which the desktop nav is shown.
	WideThreshold float64
	// MenuCloseDelay lets the menu close animation finish before scrolling.
	MenuCloseDelay time.Duration
}

// DefaultOptions matches the stylesheet breakpoints.
func DefaultOptions() Options {
	return Options{
		HeaderOffset:   80,
		WideThreshold:  768,
		MenuCloseDelay: 300 * time.Millisecond,
	}
}

// State is the navigation state rendered by the page.
type State struct {
	Active   SectionID
	MenuOpen bool
	Wide     bool
}

// Initial is the state at page load for a viewport of the given width.
func Initial(width float64, opts Options) State {
	return Resize(State{Active: SectionHello}, width, opts)
}

// Scroll returns the state after the page scrolled to scrollY. The first
// section containing scrollY+HeaderOffset becomes active. When no section
// matches, the previous active section is kept.
func Scroll(s State, scrollY float64, bounds map[SectionID]Bounds, opts Options) State {
	pos := scrollY + opts.HeaderOffset
	for _, id := range Sections {
		b, ok := bounds[id]
		if !ok {
			continue
		}
		if b.Contains(pos) {
			s.Active = id
			return s
		}
	}
	return s
}

// Navigate returns the state after a navigation link to target was clicked.
// Unknown targets leave the state unchanged.
func Navigate(s State, target SectionID) State {
	if !Known(target) {
		return s
	}
	s.Active = target
	s.MenuOpen = false
	return s
}

// Resize returns the state for a new viewport width. Wide viewports have no
// collapsible menu, so it is closed.
func Resize(s State, width float64, opts Options) State {
	s.Wide = width >= opts.WideThreshold
	if s.Wide {
		s.MenuOpen = false
	}
	return s
}

// ToggleMenu flips the mobile menu.
func ToggleMenu(s State) State {
	s.MenuOpen = !s.MenuOpen
	return s
}

// ScrollTarget is the scroll offset that puts the top of b just below the header.
func ScrollTarget(b Bounds, opts Options) float64 {
	y := b.Top - opts.HeaderOffset
	if y < 0 {
		return 0
	}
	return y
}
