// Package scrolltop drives a "scroll to top" affordance.
//
// The affordance becomes visible once the page is scrolled past a threshold
// and, when clicked, smoothly scrolls the page back to the top. The page is
// reached only through the Viewport and Events capabilities, so a Control can
// run against a live session or a test fake.
//
//	c := scrolltop.New(session)
//	detach := c.Attach(session)
//	defer detach()
package scrolltop

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultThreshold is the scroll offset, in pixels, above which the
	// affordance is visible.
	DefaultThreshold = 300

	// DefaultSelector selects the affordance element.
	DefaultSelector = "a#scroll-to-top"

	// VisibleClass is the class toggled on the affordance.
	VisibleClass = "visible"

	// SlowDuration is the duration of the scroll back to the top.
	SlowDuration = 600 * time.Millisecond
)

// State is the visibility of the affordance.
type State int

const (
	Hidden State = iota
	Visible
)

// String returns "hidden" or "visible".
func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Viewport is the page the control reads and animates.
type Viewport interface {
	// ScrollTop returns the current vertical scroll offset.
	ScrollTop() int

	// SetClass adds (on) or removes (!on) class on the elements matching selector.
	SetClass(selector, class string, on bool) error

	// AnimateScrollTop scrolls smoothly to top over d.
	AnimateScrollTop(top int, d time.Duration) error
}

// Events subscribes to page events. Each subscription returns a function
// that removes it. Hosts suppress the default action of clicks delivered to
// an OnClick handler.
type Events interface {
	OnScroll(fn func()) (dispose func())
	OnClick(selector string, fn func()) (dispose func())
}

// Option configures a Control.
type Option func(*Control)

// WithLogger sets the logger used to report viewport failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Control) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnChange registers fn to be called after every state transition.
func WithOnChange(fn func(State)) Option {
	return func(c *Control) {
		c.onChange = fn
	}
}

// Control is the hidden/visible state machine for the affordance.
// It is safe for concurrent use.
type Control struct {
	viewport  Viewport
	threshold int
	selector  string
	logger    *slog.Logger
	onChange  func(State)

	// applyMu orders Updates end to end so the class on the page always
	// matches the committed state.
	applyMu sync.Mutex

	mu      sync.Mutex
	state   State
	applied bool
}

// New creates a Control over viewport. The control starts Hidden and has not
// touched the page yet.
func New(viewport Viewport, opts ...Option) *Control {
	c := &Control{
		viewport:  viewport,
		threshold: DefaultThreshold,
		selector:  DefaultSelector,
		logger:    slog.Default(),
		state:     Hidden,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StateFor returns the state for a scroll offset.
func (c *Control) StateFor(offset int) State {
	if offset > c.threshold {
		return Visible
	}
	return Hidden
}

// State returns the last computed state.
func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Update recomputes the state from the current scroll offset and applies the
// visible class when it changed. The first call always applies it.
func (c *Control) Update() State {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	next := c.StateFor(c.viewport.ScrollTop())

	c.mu.Lock()
	changed := next != c.state
	if !changed && c.applied {
		c.mu.Unlock()
		return next
	}
	c.state = next
	c.applied = true
	onChange := c.onChange
	c.mu.Unlock()

	if err := c.viewport.SetClass(c.selector, VisibleClass, next == Visible); err != nil {
		c.logger.Warn("scrolltop class update failed",
			"state", next.String(),
			"error", err)
	}
	if changed && onChange != nil {
		onChange(next)
	}
	return next
}

// Activate scrolls the page back to the top over SlowDuration.
func (c *Control) Activate() {
	if err := c.viewport.AnimateScrollTop(0, SlowDuration); err != nil {
		c.logger.Warn("scrolltop animation failed", "error", err)
	}
}

// Attach subscribes Update to scroll events and Activate to clicks on the
// affordance. The returned function removes both subscriptions; calling it
// more than once is safe.
func (c *Control) Attach(events Events) (detach func()) {
	offScroll := events.OnScroll(func() { c.Update() })
	offClick := events.OnClick(c.selector, c.Activate)

	var once sync.Once
	return func() {
		once.Do(func() {
			offScroll()
			offClick()
		})
	}
}
