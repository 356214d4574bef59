package interstitial

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNilNavigator is returned by New when no navigator is supplied.
	ErrNilNavigator = errors.New("interstitial: navigator is nil")

	// ErrNoTarget is returned by Redirect while the destination is still
	// unknown.
	ErrNoTarget = errors.New("interstitial: no target url yet")

	// ErrRedirectPending is returned by Redirect while another attempt
	// holds the latch.
	ErrRedirectPending = errors.New("interstitial: redirect already in flight")

	// ErrFinished is returned by Redirect after the controller reached a
	// terminal state.
	ErrFinished = errors.New("interstitial: page view already finished")
)

// Navigator performs the actual page replacement. Replace must swap the
// current history entry rather than push a new one, so the interstitial
// never appears in the back stack.
type Navigator interface {
	Replace(url string) error
}

// Config carries the per-view inputs of a Controller.
type Config struct {
	// Target is the destination URL. Leave empty when it is not known yet
	// and supply it later with SetTarget; the countdown holds in
	// StateWaiting until then.
	Target string

	// Seconds is the countdown length. Defaults to 10.
	Seconds int

	// PageURL is the interstitial's own address, used to tell a genuine
	// back navigation apart from a reload.
	PageURL string

	// Referrer is the page the visitor arrived from. When empty there is
	// nowhere to go back to and NotifyBack is a no-op.
	Referrer string

	// Clock drives the countdown. Defaults to SystemClock().
	Clock Clock

	// Report receives outcome events. Optional.
	Report ReportFunc
}

// Controller runs one interstitial page view: a countdown toward an
// automatic redirect, a skip-ahead path, and an at-most-once latch shared
// by both. All methods are safe for concurrent use.
type Controller struct {
	nav    Navigator
	clock  Clock
	report ReportFunc

	pageURL  string
	referrer string
	seconds  int

	mu       sync.Mutex
	state    State
	target   string
	timeLeft int
	elapsed  int
	latched  bool
	lastErr  error

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Snapshot is a point-in-time copy of the controller for rendering.
type Snapshot struct {
	State    State
	Target   string
	TimeLeft int
	Elapsed  int
	LastErr  error
}

// New builds a Controller and starts its countdown goroutine. The caller
// must Close it to release the timer.
func New(nav Navigator, cfg Config) (*Controller, error) {
	if nav == nil {
		return nil, ErrNilNavigator
	}
	if cfg.Seconds <= 0 {
		cfg.Seconds = 10
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}

	c := &Controller{
		nav:      nav,
		clock:    cfg.Clock,
		report:   cfg.Report,
		pageURL:  cfg.PageURL,
		referrer: cfg.Referrer,
		seconds:  cfg.Seconds,
		target:   strings.TrimSpace(cfg.Target),
		timeLeft: cfg.Seconds,
		done:     make(chan struct{}),
	}
	if c.target == "" {
		c.state = StateWaiting
	} else {
		c.state = StateCounting
	}

	c.wg.Add(1)
	go c.run()
	return c, nil
}

// Close stops the countdown goroutine and waits for it to exit. After
// Close returns no tick fires and no automatic redirect can start.
// In-flight state is left as is; Close is not an abandonment signal.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// Snapshot returns the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:    c.state,
		Target:   c.target,
		TimeLeft: c.timeLeft,
		Elapsed:  c.elapsed,
		LastErr:  c.lastErr,
	}
}

// SetTarget supplies a destination that was not known at construction.
// It moves the controller from StateWaiting to StateCounting. Empty URLs
// and calls in any other state are ignored.
func (c *Controller) SetTarget(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateWaiting {
		return
	}
	c.target = url
	c.timeLeft = c.seconds
	c.state = StateCounting
}

// Redirect is the skip-ahead path. It races the countdown for the same
// latch: whichever fires first performs the single navigation. After a
// failed attempt Redirect may be called again to retry.
func (c *Controller) Redirect() error {
	c.mu.Lock()
	switch c.state {
	case StateWaiting:
		c.mu.Unlock()
		return ErrNoTarget
	case StateRedirecting:
		c.mu.Unlock()
		return ErrRedirectPending
	case StateDone, StateAbandoned:
		c.mu.Unlock()
		return ErrFinished
	}
	if c.latched {
		c.mu.Unlock()
		return ErrRedirectPending
	}
	c.latched = true
	c.state = StateRedirecting
	target := c.target
	c.mu.Unlock()

	err := c.nav.Replace(target)
	c.finish(MethodManual, err)
	return err
}

// NotifyUnload records that the visitor left the page. It counts as an
// abandonment only while no redirect has been attempted.
func (c *Controller) NotifyUnload() {
	c.abandon()
}

// NotifyBack records a back navigation. Backing out only means anything
// when the visitor actually came from somewhere: with no referrer, or a
// referrer equal to the page itself, this is a reload and is ignored.
// A genuine back both abandons the countdown and sends the visitor to
// the referrer, so the interstitial never stays in view.
func (c *Controller) NotifyBack() {
	if c.referrer == "" || c.referrer == c.pageURL {
		return
	}
	if !c.abandon() {
		return
	}
	// Not a target redirect; the latch does not apply. Navigation failure
	// leaves the visitor where the host environment put them.
	_ = c.nav.Replace(c.referrer)
}

func (c *Controller) abandon() bool {
	c.mu.Lock()
	if c.state != StateWaiting && c.state != StateCounting {
		c.mu.Unlock()
		return false
	}
	c.state = StateAbandoned
	out := Outcome{
		Kind:     OutcomeAbandoned,
		Method:   MethodNone,
		TimeLeft: c.timeLeft,
		Elapsed:  c.elapsed,
	}
	c.mu.Unlock()
	c.emit(out)
	return true
}

func (c *Controller) run() {
	defer c.wg.Done()
	ticker := c.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C():
			c.tick()
		}
	}
}

// tick advances the elapsed counter whenever the visitor is still on the
// page, and the countdown only in StateCounting. The two move
// independently.
func (c *Controller) tick() {
	c.mu.Lock()
	switch c.state {
	case StateWaiting, StateRedirecting, StateFailed:
		c.elapsed++
		c.mu.Unlock()
		return
	case StateCounting:
		c.elapsed++
		if c.timeLeft > 0 {
			c.timeLeft--
		}
		if c.timeLeft > 0 || c.latched {
			c.mu.Unlock()
			return
		}
		c.latched = true
		c.state = StateRedirecting
		target := c.target
		c.mu.Unlock()

		err := c.nav.Replace(target)
		c.finish(MethodAuto, err)
	default:
		c.mu.Unlock()
	}
}

// finish resolves a redirect attempt. Success is terminal; failure
// releases the latch so a manual retry stays possible.
func (c *Controller) finish(method Method, err error) {
	c.mu.Lock()
	out := Outcome{
		Method:   method,
		TimeLeft: c.timeLeft,
		Elapsed:  c.elapsed,
	}
	if err != nil {
		c.latched = false
		c.lastErr = err
		c.state = StateFailed
		out.Kind = OutcomeFailed
		out.Err = err
	} else {
		c.lastErr = nil
		c.state = StateDone
		out.Kind = OutcomePerformed
	}
	c.mu.Unlock()
	c.emit(out)
}

func (c *Controller) emit(out Outcome) {
	if c.report != nil {
		c.report(out)
	}
}
