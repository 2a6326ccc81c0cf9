package session

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Controller owns the idle/running session state and drives the click
// engine on a background goroutine. At most one engine loop is live at a
// time; Stop waits for the loop to exit, so no orphaned loop survives a
// session teardown.
//
// The click counter persists across start/stop cycles within one run and
// is zero only at construction.
type Controller struct {
	clicker Clicker
	logger  Logger

	cps        atomic.Int32
	button     atomic.Int32
	clickCount atomic.Uint64
	running    atomic.Bool

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewController(cfg Config, clicker Clicker, logger Logger) (*Controller, error) {
	if clicker == nil {
		return nil, fmt.Errorf("clicker is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	cps := cfg.CPS
	if cps == 0 {
		cps = DefaultCPS
	}

	c := &Controller{clicker: clicker, logger: logger}
	c.cps.Store(int32(clampCPS(cps)))
	c.button.Store(int32(cfg.Button))
	if cfg.StartRunning {
		c.Start()
	}
	return c, nil
}

// Start moves the session from idle to running by spawning the engine
// loop. It is a no-op when the loop is already live; there is never a
// second concurrent loop.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopCh != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	c.stopCh = stop
	c.doneCh = done
	c.running.Store(true)
	go c.engineLoop(stop, done)

	c.logger.Info("Session started", "cps", c.CPS(), "button", c.Button().String())
}

// Stop signals the engine loop and waits for it to exit. Stopping is
// cooperative: the loop observes the signal at its next iteration
// boundary, so worst-case latency is one click interval. No-op when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	stop := c.stopCh
	done := c.doneCh
	c.stopCh = nil
	c.doneCh = nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	c.logger.Info("Session stopped", "clicks", c.ClickCount())
}

// Toggle flips the session between running and idle.
func (c *Controller) Toggle() {
	if c.running.Load() {
		c.Stop()
		return
	}
	c.Start()
}

// SetRate parses a raw slider value and updates the click rate. A live
// engine picks the new rate up on its next cycle. The previous rate is
// kept when parsing fails.
func (c *Controller) SetRate(raw string) error {
	cps, err := ParseRate(raw)
	if err != nil {
		return err
	}
	c.cps.Store(int32(cps))
	return nil
}

// SetButton maps a UI selection ("Left" or "Right") to a mouse button.
// The previous selection is kept for unknown values.
func (c *Controller) SetButton(selection string) error {
	switch strings.TrimSpace(selection) {
	case "Left":
		c.button.Store(int32(ButtonLeft))
	case "Right":
		c.button.Store(int32(ButtonRight))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownButtonSelection, selection)
	}
	return nil
}

func (c *Controller) CPS() int {
	return int(c.cps.Load())
}

func (c *Controller) Button() Button {
	return Button(c.button.Load())
}

func (c *Controller) ClickCount() uint64 {
	return c.clickCount.Load()
}

func (c *Controller) Running() bool {
	return c.running.Load()
}

// Snapshot returns the current session state for display.
func (c *Controller) Snapshot() State {
	return State{
		Running:    c.Running(),
		ClickCount: c.ClickCount(),
		CPS:        c.CPS(),
		Button:     c.Button(),
	}
}

func (c *Controller) engineLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer c.running.Store(false)

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := c.clickOnce(); err != nil {
			c.logger.Warn("Click injection failed", "err", err)
		}
		if !sleepWithStop(stop, ClickInterval(c.CPS())) {
			return
		}
	}
}

// clickOnce performs a single click and bumps the shared counter. The
// counter counts attempts; injection is best-effort.
func (c *Controller) clickOnce() error {
	err := c.clicker.Click(c.Button())
	c.clickCount.Add(1)
	return err
}

func sleepWithStop(stop <-chan struct{}, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}
