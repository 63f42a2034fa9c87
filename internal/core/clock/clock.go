// Package clock implements the wall-clock frame loop driving the engine:
// a stopped→running→stopped state machine that produces (delta, elapsed)
// ticks and supports an optional frame-rate cap.
package clock

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/b99631944-eng/Bennett-lab/internal/core/observability/log"
)

// DefaultInterval is the granularity of the internal tick timer, standing in
// for the host's animation-frame callback. The frame-rate cap works on top
// of it, so it is deliberately finer than any sane target FPS.
const DefaultInterval = time.Second / 240

// Callback is invoked once per delivered frame with the seconds since the
// previous frame and the seconds since the loop started.
type Callback func(delta, elapsed float64)

// Option configures a Clock at construction.
type Option func(*Clock)

// WithNow replaces the time source. Tests install a controllable source and
// drive frames through Tick directly.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// WithInterval sets the internal timer granularity. Zero disables the
// internal loop entirely: the host schedules frames by calling Tick itself.
func WithInterval(d time.Duration) Option {
	return func(c *Clock) { c.interval = d }
}

// WithTargetFPS sets the initial frame-rate cap. Zero means uncapped.
func WithTargetFPS(fps int) Option {
	return func(c *Clock) { c.targetFPS = fps }
}

// Clock drives the per-frame callback from wall time. One clock never runs
// two frames concurrently: frames are produced by a single loop goroutine
// (or by the host, when the internal loop is disabled) and tick n+1 is not
// scheduled before the callback for tick n returns.
type Clock struct {
	logger   *log.Logger
	now      func() time.Time
	interval time.Duration

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	cb        Callback
	targetFPS int

	startTime  time.Time
	lastFrame  time.Time
	delta      float64
	elapsed    float64
	frameCount uint64

	fps       int
	fpsAccum  float64 // milliseconds since the estimate was last folded
	fpsFrames int

	wg sync.WaitGroup
}

// New creates a stopped clock.
func New(logger *log.Logger, opts ...Option) *Clock {
	c := &Clock{
		logger:   logger,
		now:      time.Now,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start transitions to running and begins delivering frames to cb. Starting
// an already-running clock is not an error: it logs a warning and leaves the
// running loop untouched.
func (c *Clock) Start(cb Callback) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.logger.Warn("clock already running, start ignored")
		return
	}

	// A previous loop may still be draining its final tick.
	c.mu.Unlock()
	c.wg.Wait()
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.logger.Warn("clock already running, start ignored")
		return
	}

	now := c.now()
	c.running = true
	c.cb = cb
	c.stopCh = make(chan struct{})
	c.startTime = now
	c.lastFrame = now
	c.delta = 0
	c.elapsed = 0
	c.frameCount = 0
	c.fps = 0
	c.fpsAccum = 0
	c.fpsFrames = 0
	interval := c.interval
	stopCh := c.stopCh
	c.mu.Unlock()

	c.logger.Debug("clock started", zap.Int("target_fps", c.TargetFPS()))

	if interval > 0 {
		c.wg.Add(1)
		go c.loop(stopCh, interval)
	}
}

// Stop cancels the pending tick and transitions to stopped. An in-flight
// callback always runs to completion. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	c.mu.Unlock()

	c.logger.Debug("clock stopped")
}

// Reset re-bases start and last-frame time to now and zeroes every counter
// without stopping the loop.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.startTime = now
	c.lastFrame = now
	c.delta = 0
	c.elapsed = 0
	c.frameCount = 0
	c.fps = 0
	c.fpsAccum = 0
	c.fpsFrames = 0
}

// Tick advances the clock by one host frame and reports whether the callback
// fired. The internal loop calls it once per timer expiry; hosts that
// disabled the loop (and tests) call it directly.
//
// A frame arriving sooner than the target-FPS interval is skipped outright:
// the callback is not invoked and the last-frame time is not advanced, so
// the skipped time rolls into the next delivered frame.
func (c *Clock) Tick() bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return false
	}

	now := c.now()
	deltaMs := float64(now.Sub(c.lastFrame)) / float64(time.Millisecond)

	if c.targetFPS > 0 {
		minMs := 1000.0 / float64(c.targetFPS)
		if deltaMs < minMs {
			c.mu.Unlock()
			return false
		}
	}

	c.delta = deltaMs / 1000.0
	c.elapsed = now.Sub(c.startTime).Seconds()
	c.frameCount++

	// Rolling one-second FPS estimate.
	c.fpsAccum += deltaMs
	c.fpsFrames++
	if c.fpsAccum >= 1000.0 {
		c.fps = int(math.Round(float64(c.fpsFrames) * 1000.0 / c.fpsAccum))
		c.fpsAccum = 0
		c.fpsFrames = 0
	}

	c.lastFrame = now
	cb := c.cb
	delta, elapsed := c.delta, c.elapsed
	c.mu.Unlock()

	if cb != nil {
		cb(delta, elapsed)
	}
	return true
}

// loop delivers frames until the stop channel closes. Frames are strictly
// sequential: the timer is re-armed only after Tick (and the callback inside
// it) returns.
func (c *Clock) loop(stopCh <-chan struct{}, interval time.Duration) {
	defer c.wg.Done()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-timer.C:
		}

		select {
		case <-stopCh:
			return
		default:
		}

		c.Tick()
		timer.Reset(interval)
	}
}

// SetTargetFPS changes the frame-rate cap at runtime. The new minimum
// inter-frame interval applies from the next tick; zero removes the cap.
func (c *Clock) SetTargetFPS(fps int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fps < 0 {
		fps = 0
	}
	c.targetFPS = fps
}

// TargetFPS returns the current frame-rate cap, zero when uncapped.
func (c *Clock) TargetFPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetFPS
}

// Delta returns the seconds between the two most recent delivered frames.
func (c *Clock) Delta() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delta
}

// Elapsed returns the seconds from loop start to the most recent frame.
func (c *Clock) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// FrameCount returns the number of delivered frames since Start or Reset.
func (c *Clock) FrameCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount
}

// FPS returns the most recent one-second frame-rate estimate.
func (c *Clock) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsRunning reports whether the clock is between Start and Stop.
func (c *Clock) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
