package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b99631944-eng/Bennett-lab/internal/core/observability/log"
)

// fakeTime is a hand-cranked time source for deterministic ticks.
type fakeTime struct {
	current time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{current: time.Unix(1000, 0)}
}

func (f *fakeTime) Now() time.Time          { return f.current }
func (f *fakeTime) Advance(d time.Duration) { f.current = f.current.Add(d) }

// manualClock builds a clock without the internal loop; tests advance the
// fake time and call Tick themselves.
func manualClock(ft *fakeTime, opts ...Option) *Clock {
	base := []Option{WithNow(ft.Now), WithInterval(0)}
	return New(log.Nop(), append(base, opts...)...)
}

func TestStartStopStateMachine(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft)

	assert.False(t, c.IsRunning())
	c.Start(func(float64, float64) {})
	assert.True(t, c.IsRunning())

	c.Stop()
	assert.False(t, c.IsRunning())
	c.Stop() // idempotent
	assert.False(t, c.IsRunning())
}

func TestDoubleStartKeepsOriginalCallback(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft)

	firstCalls := 0
	c.Start(func(float64, float64) { firstCalls++ })
	c.Start(func(float64, float64) { t.Fatal("second callback must never fire") })

	ft.Advance(100 * time.Millisecond)
	require.True(t, c.Tick())
	assert.Equal(t, 1, firstCalls)
}

func TestTickProducesDeltaAndElapsed(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft)

	var delta, elapsed float64
	c.Start(func(d, e float64) { delta, elapsed = d, e })

	ft.Advance(500 * time.Millisecond)
	require.True(t, c.Tick())
	assert.InDelta(t, 0.5, delta, 1e-9)
	assert.InDelta(t, 0.5, elapsed, 1e-9)

	ft.Advance(250 * time.Millisecond)
	require.True(t, c.Tick())
	assert.InDelta(t, 0.25, delta, 1e-9)
	assert.InDelta(t, 0.75, elapsed, 1e-9)

	assert.EqualValues(t, 2, c.FrameCount())
	assert.InDelta(t, 0.25, c.Delta(), 1e-9)
	assert.InDelta(t, 0.75, c.Elapsed(), 1e-9)
}

func TestTickWhenStoppedIsNoop(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft)

	ft.Advance(time.Second)
	assert.False(t, c.Tick())
	assert.EqualValues(t, 0, c.FrameCount())
}

func TestFrameRateCapSkipsEarlyTicks(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft, WithTargetFPS(30))

	delivered := 0
	minDelta := 1.0
	c.Start(func(d, _ float64) {
		delivered++
		if d < minDelta {
			minDelta = d
		}
	})

	// Host frames every 17ms against a 33.3ms cap: every second tick skips.
	const ticks = 100
	for i := 0; i < ticks; i++ {
		ft.Advance(17 * time.Millisecond)
		c.Tick()
	}

	assert.Equal(t, ticks/2, delivered)
	assert.GreaterOrEqual(t, minDelta, 1.0/30-1e-9, "delivered delta never undercuts the cap")
}

func TestSkippedTickDoesNotAdvanceLastFrame(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft, WithTargetFPS(30))

	var delta float64
	c.Start(func(d, _ float64) { delta = d })

	ft.Advance(20 * time.Millisecond)
	assert.False(t, c.Tick(), "20ms < 33.3ms cap")

	// The skipped time rolls into the next delivered frame.
	ft.Advance(20 * time.Millisecond)
	require.True(t, c.Tick())
	assert.InDelta(t, 0.040, delta, 1e-9)
}

func TestTargetFPSMutableAtRuntime(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft)
	c.Start(func(float64, float64) {})

	ft.Advance(10 * time.Millisecond)
	require.True(t, c.Tick(), "uncapped clock delivers every tick")

	c.SetTargetFPS(30)
	ft.Advance(10 * time.Millisecond)
	assert.False(t, c.Tick(), "cap applies from the next tick")

	c.SetTargetFPS(0)
	ft.Advance(10 * time.Millisecond)
	assert.True(t, c.Tick())

	c.SetTargetFPS(-5)
	assert.Equal(t, 0, c.TargetFPS(), "negative caps clamp to uncapped")
}

func TestFPSEstimateFoldsEverySecond(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft)
	c.Start(func(float64, float64) {})

	assert.Equal(t, 0, c.FPS(), "no estimate before a full second")

	for i := 0; i < 10; i++ {
		ft.Advance(100 * time.Millisecond)
		c.Tick()
	}
	assert.Equal(t, 10, c.FPS())

	// A faster second updates the estimate.
	for i := 0; i < 25; i++ {
		ft.Advance(40 * time.Millisecond)
		c.Tick()
	}
	assert.Equal(t, 25, c.FPS())
}

func TestResetRebasesWithoutStopping(t *testing.T) {
	ft := newFakeTime()
	c := manualClock(ft)

	var elapsed float64
	c.Start(func(_, e float64) { elapsed = e })

	ft.Advance(2 * time.Second)
	require.True(t, c.Tick())
	require.InDelta(t, 2.0, elapsed, 1e-9)

	c.Reset()
	assert.True(t, c.IsRunning())
	assert.EqualValues(t, 0, c.FrameCount())
	assert.Zero(t, c.FPS())

	ft.Advance(100 * time.Millisecond)
	require.True(t, c.Tick())
	assert.InDelta(t, 0.1, elapsed, 1e-9, "elapsed restarts from the reset point")
	assert.EqualValues(t, 1, c.FrameCount())
}

func TestInternalLoopDeliversFrames(t *testing.T) {
	c := New(log.Nop(), WithInterval(time.Millisecond))

	var frames atomic.Int64
	c.Start(func(float64, float64) { frames.Add(1) })

	assert.Eventually(t, func() bool { return frames.Load() > 0 },
		time.Second, 5*time.Millisecond)

	c.Stop()
	assert.False(t, c.IsRunning())

	// No frames after the loop drained.
	settled := frames.Load()
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, frames.Load(), settled+1, "at most the in-flight tick completes")
}
