// Package engine composes the world, the frame clock, the stage machine,
// and the event bus behind one explicitly-owned context. The host builds
// exactly one Context and passes it by reference; there is no package-level
// engine state.
package engine

import (
	"go.uber.org/zap"

	"github.com/b99631944-eng/Bennett-lab/internal/config"
	"github.com/b99631944-eng/Bennett-lab/internal/core/clock"
	"github.com/b99631944-eng/Bennett-lab/internal/core/ecs"
	"github.com/b99631944-eng/Bennett-lab/internal/core/events"
	"github.com/b99631944-eng/Bennett-lab/internal/core/observability/log"
	"github.com/b99631944-eng/Bennett-lab/internal/core/stage"
)

// StageSwitch is the payload of a stage.switched event.
type StageSwitch struct {
	From string
	To   string
}

// Context is the long-lived engine root handed to stages and host code.
type Context struct {
	cfg    *config.Config
	logger *log.Logger

	World  *ecs.World
	Clock  *clock.Clock
	Stages *stage.Manager[*Context]
	Bus    *events.Bus
}

// New wires an engine context from configuration. Extra clock options are
// applied after the configured ones; tests use them to install a mock time
// source or disable the internal tick loop.
func New(cfg *config.Config, logger *log.Logger, clockOpts ...clock.Option) *Context {
	c := &Context{
		cfg:    cfg,
		logger: logger,
		World:  ecs.NewWorld(),
		Bus:    events.NewBus(),
	}

	opts := []clock.Option{
		clock.WithTargetFPS(cfg.Engine.TargetFPS),
		clock.WithInterval(cfg.Engine.TickInterval()),
	}
	opts = append(opts, clockOpts...)
	c.Clock = clock.New(logger, opts...)
	c.Stages = stage.NewManager[*Context](c, logger)
	return c
}

// Logger returns the engine logger for stages and systems.
func (c *Context) Logger() *log.Logger { return c.logger }

// Config returns the configuration the context was built from.
func (c *Context) Config() *config.Config { return c.cfg }

// Start switches to the configured start stage (when one is set and no stage
// is current yet) and starts the frame clock.
func (c *Context) Start() error {
	if name := c.cfg.Engine.StartStage; name != "" {
		if _, _, ok := c.Stages.Current(); !ok {
			if err := c.SwitchStage(name); err != nil {
				return err
			}
		}
	}

	c.Clock.Start(c.Update)
	_ = c.Bus.Publish(events.New(events.EngineStarted, "engine", nil))
	c.logger.Info("engine started",
		zap.Int("target_fps", c.Clock.TargetFPS()),
	)
	return nil
}

// Update runs one frame: the current stage first, then the world's systems.
// The clock calls it once per delivered tick; tests call it directly.
func (c *Context) Update(delta, elapsed float64) {
	c.Stages.Update(delta, elapsed)
	c.World.Update(delta, elapsed)
}

// SwitchStage transitions the stage machine and announces the switch on the
// bus. The error of an unknown name passes through unchanged.
func (c *Context) SwitchStage(name string) error {
	from, _, _ := c.Stages.Current()
	if err := c.Stages.SwitchTo(name); err != nil {
		return err
	}
	_ = c.Bus.Publish(events.New(events.StageSwitched, "engine", StageSwitch{From: from, To: name}))
	return nil
}

// Shutdown stops the clock, announces the stop, destroys the current stage,
// clears the world, and closes the bus, in that order. Stage destroy hooks
// and component detach hooks therefore run with no frames in flight.
func (c *Context) Shutdown() {
	c.Clock.Stop()
	_ = c.Bus.Publish(events.New(events.EngineStopped, "engine", nil))
	c.Stages.Dispose()
	c.World.Clear()
	c.Bus.Close()
	c.logger.Info("engine shut down")
}
