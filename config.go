package foreman

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds package-wide defaults applied to new worlds. Per-world
// overrides go through the WorldOption functions on Factory.NewWorld.
var Config config = config{
	logger:           zerolog.Nop(),
	fixedInterval:    time.Second / 60,
	maxCatchUp:       10,
	eventHistorySize: 64,
	maxSystems:       256,
}

type config struct {
	logger           zerolog.Logger
	fixedInterval    time.Duration
	maxCatchUp       int
	eventHistorySize int
	maxSystems       int
}

// SetLogger replaces the default logger for worlds created afterwards.
func (c *config) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

func (c *config) Logger() zerolog.Logger {
	return c.logger
}

// SetFixedInterval replaces the default fixed-rate step size.
func (c *config) SetFixedInterval(interval time.Duration) {
	c.fixedInterval = interval
}

// SetMaxCatchUp replaces the default fixed-step catch-up bound.
func (c *config) SetMaxCatchUp(iterations int) {
	c.maxCatchUp = iterations
}
