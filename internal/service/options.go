package service

import (
	"time"

	"github.com/mmynk/timecard/internal/metrics"
)

// config holds the collaborators shared by the services.
type config struct {
	now     func() time.Time
	loc     *time.Location
	metrics *metrics.Metrics
}

// Option configures a service.
type Option func(*config)

// WithClock replaces time.Now. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithLocation sets the calendar used for shift dates and week boundaries.
func WithLocation(loc *time.Location) Option {
	return func(c *config) { c.loc = loc }
}

// WithMetrics records shift events on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func newConfig(opts []Option) config {
	c := config{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&c)
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	return c
}

// today returns midnight of t's calendar day in the configured location.
func (c config) today(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}
