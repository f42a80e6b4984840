package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type serviceOptions struct {
	now    func() time.Time
	logger zerolog.Logger
}

// Option customizes a service at construction time.
type Option func(*serviceOptions)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithLogger replaces the global zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

func newServiceOptions(name string, opts []Option) serviceOptions {
	o := serviceOptions{
		now:    time.Now,
		logger: log.With().Str("service", name).Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
