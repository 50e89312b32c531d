package store

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option configures a backend.
type Option func(*options)

type options struct {
	logger logrus.FieldLogger
	now    func() time.Time
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	o.logger = defaultLogger(o.logger)
	return o
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the clock used for expiry checks by the SQLite and
// in-process backends. A live Redis server expires keys on its own clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
