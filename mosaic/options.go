package mosaic

import (
	"log/slog"
	"runtime"
)

// Option configures Organize, NewMosaic and NewCompositor.
type Option func(*options)

type options struct {
	concurrency int
	noDataMerge bool
	passThrough bool
	logger      *slog.Logger
}

func defaultOptions() *options {
	return &options{
		concurrency: runtime.GOMAXPROCS(0),
		passThrough: true,
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// log returns the per-instance logger, or the package logger.
func (o *options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return Logger()
}

// WithConcurrency bounds the number of sources a Compositor reads at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithNoDataAwareMerge makes a Compositor skip source samples equal to the
// band's no-data or background value instead of overwriting earlier sources
// with them.
func WithNoDataAwareMerge() Option {
	return func(o *options) {
		o.noDataMerge = true
	}
}

// WithoutPassThrough makes Organize wrap single-tile clusters in a Mosaic
// instead of returning the resource itself.
func WithoutPassThrough() Option {
	return func(o *options) {
		o.passThrough = false
	}
}

// WithLogger overrides the package logger for one instance.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
