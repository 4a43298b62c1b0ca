package npy

import (
	"log/slog"
	"runtime"
)

// DefaultMaxArrayBytes bounds the payload a single array may declare.
const DefaultMaxArrayBytes = 16 << 30

// Option configures a load.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	maxArrayBytes uint64
	concurrency   int
}

func newOptions(opts []Option) *options {
	o := &options{
		maxArrayBytes: DefaultMaxArrayBytes,
		concurrency:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// log returns the logger, falling back to a discard logger if nil.
func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// WithLogger sets the logger that receives per-entry debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxArrayBytes sets the largest payload an array may declare before it
// is rejected with ErrSizeOverflow. Zero keeps the default.
func WithMaxArrayBytes(n uint64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxArrayBytes = n
		}
	}
}

// WithConcurrency sets how many files LoadFiles reads at once.
// Values < 1 force serial loading.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}
