package recording

import "github.com/rs/zerolog"

// Option configures a Recorder or Replayer
type Option func(*options)

type options struct {
	log zerolog.Logger
}

// WithLogger sets the logger for write failures and end-of-stream diagnostics
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func applyOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
