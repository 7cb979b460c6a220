package executor

import "log/slog"

// Option configures a Loop or a Queue
type Option func(*config)

type config struct {
	logger   *slog.Logger
	capacity int
}

func defaultConfig() *config {
	return &config{
		logger:   slog.Default(),
		capacity: 64,
	}
}

// WithLogger sets the logger used to report recovered panics. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCapacity presizes the pending callback buffer. The buffer still grows
// past it; posting never blocks.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = max(n, 0)
	}
}
