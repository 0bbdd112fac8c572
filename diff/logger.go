package diff

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the diff package's logger, a no-op logger unless SetLogger
// was called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the diff package's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}
