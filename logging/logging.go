package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu            sync.Mutex
	sugaredLogger *zap.SugaredLogger
)

// GetSugaredLogger returns the shared sugared logger, initializing a
// development logger on first use. Safe for concurrent use.
func GetSugaredLogger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugaredLogger == nil {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic("cannot initialize zap")
		}
		sugaredLogger = logger.Sugar()
	}
	return sugaredLogger
}

// InitProduction switches the shared logger to the production configuration.
func InitProduction() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("cannot initialize zap")
	}
	mu.Lock()
	defer mu.Unlock()
	sugaredLogger = logger.Sugar()
	return sugaredLogger
}
