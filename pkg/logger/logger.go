package logger

import (
	"go.uber.org/zap"
)

// New builds the process-wide zap logger: JSON output in production,
// human-readable everywhere else.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
