package internal

import (
	"go.uber.org/zap"
)

// NewLogger returns a production JSON logger for "production" and a
// development console logger otherwise.
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
