package utils

import "go.uber.org/zap"

// NewLogger returns a development logger (console, debug level) when verbose
// is set and a production JSON logger otherwise.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
