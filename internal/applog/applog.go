// Package applog builds the application's zap logger. Output goes to a file
// in the data directory so the terminal UI is never written over.
package applog

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the application log inside the data directory.
const FileName = "log.log"

// New returns a JSON logger appending to dir/log.log. verbose enables debug level.
func New(dir string, verbose bool) (*zap.Logger, error) {
	path := filepath.Join(dir, FileName)

	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
