// Package logging builds the run logger: human-readable console output on
// stderr, plus an optional always-info logfile sink.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction. Verbose raises the console level from
// warn to info; Logfile, when set, receives info-level output regardless of
// console verbosity.
type Options struct {
	Verbose bool
	Logfile string
}

// New returns the configured logger and a close function that flushes and
// releases the logfile, if any.
func New(opts Options) (*zap.Logger, func(), error) {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEnc := zapcore.NewConsoleEncoder(encCfg)

	consoleLevel := zapcore.WarnLevel
	if opts.Verbose {
		consoleLevel = zapcore.InfoLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), consoleLevel),
	}

	closer := func() {}
	if opts.Logfile != "" {
		f, err := os.Create(opts.Logfile)
		if err != nil {
			return nil, nil, fmt.Errorf("open logfile %s: %w", opts.Logfile, err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileEnc := zapcore.NewConsoleEncoder(fileCfg)
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.Lock(f), zapcore.InfoLevel))
		closer = func() {
			_ = f.Sync()
			_ = f.Close()
		}
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeAll := func() {
		_ = logger.Sync()
		closer()
	}
	return logger, closeAll, nil
}
