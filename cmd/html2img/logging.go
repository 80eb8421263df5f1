package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alnah/go-html2img/internal/config"
)

// Rotation defaults for log.file.
const (
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28
)

// nopCloser closes nothing.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the diagnostic logger for one command.
// --verbose forces debug and --quiet forces error; otherwise log.level applies.
// Without log.file the logger writes to w.
func newLogger(cfg config.LogConfig, common commonFlags, w io.Writer) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: log.level: %v", config.ErrInvalidValue, err)
	}
	switch {
	case common.verbose:
		level = logrus.DebugLevel
	case common.quiet:
		level = logrus.ErrorLevel
	}

	log := logrus.New()
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.File == "" {
		log.SetOutput(w)
		return log, nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    valueOr(cfg.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: valueOr(cfg.MaxBackups, defaultLogMaxBackups),
		MaxAge:     valueOr(cfg.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   cfg.Compress,
	}
	log.SetOutput(rotator)
	return log, rotator, nil
}

// valueOr returns v, or def when v is zero.
func valueOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
