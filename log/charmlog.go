// SPDX-FileCopyrightText: Copyright (c) The go-mail Authors
//
// SPDX-License-Identifier: MIT

package log

import (
	"io"

	charm "github.com/charmbracelet/log"
)

// Charmlog is a human friendly terminal logger based on charmbracelet/log that satisfies
// the Logger interface
type Charmlog struct {
	level Level
	log   *charm.Logger
}

// NewCharm returns a new Charmlog type that satisfies the Logger interface
func NewCharm(output io.Writer, level Level) *Charmlog {
	logOpts := charm.Options{ReportTimestamp: true}
	switch level {
	case LevelInfo:
		logOpts.Level = charm.InfoLevel
	case LevelWarn:
		logOpts.Level = charm.WarnLevel
	case LevelError:
		logOpts.Level = charm.ErrorLevel
	default:
		logOpts.Level = charm.DebugLevel
	}
	return &Charmlog{
		level: level,
		log:   charm.NewWithOptions(output, logOpts),
	}
}

// FromCharm wraps an existing charmbracelet/log Logger so it satisfies the Logger interface
func FromCharm(logger *charm.Logger, level Level) *Charmlog {
	return &Charmlog{level: level, log: logger}
}

// Debugf logs a debug message via the charm logger
func (l *Charmlog) Debugf(log Log) {
	if l.level >= LevelDebug {
		l.log.Debug(log.message(), StageString, log.Stage.String())
	}
}

// Infof logs a info message via the charm logger
func (l *Charmlog) Infof(log Log) {
	if l.level >= LevelInfo {
		l.log.Info(log.message(), StageString, log.Stage.String())
	}
}

// Warnf logs a warn message via the charm logger
func (l *Charmlog) Warnf(log Log) {
	if l.level >= LevelWarn {
		l.log.Warn(log.message(), StageString, log.Stage.String())
	}
}

// Errorf logs an error message via the charm logger
func (l *Charmlog) Errorf(log Log) {
	if l.level >= LevelError {
		l.log.Error(log.message(), StageString, log.Stage.String())
	}
}
