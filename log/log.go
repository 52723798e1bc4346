// SPDX-FileCopyrightText: Copyright (c) 2022-2023 The go-mail Authors
//
// SPDX-License-Identifier: MIT

// Package log implements a logger interface that can be used within the compose package
package log

import "fmt"

const (
	StageResolve  Stage = iota // Resource resolution
	StageTemplate              // Template resolution and rendering
	StageCSS                   // Stylesheet inlining
	StageImages                // Image inlining
	StageSubject               // Subject autofill
	StageCompose               // Message composition
)

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// StageString is the key used for the pipeline stage in structured logs
const StageString = "stage"

// Stage is a type wrapper for the pipeline stage a debug log message originates from
type Stage int

// Level is a type wrapper for an int
type Level int

// Log represents a log message type that holds a log Stage, a Format string
// and a slice of Messages
type Log struct {
	Stage    Stage
	Format   string
	Messages []interface{}
}

// Logger is the log interface for compose
type Logger interface {
	Debugf(Log)
	Infof(Log)
	Warnf(Log)
	Errorf(Log)
}

// String satisfies the fmt.Stringer interface for the Stage type
func (s Stage) String() string {
	switch s {
	case StageResolve:
		return "resolve"
	case StageTemplate:
		return "template"
	case StageCSS:
		return "css"
	case StageImages:
		return "images"
	case StageSubject:
		return "subject"
	case StageCompose:
		return "compose"
	default:
		return "unknown"
	}
}

// stagePrefix returns the stage of the Log formatted as a message prefix
func (l Log) stagePrefix() string {
	return "[" + l.Stage.String() + "]"
}

// message returns the formatted message of the Log
func (l Log) message() string {
	return fmt.Sprintf(l.Format, l.Messages...)
}
