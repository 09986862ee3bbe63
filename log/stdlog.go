// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package log

import (
	"fmt"
	"io"
	"log"
)

// CallDepth is the call depth passed to log.Logger.Output, so that the Lshortfile
// flag reports the caller of the Stdlog method
const CallDepth = 2

// Stdlog writes plain text lines through the standard library logger. Every line
// carries the level as prefix, wire messages additionally show their direction:
//
//	2024/05/17 09:30:00  INFO: server listening on http://localhost:3000
//	2024/05/17 09:30:01 DEBUG: C --> S: MAIL FROM:<web@example.com>
type Stdlog struct {
	level   Level
	loggers [LevelDebug + 1]*log.Logger
}

// levelPrefixes are the line prefixes per Level, padded to equal width
var levelPrefixes = [LevelDebug + 1]string{
	LevelError: "ERROR: ",
	LevelWarn:  " WARN: ",
	LevelInfo:  " INFO: ",
	LevelDebug: "DEBUG: ",
}

// New returns a Stdlog writing every message up to the given level to output
func New(output io.Writer, level Level) *Stdlog {
	l := &Stdlog{level: level}
	for lvl, prefix := range levelPrefixes {
		l.loggers[lvl] = log.New(output, prefix, log.Lmsgprefix|log.LstdFlags)
	}
	return l
}

// Debugf logs wire traffic and other diagnostics
func (l *Stdlog) Debugf(m Log) { l.output(LevelDebug, m) }

// Infof logs regular operation
func (l *Stdlog) Infof(m Log) { l.output(LevelInfo, m) }

// Warnf logs failures the application recovers from
func (l *Stdlog) Warnf(m Log) { l.output(LevelWarn, m) }

// Errorf logs failures
func (l *Stdlog) Errorf(m Log) { l.output(LevelError, m) }

func (l *Stdlog) output(lvl Level, m Log) {
	if l.level < lvl {
		return
	}
	format := m.Format
	if prefix := m.directionPrefix(); prefix != "" {
		format = prefix + " " + format
	}
	_ = l.loggers[lvl].Output(CallDepth+1, fmt.Sprintf(format, m.Messages...))
}
