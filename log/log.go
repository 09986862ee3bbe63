// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

// Package log implements the logger interface used by the mail client, the SMTP
// protocol client and the site server
package log

import (
	"fmt"
	"strings"
)

const (
	DirServerToClient Direction = iota // Server to Client communication
	DirClientToServer                  // Client to Server communication
	DirNone                            // Application message without wire direction
)

// Level is the log level type
type Level int

const (
	// LevelError is the Level for only ERROR log messages
	LevelError Level = iota
	// LevelWarn is the Level for WARN and higher log messages
	LevelWarn
	// LevelInfo is the Level for INFO and higher log messages
	LevelInfo
	// LevelDebug is the Level for DEBUG and higher log messages
	LevelDebug
)

const (
	// DirString is the group name used for the direction in structured logs
	DirString = "direction"
	// DirFromString is the key for the sending side of a message
	DirFromString = "from"
	// DirToString is the key for the receiving side of a message
	DirToString = "to"
)

// Direction is a type wrapper for the direction a debug log message goes
type Direction int

// Log represents a log message type that holds a log Direction, a Format string
// and a slice of Messages
type Log struct {
	Direction Direction
	Format    string
	Messages  []interface{}
}

// Logger is the log interface for mvmont
type Logger interface {
	Debugf(Log)
	Infof(Log)
	Warnf(Log)
	Errorf(Log)
}

// ParseLevel converts a level name like "debug" or "WARN" into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// String satisfies the fmt.Stringer interface for the Level type
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return "unknown"
}

// directionPrefix returns the prefix string for the given Log direction
func (l Log) directionPrefix() string {
	switch l.Direction {
	case DirServerToClient:
		return "C <-- S:"
	case DirClientToServer:
		return "C --> S:"
	}
	return ""
}

// directionFrom returns the sending side of the Log direction
func (l Log) directionFrom() string {
	if l.Direction == DirServerToClient {
		return "server"
	}
	return "client"
}

// directionTo returns the receiving side of the Log direction
func (l Log) directionTo() string {
	if l.Direction == DirServerToClient {
		return "client"
	}
	return "server"
}
