// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package smtp

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	// ErrMalformedReply is returned when a reply line does not start with a three-digit status
	// code followed by a space, a hyphen or the end of the line.
	ErrMalformedReply = errors.New("malformed reply line")

	// ErrIncompleteReply is returned when the connection is closed before a reply is complete.
	ErrIncompleteReply = errors.New("connection closed before reply was complete")

	// ErrReplyTooLong is returned when a reply line exceeds MaxReplyLineLength.
	ErrReplyTooLong = errors.New("reply line too long")

	// ErrCodeMismatch is returned when the lines of a multi-line reply carry different codes.
	ErrCodeMismatch = errors.New("reply lines carry different status codes")

	// ErrUnexpectedReply is returned when the server answers with a positive status code
	// other than the one the command requires.
	ErrUnexpectedReply = errors.New("unexpected reply code")

	// ErrPlaintextAfterStartTLS is returned when the server sent data after its STARTTLS
	// reply but before the TLS handshake.
	ErrPlaintextAfterStartTLS = errors.New("server sent plaintext data after STARTTLS")

	// ErrBadSequence is returned when a command is issued in a session state that does not
	// allow it.
	ErrBadSequence = errors.New("command issued out of sequence")

	// ErrInvalidLine is returned when a command argument contains CR or LF.
	ErrInvalidLine = errors.New("a line must not contain CR or LF")

	// ErrClosed is returned when a command is issued on a closed Client.
	ErrClosed = errors.New("client connection is closed")

	// ErrUnencrypted is returned when credentials would be sent over an unencrypted connection
	// to a host other than localhost.
	ErrUnencrypted = errors.New("unencrypted connection")

	// ErrWrongHostname is returned when the Auth was created for a different host.
	ErrWrongHostname = errors.New("wrong host name")

	// ErrAuthNotStarted wraps the error of an Auth mechanism that refused to start. No
	// credentials were sent to the server.
	ErrAuthNotStarted = errors.New("authentication not started")

	// ErrUnexpectedServerChallenge is returned when the server keeps challenging after all
	// credentials were sent.
	ErrUnexpectedServerChallenge = errors.New("unexpected server challenge")
)

// enhancedCodeRegexp matches RFC 2034 enhanced status codes in a reply text
var enhancedCodeRegexp = regexp.MustCompile(`\b([245])\.\d{1,3}\.\d{1,3}\b`)

// ConnectionError is returned when the connection to the server cannot be opened, breaks
// down or times out.
type ConnectionError struct {
	// Op is the operation that failed, e.g. "dial", "read" or "write".
	Op  string
	Err error
}

// Error satisfies the error interface for the ConnectionError type
func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("smtp: connection error during %s", e.Op)
	}
	return fmt.Sprintf("smtp: connection error during %s: %s", e.Op, e.Err)
}

// Unwrap returns the underlying network error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the ConnectionError was caused by an elapsed deadline
func (e *ConnectionError) Timeout() bool {
	return isTimeout(e.Err)
}

// isTimeout reports whether err is caused by an elapsed connection deadline
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// ProtocolError is returned when the server reply cannot be framed or is not valid for the
// issued command.
type ProtocolError struct {
	// Line is the offending reply line, if any.
	Line string
	Err  error
}

// Error satisfies the error interface for the ProtocolError type
func (e *ProtocolError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("smtp: protocol error: %s", e.Err)
	}
	return fmt.Sprintf("smtp: protocol error: %s: %q", e.Err, e.Line)
}

// Unwrap returns the sentinel error describing the protocol violation
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// RejectedError is returned when the server answers a command with a 4xx or 5xx status code.
type RejectedError struct {
	// Command is the SMTP verb that was rejected, e.g. "MAIL" or "greeting".
	Command string
	Code    int
	Lines   []string
}

// Error satisfies the error interface for the RejectedError type
func (e *RejectedError) Error() string {
	return fmt.Sprintf("smtp: %s rejected: %d %s", e.Command, e.Code, e.Text())
}

// Text returns the reply text of the rejection with the lines joined by a space
func (e *RejectedError) Text() string {
	return strings.Join(e.Lines, " ")
}

// IsTemp reports whether the rejection is transient (4xx) and could succeed later
func (e *RejectedError) IsTemp() bool {
	return e.Code/100 == 4
}

// IsCredentialFailure reports whether the rejection indicates that the authentication
// credentials were not accepted, as opposed to a generic rejection
func (e *RejectedError) IsCredentialFailure() bool {
	switch e.Code {
	case 454, 530, 534, 535, 538:
		return true
	}
	return false
}

// EnhancedStatusCode returns the RFC 2034 enhanced status code contained in the first reply
// line, or an empty string if there is none
func (e *RejectedError) EnhancedStatusCode() string {
	if len(e.Lines) == 0 {
		return ""
	}
	return enhancedCodeRegexp.FindString(e.Lines[0])
}

// TLSUpgradeError is returned when the STARTTLS announcement is rejected or the TLS
// handshake fails.
type TLSUpgradeError struct {
	// Reply is the server reply to STARTTLS, nil if the failure happened in the handshake.
	Reply *Reply
	Err   error
}

// Error satisfies the error interface for the TLSUpgradeError type
func (e *TLSUpgradeError) Error() string {
	if e.Reply != nil && e.Reply.Code != 220 {
		return fmt.Sprintf("smtp: STARTTLS refused: %s", e.Err)
	}
	return fmt.Sprintf("smtp: TLS upgrade failed: %s", e.Err)
}

// Unwrap returns the underlying rejection or handshake error
func (e *TLSUpgradeError) Unwrap() error {
	return e.Err
}
