// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"errors"
	"strings"

	"github.com/KristoveNohy/mvmont/smtp"
)

// List of SendError reasons
const (
	// ErrConfiguration is returned if the Client or the Envelope is incomplete. No
	// connection is attempted in that case.
	ErrConfiguration SendErrReason = iota

	// ErrConnection is returned if the connection to the SMTP server could not be
	// established, broke down or timed out
	ErrConnection

	// ErrProtocol is returned if the server sent a reply that could not be parsed or
	// that is not valid for the command it answers
	ErrProtocol

	// ErrRejected is returned if the server answered a command with a 4xx or 5xx
	// status code
	ErrRejected

	// ErrTLSUpgrade is returned if STARTTLS was required but refused, not offered or
	// the TLS handshake failed
	ErrTLSUpgrade
)

// SendError is an error wrapper for delivery errors of an Envelope.
//
// It records the reason of the failure, the SMTP stage that failed and, for
// rejections, the status codes of the server reply.
type SendError struct {
	command            string
	errcode            int
	enhancedStatusCode string
	errlist            []error
	isTemp             bool
	Reason             SendErrReason
}

// SendErrReason represents a comparable reason on why the delivery failed
type SendErrReason int

// Error implements the error interface for the SendError type
func (e *SendError) Error() string {
	if e.Reason > ErrTLSUpgrade {
		return "unknown reason"
	}

	var errMessage strings.Builder
	errMessage.WriteString(e.Reason.String())
	if e.command != "" {
		errMessage.WriteString(" during ")
		errMessage.WriteString(e.command)
	}
	if len(e.errlist) > 0 {
		errMessage.WriteRune(':')
		for i := range e.errlist {
			errMessage.WriteRune(' ')
			errMessage.WriteString(e.errlist[i].Error())
			if i != len(e.errlist)-1 {
				errMessage.WriteString(",")
			}
		}
	}
	return errMessage.String()
}

// Is implements the errors.Is functionality and compares the SendErrReason
func (e *SendError) Is(errType error) bool {
	var t *SendError
	if errors.As(errType, &t) && t != nil {
		return e.Reason == t.Reason && e.isTemp == t.isTemp
	}
	return false
}

// Unwrap returns the errors that caused the SendError, so that errors.Is and
// errors.As reach the sentinel and typed errors of the smtp package
func (e *SendError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.errlist
}

// IsTemp returns true if the delivery error is of a temporary nature and can be retried
func (e *SendError) IsTemp() bool {
	if e == nil {
		return false
	}
	return e.isTemp
}

// Command returns the SMTP stage that failed, e.g. "dial", "greeting", "STARTTLS",
// "AUTH" or "MAIL". It is empty for configuration errors.
func (e *SendError) Command() string {
	if e == nil {
		return ""
	}
	return e.command
}

// EnhancedStatusCode returns the RFC 2034 enhanced status code of the server
// rejection, or an empty string if the server sent none
func (e *SendError) EnhancedStatusCode() string {
	if e == nil {
		return ""
	}
	return e.enhancedStatusCode
}

// ErrorCode returns the status code of the server rejection. It is 0 if the error
// was not caused by a server reply.
func (e *SendError) ErrorCode() int {
	if e == nil {
		return 0
	}
	return e.errcode
}

// String satisfies the fmt.Stringer interface for the SendErrReason type
func (r SendErrReason) String() string {
	switch r {
	case ErrConfiguration:
		return "invalid mail configuration"
	case ErrConnection:
		return "SMTP connection failed"
	case ErrProtocol:
		return "SMTP protocol violation"
	case ErrRejected:
		return "rejected by SMTP server"
	case ErrTLSUpgrade:
		return "STARTTLS upgrade failed"
	}
	return "unknown reason"
}

// label returns the metric label of the SendErrReason
func (r SendErrReason) label() string {
	switch r {
	case ErrConfiguration:
		return "configuration"
	case ErrConnection:
		return "connection"
	case ErrProtocol:
		return "protocol"
	case ErrRejected:
		return "rejected"
	case ErrTLSUpgrade:
		return "tls"
	}
	return "unknown"
}

// newConfigError returns a SendError for an incomplete Client or Envelope
func newConfigError(err error) *SendError {
	return &SendError{Reason: ErrConfiguration, errlist: []error{err}}
}

// newSendError classifies an error of the smtp package that occurred during the
// given SMTP stage
func newSendError(command string, err error) *SendError {
	se := &SendError{command: command, errlist: []error{err}}

	var tlsErr *smtp.TLSUpgradeError
	var rejErr *smtp.RejectedError
	var connErr *smtp.ConnectionError
	switch {
	case errors.As(err, &tlsErr):
		se.Reason = ErrTLSUpgrade
	case errors.As(err, &rejErr):
		se.Reason = ErrRejected
	case errors.As(err, &connErr):
		se.Reason = ErrConnection
	case errors.Is(err, smtp.ErrAuthNotStarted), errors.Is(err, smtp.ErrUnencrypted),
		errors.Is(err, smtp.ErrWrongHostname):
		se.Reason = ErrConfiguration
	default:
		se.Reason = ErrProtocol
	}

	if errors.As(err, &rejErr) {
		se.errcode = rejErr.Code
		se.isTemp = rejErr.IsTemp()
		se.enhancedStatusCode = rejErr.EnhancedStatusCode()
		if se.command == "" {
			se.command = rejErr.Command
		}
	}
	return se
}
