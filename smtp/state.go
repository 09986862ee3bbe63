// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package smtp

// State is the state of an SMTP session
type State int

const (
	// StateConnecting is the state before the server greeting has been read
	StateConnecting State = iota

	// StateGreeted is the state after the server greeting (and after a successful
	// TLS upgrade)
	StateGreeted

	// StateTLSNegotiating is the state between the 220 reply to STARTTLS and the
	// completed TLS handshake
	StateTLSNegotiating

	// StateAuthenticated is the state after a successful AUTH exchange
	StateAuthenticated

	// StateInTransaction is the state between MAIL FROM and the end of DATA
	StateInTransaction

	// StateClosed is the terminal state
	StateClosed
)

// String satisfies the fmt.Stringer interface for the State type
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateGreeted:
		return "Greeted"
	case StateTLSNegotiating:
		return "TLSNegotiating"
	case StateAuthenticated:
		return "Authenticated"
	case StateInTransaction:
		return "InTransaction"
	case StateClosed:
		return "Closed"
	default:
		return "UnknownState"
	}
}
