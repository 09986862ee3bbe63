// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

// TLSPolicy type describes a int alias for the different STARTTLS policies we allow
type TLSPolicy int

const (
	// TLSMandatory requires that the connection to the server is encrypted using
	// STARTTLS. If the server does not advertise STARTTLS the send is aborted before
	// any credentials are offered.
	TLSMandatory TLSPolicy = iota

	// TLSOpportunistic upgrades the connection via STARTTLS if the server advertises
	// it and continues in plaintext otherwise
	TLSOpportunistic

	// NoTLS never issues STARTTLS
	NoTLS
)

// String is a standard method to convert a TLSPolicy into a printable format
func (p TLSPolicy) String() string {
	switch p {
	case TLSMandatory:
		return "TLSMandatory"
	case TLSOpportunistic:
		return "TLSOpportunistic"
	case NoTLS:
		return "NoTLS"
	default:
		return "UnknownPolicy"
	}
}
