// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

// SMTPAuthType represents a string to any SMTP AUTH type
type SMTPAuthType string

// Supported SMTP AUTH types
const (
	// SMTPAuthLogin is the "LOGIN" SASL authentication mechanism. It is the default
	// of every Client.
	SMTPAuthLogin SMTPAuthType = "LOGIN"

	// SMTPAuthNoAuth skips authentication altogether. It is meant for local relays
	// that accept mail from trusted networks only.
	SMTPAuthNoAuth SMTPAuthType = ""
)
