// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

// Envelope is a complete plain text message together with its SMTP envelope
// addresses. From and To are used both for MAIL FROM/RCPT TO and for the
// corresponding headers.
type Envelope struct {
	From    string
	To      string
	Subject string
	Text    string

	// ReplyTo is optional, the Reply-To header is omitted if it is empty
	ReplyTo string
}
