// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

// Package mail submits plain text notifications to an SMTP server. Every call to
// Client.Send opens its own connection, runs one complete SMTP transaction
// (optionally upgraded with STARTTLS and authenticated with AUTH LOGIN) and closes
// the connection again.
package mail

// VERSION is the version of the mvmont mailer
const VERSION = "1.0.0"
