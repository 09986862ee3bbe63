// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

// Header is a type wrapper for a string and represents an email header field of a
// message written by the msgWriter
type Header string

const (
	// HeaderFrom is the "From" header field.
	HeaderFrom Header = "From"

	// HeaderTo is the "To" header field.
	HeaderTo Header = "To"

	// HeaderSubject is the "Subject" header field.
	HeaderSubject Header = "Subject"

	// HeaderMIMEVersion represents the "MIME-Version" field as per RFC 2045.
	// https://datatracker.ietf.org/doc/html/rfc2045#section-4
	HeaderMIMEVersion Header = "MIME-Version"

	// HeaderContentType is the "Content-Type" header.
	HeaderContentType Header = "Content-Type"

	// HeaderReplyTo is the "Reply-To" header field.
	HeaderReplyTo Header = "Reply-To"
)

// MIME1 is the MIME-Version of every message
const MIME1 = "1.0"

// ContentTypeTextUTF8 is the Content-Type of every message
const ContentTypeTextUTF8 = `text/plain; charset="UTF-8"`

// String satisfies the fmt.Stringer interface for the Header type
func (h Header) String() string {
	return string(h)
}
