// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// headerValueReplacer folds line breaks in header values into a single space
var headerValueReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// msgWriter writes the wire form of an Envelope into an io.Writer
type msgWriter struct {
	err error
	w   io.Writer
}

// writeMsg writes the headers, the separating blank line and the body of the
// Envelope. The message is not terminated by a line break; the DATA writer
// adds one before the terminator line if required.
func (mw *msgWriter) writeMsg(e Envelope) {
	mw.writeHeader(HeaderFrom, e.From)
	mw.writeHeader(HeaderTo, e.To)
	mw.writeHeader(HeaderSubject, e.Subject)
	mw.writeHeader(HeaderMIMEVersion, MIME1)
	mw.writeHeader(HeaderContentType, ContentTypeTextUTF8)
	if e.ReplyTo != "" {
		mw.writeHeader(HeaderReplyTo, e.ReplyTo)
	}
	mw.writeString("\r\n")
	mw.writeString(normalizeLineEndings(e.Text))
}

// writeString writes a string into the msgWriter's io.Writer interface
func (mw *msgWriter) writeString(s string) {
	if mw.err != nil {
		return
	}
	_, mw.err = io.WriteString(mw.w, s)
}

// writeHeader writes a header into the msgWriter's io.Writer. Line breaks in the
// value are folded into spaces, so a value can never start a new header.
func (mw *msgWriter) writeHeader(k Header, v string) {
	mw.writeString(string(k))
	mw.writeString(": ")
	mw.writeString(headerValueReplacer.Replace(v))
	mw.writeString("\r\n")
}

// normalizeLineEndings converts CRLF, bare LF and bare CR line endings to CRLF
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// buildMessage returns the wire form of the Envelope
func buildMessage(e Envelope) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	mw := &msgWriter{w: buf}
	mw.writeMsg(e)
	if mw.err != nil {
		return nil, fmt.Errorf("failed to build message: %w", mw.err)
	}
	return buf.Bytes(), nil
}
