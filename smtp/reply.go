// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package smtp

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MaxReplyLineLength is the maximum length of a single reply line, excluding the line
// terminator. RFC 5321 allows 512 octets; we are more lenient towards chatty servers.
const MaxReplyLineLength = 2048

// Reply is a complete, possibly multi-line, SMTP server reply
type Reply struct {
	// Code is the three-digit status code of the reply
	Code int

	// Lines holds the text of every reply line, without status code and separator
	Lines []string

	// Final is set once the last line (code followed by a space) has been read
	Final bool
}

// Message returns the reply text with the lines joined by newlines
func (r *Reply) Message() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Lines, "\n")
}

// replyReader reads SMTP replies from exactly one connection. After a TLS upgrade a
// new replyReader has to be created on the encrypted channel, so that nothing the
// plaintext reader buffered can ever be parsed as a reply of the TLS session.
type replyReader struct {
	r *bufio.Reader
}

// newReplyReader returns a replyReader bound to r
func newReplyReader(r io.Reader) *replyReader {
	return &replyReader{r: bufio.NewReaderSize(r, 4096)}
}

// Buffered returns the number of bytes that have been read from the connection but
// not yet consumed by a reply
func (rr *replyReader) Buffered() int {
	return rr.r.Buffered()
}

// ReadReply reads lines until a complete reply has been assembled. Continuation lines
// ("250-...") are collected into the same reply; the reply is returned only after the
// final line ("250 ...").
func (rr *replyReader) ReadReply() (*Reply, error) {
	reply := &Reply{}
	for {
		line, err := rr.readLine()
		if err != nil {
			return nil, err
		}
		code, more, text, err := parseReplyLine(line)
		if err != nil {
			return nil, err
		}
		if len(reply.Lines) > 0 && code != reply.Code {
			return nil, &ProtocolError{Line: line, Err: ErrCodeMismatch}
		}
		reply.Code = code
		reply.Lines = append(reply.Lines, text)
		if !more {
			reply.Final = true
			return reply, nil
		}
	}
}

// readLine reads one line terminated by LF and strips the line terminator
func (rr *replyReader) readLine() (string, error) {
	var line []byte
	for {
		chunk, err := rr.r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxReplyLineLength+2 {
			return "", &ProtocolError{Err: ErrReplyTooLong}
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return "", readError(err)
	}
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), nil
}

// readError classifies an error returned by the underlying connection
func readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ProtocolError{Err: ErrIncompleteReply}
	}
	return &ConnectionError{Op: "read", Err: err}
}

// parseReplyLine splits a reply line into its status code, the continuation flag and
// the reply text
func parseReplyLine(line string) (code int, more bool, text string, err error) {
	if len(line) < 3 {
		return 0, false, "", &ProtocolError{Line: line, Err: ErrMalformedReply}
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return 0, false, "", &ProtocolError{Line: line, Err: ErrMalformedReply}
		}
		code = code*10 + int(line[i]-'0')
	}
	if len(line) == 3 {
		return code, false, "", nil
	}
	switch line[3] {
	case ' ':
		return code, false, line[4:], nil
	case '-':
		return code, true, line[4:], nil
	}
	return 0, false, "", &ProtocolError{Line: line, Err: ErrMalformedReply}
}
