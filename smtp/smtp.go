// SPDX-FileCopyrightText: Copyright 2010 The Go Authors. All rights reserved.
// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// Parts of this client are derived from the net/smtp package of the Go
// standard library. Use of that code is governed by a BSD-style license.
//
// SPDX-License-Identifier: BSD-3-Clause AND MIT

// Package smtp implements the client side of the Simple Mail Transfer Protocol as
// defined in RFC 5321, restricted to what is needed to submit a single message:
//
//	EHLO, STARTTLS (RFC 3207), AUTH LOGIN, MAIL, RCPT, DATA, QUIT
//
// The Client is a strict request/response state machine: every command waits for
// its complete reply before the next command is written, and every reply is
// classified before the session proceeds.
package smtp

import (
	"bufio"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/KristoveNohy/mvmont/log"
)

// A Client represents a client connection to an SMTP server.
type Client struct {
	// auth supported auth mechanisms
	auth []string

	// authIsActive indicates that the Client is currently during SMTP authentication
	authIsActive bool

	// authenticated is set after a successful AUTH exchange
	authenticated bool

	// conn is the active connection. It is replaced by the tls.Conn after STARTTLS.
	conn net.Conn

	// debug logging is enabled
	debug bool

	// didHello indicates whether we've said EHLO on the current channel
	didHello bool

	// ext is a map of supported extensions
	ext map[string]string

	// helloError is the error from the hello
	helloError error

	// localName is the name to use in EHLO
	localName string

	// logAuthData indicates if the Client should include SMTP authentication data in the logs
	logAuthData bool

	// logger will be used for debug logging
	logger log.Logger

	// mutex serializes all access to the connection
	mutex sync.Mutex

	// rcpts counts the accepted recipients of the current transaction
	rcpts int

	// reader is bound to conn and recreated whenever conn is replaced
	reader *replyReader

	// serverName denotes the name of the server to which the application will connect.
	serverName string

	// state is the current session state
	state State

	// tls indicates whether the Client is using TLS
	tls bool
}

// NewClient returns a new Client using an existing connection and host as a server
// name to be used when authenticating. It reads the server greeting; if the greeting
// is not a 220 the connection is closed and the error returned.
func NewClient(conn net.Conn, host string) (*Client, error) {
	c := &Client{
		conn:       conn,
		reader:     newReplyReader(conn),
		serverName: host,
		localName:  "localhost",
		state:      StateConnecting,
	}
	_, c.tls = conn.(*tls.Conn)

	c.mutex.Lock()
	_, err := c.readReply("greeting", 220)
	c.mutex.Unlock()
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return nil, err
	}
	c.state = StateGreeted
	return c, nil
}

// State returns the current session state of the Client
func (c *Client) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Close closes the connection. Calling Close more than once is a no-op.
func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	return c.conn.Close()
}

// Hello sends an EHLO to the server as the given host name. Calling this method is
// only necessary if the client needs control over the host name used. The client
// will introduce itself as "localhost" automatically otherwise. If Hello is called,
// it must be called before any of the other methods.
func (c *Client) Hello(localName string) error {
	if err := validateLine(localName); err != nil {
		return err
	}
	if c.didHello {
		return fmt.Errorf("%w: Hello called after other methods", ErrBadSequence)
	}
	c.mutex.Lock()
	c.localName = localName
	c.mutex.Unlock()
	return c.hello()
}

// hello runs an EHLO exchange if needed.
func (c *Client) hello() error {
	if !c.didHello {
		c.didHello = true
		c.helloError = c.ehlo()
	}
	return c.helloError
}

// ehlo sends the EHLO greeting and records the advertised extensions
func (c *Client) ehlo() error {
	reply, err := c.cmd(250, "EHLO %s", c.localName)
	if err != nil {
		return err
	}
	ext := make(map[string]string)
	for _, line := range reply.Lines[1:] {
		args := strings.SplitN(line, " ", 2)
		keyword := strings.ToUpper(args[0])
		if len(args) > 1 {
			ext[keyword] = args[1]
			continue
		}
		ext[keyword] = ""
	}
	c.mutex.Lock()
	if mechs, ok := ext["AUTH"]; ok {
		c.auth = strings.Split(mechs, " ")
	}
	c.ext = ext
	c.mutex.Unlock()
	return nil
}

// Extension reports whether an extension is support by the server.
// The extension name is case-insensitive. If the extension is supported,
// Extension also returns a string that contains any parameters the
// server specifies for the extension.
func (c *Client) Extension(ext string) (bool, string) {
	if err := c.hello(); err != nil {
		return false, ""
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.ext == nil {
		return false, ""
	}
	param, ok := c.ext[strings.ToUpper(ext)]
	return ok, param
}

// cmd writes a single command line and reads its reply. It never writes a second
// command before the reply of the first one is complete.
func (c *Client) cmd(expectCode int, format string, args ...interface{}) (*Reply, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state == StateClosed {
		return nil, ErrClosed
	}

	logMsg, logFmt := args, format
	if c.authIsActive {
		logMsg, logFmt = []interface{}{"<SMTP auth data redacted>"}, "%s"
	}
	c.debugLog(log.DirClientToServer, logFmt, logMsg...)

	line := fmt.Sprintf(format, args...)
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		return nil, &ConnectionError{Op: "write", Err: err}
	}
	verb := commandVerb(line)
	if c.authIsActive {
		verb = "AUTH"
	}
	return c.readReply(verb, expectCode)
}

// readReply reads one complete reply and classifies it. 2xx and 3xx replies are
// accepted if they match expectCode, 4xx and 5xx replies become a RejectedError.
// The caller must hold the mutex.
func (c *Client) readReply(verb string, expectCode int) (*Reply, error) {
	reply, err := c.reader.ReadReply()
	if err != nil {
		return nil, err
	}

	logMsg := []interface{}{reply.Code, reply.Message()}
	if c.authIsActive && reply.Code == 334 {
		logMsg = []interface{}{reply.Code, "<SMTP auth data redacted>"}
	}
	c.debugLog(log.DirServerToClient, "%d %s", logMsg...)

	switch reply.Code / 100 {
	case 2, 3:
		if !matchCode(reply.Code, expectCode) {
			return reply, &ProtocolError{
				Line: fmt.Sprintf("%d %s", reply.Code, reply.Message()),
				Err:  fmt.Errorf("%w for %s: expected %d", ErrUnexpectedReply, verb, expectCode),
			}
		}
		return reply, nil
	case 4, 5:
		return reply, &RejectedError{Command: verb, Code: reply.Code, Lines: reply.Lines}
	}
	return reply, &ProtocolError{
		Line: fmt.Sprintf("%d %s", reply.Code, reply.Message()),
		Err:  fmt.Errorf("%w for %s", ErrUnexpectedReply, verb),
	}
}

// StartTLS sends the STARTTLS command and encrypts all further communication.
// The TLS handshake runs on the same connection; afterwards a new reply reader is
// bound to the TLS channel and EHLO is sent again, since nothing learned on the
// plaintext channel can be trusted.
func (c *Client) StartTLS(config *tls.Config) error {
	if err := c.hello(); err != nil {
		return err
	}
	if err := c.requireState("STARTTLS", StateGreeted); err != nil {
		return err
	}
	reply, err := c.cmd(220, "STARTTLS")
	if err != nil {
		return &TLSUpgradeError{Reply: reply, Err: err}
	}

	c.mutex.Lock()
	if c.reader.Buffered() > 0 {
		c.mutex.Unlock()
		return &TLSUpgradeError{Reply: reply, Err: ErrPlaintextAfterStartTLS}
	}
	c.state = StateTLSNegotiating
	tlsConn := tls.Client(c.conn, config)
	if err = tlsConn.Handshake(); err != nil {
		c.mutex.Unlock()
		if isTimeout(err) {
			return &ConnectionError{Op: "tls handshake", Err: err}
		}
		return &TLSUpgradeError{Reply: reply, Err: err}
	}
	c.conn = tlsConn
	c.reader = newReplyReader(tlsConn)
	c.tls = true
	c.ext, c.auth = nil, nil
	c.state = StateGreeted
	c.didHello = false
	c.mutex.Unlock()

	return c.hello()
}

// TLSConnectionState returns the client's TLS connection state.
// The return values are their zero values if StartTLS did not succeed
// and the connection was not encrypted from the start.
func (c *Client) TLSConnectionState() (state tls.ConnectionState, ok bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tc, ok := c.conn.(*tls.Conn)
	if !ok {
		return
	}
	state, ok = tc.ConnectionState(), true
	return
}

// Auth authenticates a client using the provided authentication mechanism.
// Any reply other than a 334 continuation or a 235 success aborts the exchange.
func (c *Client) Auth(a Auth) error {
	if err := c.hello(); err != nil {
		return err
	}
	if err := c.requireState("AUTH", StateGreeted); err != nil {
		return err
	}

	c.mutex.Lock()
	if !c.logAuthData {
		c.authIsActive = true
	}
	info := &ServerInfo{Name: c.serverName, TLS: c.tls, Auth: c.auth}
	c.mutex.Unlock()
	defer func() {
		c.mutex.Lock()
		c.authIsActive = false
		c.mutex.Unlock()
	}()

	encoding := base64.StdEncoding
	mech, resp, err := a.Start(info)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthNotStarted, err)
	}
	command := "AUTH " + mech
	if len(resp) > 0 {
		command += " " + encoding.EncodeToString(resp)
	}
	reply, err := c.cmd(0, "%s", command)
	for err == nil {
		var msg []byte
		switch reply.Code {
		case 334:
			msg, err = encoding.DecodeString(reply.Message())
			if err != nil {
				// Some servers send the challenge in clear text
				msg, err = []byte(reply.Message()), nil
			}
		case 235:
			msg = []byte(reply.Message())
		default:
			err = &ProtocolError{
				Line: fmt.Sprintf("%d %s", reply.Code, reply.Message()),
				Err:  fmt.Errorf("%w for AUTH", ErrUnexpectedReply),
			}
			return err
		}
		resp, err = a.Next(msg, reply.Code == 334)
		if err != nil {
			// abort the AUTH exchange
			_, _ = c.cmd(501, "*")
			return err
		}
		if resp == nil {
			break
		}
		reply, err = c.cmd(0, "%s", encoding.EncodeToString(resp))
	}
	if err != nil {
		return err
	}
	if reply.Code != 235 {
		return &ProtocolError{
			Line: fmt.Sprintf("%d %s", reply.Code, reply.Message()),
			Err:  fmt.Errorf("%w for AUTH: expected 235", ErrUnexpectedReply),
		}
	}

	c.mutex.Lock()
	c.authenticated = true
	c.state = StateAuthenticated
	c.mutex.Unlock()
	return nil
}

// Mail issues a MAIL command to the server using the provided email address.
// This initiates a mail transaction and is followed by one or more Rcpt calls.
func (c *Client) Mail(from string) error {
	if err := validateLine(from); err != nil {
		return err
	}
	if err := c.hello(); err != nil {
		return err
	}
	if err := c.requireState("MAIL", StateGreeted, StateAuthenticated); err != nil {
		return err
	}
	if _, err := c.cmd(250, "MAIL FROM:<%s>", from); err != nil {
		return err
	}
	c.mutex.Lock()
	c.state = StateInTransaction
	c.rcpts = 0
	c.mutex.Unlock()
	return nil
}

// Rcpt issues a RCPT command to the server using the provided email address.
// A call to Rcpt must be preceded by a call to Mail and may be followed by
// a Data call or another Rcpt call.
func (c *Client) Rcpt(to string) error {
	if err := validateLine(to); err != nil {
		return err
	}
	if err := c.requireState("RCPT", StateInTransaction); err != nil {
		return err
	}
	if _, err := c.cmd(25, "RCPT TO:<%s>", to); err != nil {
		return err
	}
	c.mutex.Lock()
	c.rcpts++
	c.mutex.Unlock()
	return nil
}

// Data issues a DATA command, writes msg dot-stuffed and followed by the
// terminator line ".", and waits for the server to accept the message. The
// message is only accepted if the final reply is a 250.
func (c *Client) Data(msg []byte) error {
	if err := c.requireState("DATA", StateInTransaction); err != nil {
		return err
	}
	c.mutex.Lock()
	rcpts := c.rcpts
	c.mutex.Unlock()
	if rcpts == 0 {
		return fmt.Errorf("%w: DATA without accepted recipient", ErrBadSequence)
	}
	if _, err := c.cmd(354, "DATA"); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.debugLog(log.DirClientToServer, "<message data, %d bytes>", len(msg))
	dw := newDotWriter(bufio.NewWriter(c.conn))
	if _, err := dw.Write(msg); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	if err := dw.Close(); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	c.debugLog(log.DirClientToServer, "%s", ".")
	if _, err := c.readReply("DATA", 250); err != nil {
		return err
	}
	c.rcpts = 0
	c.state = StateGreeted
	if c.authenticated {
		c.state = StateAuthenticated
	}
	return nil
}

// Quit sends the QUIT command and closes the connection to the server.
func (c *Client) Quit() error {
	if _, err := c.cmd(221, "QUIT"); err != nil {
		return err
	}
	return c.Close()
}

// SetDebugLog enables the debug logging for incoming and outgoing SMTP messages
func (c *Client) SetDebugLog(v bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.debug = v
	if v {
		if c.logger == nil {
			c.logger = log.New(os.Stderr, log.LevelDebug)
		}
		return
	}
	c.logger = nil
}

// SetLogger overrides the default log.Stdlog for the debug logging with a logger that
// satisfies the log.Logger interface
func (c *Client) SetLogger(l log.Logger) {
	if l == nil {
		return
	}
	c.mutex.Lock()
	c.logger = l
	c.mutex.Unlock()
}

// SetLogAuthData enables logging of authentication data in the Client.
func (c *Client) SetLogAuthData() {
	c.mutex.Lock()
	c.logAuthData = true
	c.mutex.Unlock()
}

// requireState returns ErrBadSequence if the Client is in none of the given states
func (c *Client) requireState(verb string, allowed ...State) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not allowed in state %s", ErrBadSequence, verb, c.state)
}

// debugLog checks if the debug flag is set and if so logs the provided message to
// the log.Logger interface
func (c *Client) debugLog(d log.Direction, f string, a ...interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debugf(log.Log{Direction: d, Format: f, Messages: a})
	}
}

// commandVerb returns the SMTP verb of a command line, e.g. "MAIL" for
// "MAIL FROM:<a@b.c>"
func commandVerb(line string) string {
	verb, _, _ := strings.Cut(line, " ")
	if i := strings.IndexByte(verb, ':'); i > 0 {
		verb = verb[:i]
	}
	return strings.ToUpper(verb)
}

// matchCode reports whether code satisfies expectCode. Like net/textproto, an
// expectCode of 2 matches 2xx, 25 matches 25x and 250 matches exactly; 0 matches
// every code.
func matchCode(code, expectCode int) bool {
	switch {
	case expectCode <= 0:
		return true
	case expectCode < 10:
		return code/100 == expectCode
	case expectCode < 100:
		return code/10 == expectCode
	}
	return code == expectCode
}

// validateLine checks to see if a line has CR or LF as per RFC 5321.
func validateLine(line string) error {
	if strings.ContainsAny(line, "\n\r") {
		return ErrInvalidLine
	}
	return nil
}
