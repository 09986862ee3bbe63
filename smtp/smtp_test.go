// SPDX-FileCopyrightText: Copyright 2010 The Go Authors. All rights reserved.
// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: BSD-3-Clause AND MIT

package smtp

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/KristoveNohy/mvmont/log"
)

// faker is a net.Conn that reads a canned server script and records what the
// client writes
type faker struct {
	io.ReadWriter
	closed *int
}

func (f faker) Close() error {
	if f.closed != nil {
		*f.closed++
	}
	return nil
}
func (f faker) LocalAddr() net.Addr              { return nil }
func (f faker) RemoteAddr() net.Addr             { return nil }
func (f faker) SetDeadline(time.Time) error      { return nil }
func (f faker) SetReadDeadline(time.Time) error  { return nil }
func (f faker) SetWriteDeadline(time.Time) error { return nil }

// fakeClient returns a Client in the Greeted state that reads the given server
// script. Lines of server and of the recorded client output are CRLF terminated.
func fakeClient(server, serverName string) (*Client, *bufio.Writer, *strings.Builder, *int) {
	server = strings.Join(strings.Split(server, "\n"), "\r\n")
	cmdbuf := &strings.Builder{}
	bcmdbuf := bufio.NewWriter(cmdbuf)
	closed := new(int)
	fake := faker{
		ReadWriter: bufio.NewReadWriter(bufio.NewReader(strings.NewReader(server)), bcmdbuf),
		closed:     closed,
	}
	c := &Client{
		conn:       fake,
		reader:     newReplyReader(fake),
		localName:  "localhost",
		serverName: serverName,
		state:      StateGreeted,
	}
	return c, bcmdbuf, cmdbuf, closed
}

func crlf(s string) string {
	return strings.Join(strings.Split(s, "\n"), "\r\n")
}

func TestBasic(t *testing.T) {
	c, bcmdbuf, cmdbuf, closed := fakeClient(basicServer, "localhost")

	if err := c.Hello("localhost"); err != nil {
		t.Fatalf("EHLO failed: %s", err)
	}
	if ok, args := c.Extension("aUtH"); !ok || args != "LOGIN PLAIN" {
		t.Fatalf("Expected AUTH supported")
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		t.Fatalf("Shouldn't support STARTTLS")
	}
	if err := c.Rcpt("staff@example.com"); !errors.Is(err, ErrBadSequence) {
		t.Fatalf("RCPT before MAIL should fail with ErrBadSequence, got: %v", err)
	}
	if err := c.Data([]byte("test")); !errors.Is(err, ErrBadSequence) {
		t.Fatalf("DATA before MAIL should fail with ErrBadSequence, got: %v", err)
	}

	if err := c.Auth(LoginAuth("user", "pass", "localhost")); err != nil {
		t.Fatalf("AUTH failed: %s", err)
	}
	if c.State() != StateAuthenticated {
		t.Errorf("expected state %s, got %s", StateAuthenticated, c.State())
	}

	if err := c.Mail("user@example.com>\r\nDATA\r\nInjected message body\r\n.\r\nQUIT\r\n"); err == nil {
		t.Fatalf("MAIL should have failed due to a message injection attempt")
	}
	if err := c.Mail("user@example.com"); err != nil {
		t.Fatalf("MAIL failed: %s", err)
	}
	if c.State() != StateInTransaction {
		t.Errorf("expected state %s, got %s", StateInTransaction, c.State())
	}
	if err := c.Data([]byte("test")); !errors.Is(err, ErrBadSequence) {
		t.Fatalf("DATA without recipient should fail with ErrBadSequence, got: %v", err)
	}
	if err := c.Rcpt("staff@example.com>\r\nDATA\r\nInjected message body\r\n.\r\nQUIT\r\n"); err == nil {
		t.Fatalf("RCPT should have failed due to a message injection attempt")
	}
	if err := c.Rcpt("staff@example.com"); err != nil {
		t.Fatalf("RCPT failed: %s", err)
	}
	msg := crlf(`From: user@example.com
To: staff@example.com
Subject: Hooray for Go

Line 1
.Leading dot line .
Goodbye.`)
	if err := c.Data([]byte(msg)); err != nil {
		t.Fatalf("DATA failed: %s", err)
	}
	if c.State() != StateAuthenticated {
		t.Errorf("expected state %s after DATA, got %s", StateAuthenticated, c.State())
	}
	if err := c.Quit(); err != nil {
		t.Fatalf("QUIT failed: %s", err)
	}
	if c.State() != StateClosed {
		t.Errorf("expected state %s, got %s", StateClosed, c.State())
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %s", err)
	}
	if *closed != 1 {
		t.Errorf("expected connection to be closed exactly once, got %d", *closed)
	}
	if err := c.Mail("user@example.com"); !errors.Is(err, ErrClosed) {
		t.Errorf("MAIL on closed client should fail with ErrClosed, got: %v", err)
	}

	if err := bcmdbuf.Flush(); err != nil {
		t.Errorf("flush failed: %s", err)
	}
	if want := crlf(basicClient); cmdbuf.String() != want {
		t.Fatalf("Got:\n%s\nExpected:\n%s", cmdbuf.String(), want)
	}
}

var basicServer = `250-localhost at your service
250-SIZE 35651584
250-AUTH LOGIN PLAIN
250 8BITMIME
334 VXNlcm5hbWU6
334 UGFzc3dvcmQ6
235 2.7.0 Accepted
250 Sender OK
250 Receiver OK
354 Go ahead
250 2.0.0 Queued
221 OK
`

var basicClient = `EHLO localhost
AUTH LOGIN
dXNlcg==
cGFzcw==
MAIL FROM:<user@example.com>
RCPT TO:<staff@example.com>
DATA
From: user@example.com
To: staff@example.com
Subject: Hooray for Go

Line 1
..Leading dot line .
Goodbye.
.
QUIT
`

func TestNewClient(t *testing.T) {
	t.Run("greeting accepted", func(t *testing.T) {
		closed := new(int)
		fake := faker{ReadWriter: bufio.NewReadWriter(
			bufio.NewReader(strings.NewReader("220-mx.example.com ESMTP\r\n220 ready\r\n")),
			bufio.NewWriter(io.Discard)), closed: closed}
		c, err := NewClient(fake, "mx.example.com")
		if err != nil {
			t.Fatalf("NewClient failed: %s", err)
		}
		if c.State() != StateGreeted {
			t.Errorf("expected state %s, got %s", StateGreeted, c.State())
		}
		if *closed != 0 {
			t.Errorf("connection must stay open, closed %d times", *closed)
		}
	})
	t.Run("greeting rejected", func(t *testing.T) {
		closed := new(int)
		fake := faker{ReadWriter: bufio.NewReadWriter(
			bufio.NewReader(strings.NewReader("554 5.3.2 no service for you\r\n")),
			bufio.NewWriter(io.Discard)), closed: closed}
		_, err := NewClient(fake, "mx.example.com")
		var rerr *RejectedError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RejectedError, got: %v", err)
		}
		if rerr.Command != "greeting" || rerr.Code != 554 {
			t.Errorf("unexpected rejection: %s", rerr)
		}
		if *closed != 1 {
			t.Errorf("expected connection to be closed once, got %d", *closed)
		}
	})
	t.Run("greeting malformed", func(t *testing.T) {
		fake := faker{ReadWriter: bufio.NewReadWriter(
			bufio.NewReader(strings.NewReader("SSH-2.0-OpenSSH_9.6\r\n")),
			bufio.NewWriter(io.Discard))}
		_, err := NewClient(fake, "mx.example.com")
		if !errors.Is(err, ErrMalformedReply) {
			t.Fatalf("expected ErrMalformedReply, got: %v", err)
		}
	})
}

func TestClient_MailRejected(t *testing.T) {
	c, _, _, _ := fakeClient("250 localhost\n550 5.1.0 Sender address rejected\n", "localhost")
	err := c.Mail("user@example.com")
	var rerr *RejectedError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RejectedError, got: %v", err)
	}
	if rerr.Code != 550 || rerr.Command != "MAIL" {
		t.Errorf("expected 550 for MAIL, got %d for %s", rerr.Code, rerr.Command)
	}
	if rerr.IsTemp() {
		t.Error("550 must not be temporary")
	}
	if rerr.EnhancedStatusCode() != "5.1.0" {
		t.Errorf("expected enhanced status code 5.1.0, got %q", rerr.EnhancedStatusCode())
	}
	if c.State() != StateGreeted {
		t.Errorf("rejected MAIL must not change the state, got %s", c.State())
	}
}

func TestClient_UnexpectedReplies(t *testing.T) {
	tests := []struct {
		name   string
		server string
		do     func(*Client) error
	}{
		{"MAIL malformed", "250 localhost\nHello there\n", func(c *Client) error {
			return c.Mail("user@example.com")
		}},
		{"DATA not 354", "250 localhost\n250 OK\n250 OK\n250 OK\n", func(c *Client) error {
			if err := c.Mail("user@example.com"); err != nil {
				return err
			}
			if err := c.Rcpt("staff@example.com"); err != nil {
				return err
			}
			return c.Data([]byte("body"))
		}},
		{"message not 250", "250 localhost\n250 OK\n250 OK\n354 go\n251 almost\n", func(c *Client) error {
			if err := c.Mail("user@example.com"); err != nil {
				return err
			}
			if err := c.Rcpt("staff@example.com"); err != nil {
				return err
			}
			return c.Data([]byte("body"))
		}},
		{"code out of range", "250 localhost\n650 what\n", func(c *Client) error {
			return c.Mail("user@example.com")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _, _ := fakeClient(tt.server, "localhost")
			err := tt.do(c)
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProtocolError, got: %v", err)
			}
		})
	}
}

func TestClient_Auth(t *testing.T) {
	t.Run("credentials rejected", func(t *testing.T) {
		server := "250-localhost\n250 AUTH LOGIN\n334 VXNlcm5hbWU6\n334 UGFzc3dvcmQ6\n" +
			"535 5.7.8 Authentication credentials invalid\n"
		c, _, _, _ := fakeClient(server, "localhost")
		err := c.Auth(LoginAuth("user", "wrong", "localhost"))
		var rerr *RejectedError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RejectedError, got: %v", err)
		}
		if !rerr.IsCredentialFailure() {
			t.Errorf("535 should be a credential failure")
		}
		if rerr.Command != "AUTH" {
			t.Errorf("expected rejected command AUTH, got %q", rerr.Command)
		}
		if c.State() != StateGreeted {
			t.Errorf("failed AUTH must not change the state, got %s", c.State())
		}
	})
	t.Run("mechanism rejected", func(t *testing.T) {
		c, _, _, _ := fakeClient("250 localhost\n504 5.5.4 Unrecognized authentication type\n", "localhost")
		err := c.Auth(LoginAuth("user", "pass", "localhost"))
		var rerr *RejectedError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RejectedError, got: %v", err)
		}
		if rerr.IsCredentialFailure() {
			t.Errorf("504 should not be a credential failure")
		}
	})
	t.Run("too many challenges", func(t *testing.T) {
		server := "250 localhost\n334 VXNlcm5hbWU6\n334 UGFzc3dvcmQ6\n334 TW9yZTo=\n501 aborted\n"
		c, bcmdbuf, cmdbuf, _ := fakeClient(server, "localhost")
		err := c.Auth(LoginAuth("user", "pass", "localhost"))
		if !errors.Is(err, ErrUnexpectedServerChallenge) {
			t.Fatalf("expected ErrUnexpectedServerChallenge, got: %v", err)
		}
		_ = bcmdbuf.Flush()
		if !strings.HasSuffix(cmdbuf.String(), "*\r\n") {
			t.Errorf("expected AUTH exchange to be aborted with *, got: %q", cmdbuf.String())
		}
	})
	t.Run("unencrypted remote host", func(t *testing.T) {
		c, bcmdbuf, cmdbuf, _ := fakeClient("250 mail.example.com\n", "mail.example.com")
		err := c.Auth(LoginAuth("user", "pass", "mail.example.com"))
		if !errors.Is(err, ErrUnencrypted) || !errors.Is(err, ErrAuthNotStarted) {
			t.Fatalf("expected ErrUnencrypted before AUTH, got: %v", err)
		}
		_ = bcmdbuf.Flush()
		if strings.Contains(cmdbuf.String(), "AUTH") {
			t.Errorf("credentials must not be offered on an unencrypted channel: %q", cmdbuf.String())
		}
	})
	t.Run("auth data is redacted", func(t *testing.T) {
		var logbuf bytes.Buffer
		c, _, _, _ := fakeClient("250 localhost\n334 VXNlcm5hbWU6\n334 UGFzc3dvcmQ6\n235 OK\n250 OK\n",
			"localhost")
		c.SetLogger(log.New(&logbuf, log.LevelDebug))
		c.SetDebugLog(true)
		if err := c.Auth(LoginAuth("user", "pass", "localhost")); err != nil {
			t.Fatalf("AUTH failed: %s", err)
		}
		if err := c.Mail("user@example.com"); err != nil {
			t.Fatalf("MAIL failed: %s", err)
		}
		logs := logbuf.String()
		for _, secret := range []string{"dXNlcg==", "cGFzcw=="} {
			if strings.Contains(logs, secret) {
				t.Errorf("log contains credentials %q:\n%s", secret, logs)
			}
		}
		if !strings.Contains(logs, "<SMTP auth data redacted>") {
			t.Errorf("expected redaction marker in log:\n%s", logs)
		}
		if !strings.Contains(logs, "C --> S: MAIL FROM:<user@example.com>") {
			t.Errorf("expected MAIL command in log:\n%s", logs)
		}
	})
}

func TestLoginAuth(t *testing.T) {
	a := LoginAuth("user", "pass", "testserver")
	if _, _, err := a.Start(&ServerInfo{Name: "otherserver", TLS: true}); !errors.Is(err, ErrWrongHostname) {
		t.Errorf("expected ErrWrongHostname, got: %v", err)
	}
	if _, _, err := a.Start(&ServerInfo{Name: "testserver"}); !errors.Is(err, ErrUnencrypted) {
		t.Errorf("expected ErrUnencrypted, got: %v", err)
	}
	mech, resp, err := a.Start(&ServerInfo{Name: "testserver", TLS: true})
	if err != nil {
		t.Fatalf("Start failed: %s", err)
	}
	if mech != "LOGIN" || resp != nil {
		t.Errorf("unexpected Start result: %s, %q", mech, resp)
	}
	for i, want := range []string{"user", "pass"} {
		got, err := a.Next([]byte("whatever the server says"), true)
		if err != nil {
			t.Fatalf("#%d Next failed: %s", i, err)
		}
		if string(got) != want {
			t.Errorf("#%d expected %q, got %q", i, want, got)
		}
	}
	if _, err := a.Next([]byte("Too many"), true); !errors.Is(err, ErrUnexpectedServerChallenge) {
		t.Errorf("expected ErrUnexpectedServerChallenge, got: %v", err)
	}
	if resp, err := a.Next([]byte("2.7.0 Authentication successful"), false); err != nil || resp != nil {
		t.Errorf("final Next should return nil, nil, got: %q, %v", resp, err)
	}

	raw := LoginAuth("us\u00a0er", "p\u00a0ss\u2003word\t", "testserver")
	if _, _, err = raw.Start(&ServerInfo{Name: "testserver", TLS: true}); err != nil {
		t.Fatalf("Start failed: %s", err)
	}
	for i, want := range []string{"us\u00a0er", "p\u00a0ss\u2003word\t"} {
		if got, _ := raw.Next(nil, true); string(got) != want {
			t.Errorf("#%d credentials must be sent unchanged, expected %q, got %q", i, want, got)
		}
	}
}

func TestCommandVerb(t *testing.T) {
	tests := map[string]string{
		"MAIL FROM:<a@b.c>": "MAIL",
		"RCPT TO:<a@b.c>":   "RCPT",
		"ehlo localhost":    "EHLO",
		"DATA":              "DATA",
		"STARTTLS":          "STARTTLS",
	}
	for line, want := range tests {
		if got := commandVerb(line); got != want {
			t.Errorf("commandVerb(%q) = %q, want %q", line, got, want)
		}
	}
}

func TestMatchCode(t *testing.T) {
	tests := []struct {
		code, expect int
		want         bool
	}{
		{250, 0, true},
		{354, 0, true},
		{250, 2, true},
		{354, 2, false},
		{251, 25, true},
		{221, 25, false},
		{250, 250, true},
		{251, 250, false},
	}
	for _, tt := range tests {
		if got := matchCode(tt.code, tt.expect); got != tt.want {
			t.Errorf("matchCode(%d, %d) = %t, want %t", tt.code, tt.expect, got, tt.want)
		}
	}
}

func TestClient_StartTLS(t *testing.T) {
	ln := newLocalListener(t)
	defer func() {
		_ = ln.Close()
	}()
	errc := make(chan error, 1)
	go func() {
		errc <- serveStartTLS(ln)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("failed to dial: %s", err)
	}
	c, err := NewClient(conn, "example.com")
	if err != nil {
		t.Fatalf("NewClient failed: %s", err)
	}
	defer func() {
		_ = c.Close()
	}()
	if ok, _ := c.Extension("STARTTLS"); !ok {
		t.Fatal("expected STARTTLS to be advertised")
	}
	if err = c.StartTLS(testTLSConfig()); err != nil {
		t.Fatalf("StartTLS failed: %s", err)
	}
	if c.State() != StateGreeted {
		t.Errorf("expected state %s after upgrade, got %s", StateGreeted, c.State())
	}
	cs, ok := c.TLSConnectionState()
	if !ok || !cs.HandshakeComplete {
		t.Errorf("expected completed TLS handshake, got ok=%t, %+v", ok, cs)
	}
	if ok, _ = c.Extension("STARTTLS"); ok {
		t.Error("extensions must be taken from the EHLO on the TLS channel")
	}
	if ok, _ = c.Extension("AUTH"); !ok {
		t.Error("expected AUTH to be advertised on the TLS channel")
	}
	if err = c.Quit(); err != nil {
		t.Errorf("QUIT failed: %s", err)
	}
	if err = <-errc; err != nil {
		t.Fatalf("server error: %s", err)
	}
}

func TestClient_StartTLSRefused(t *testing.T) {
	c, _, _, _ := fakeClient("250-localhost\n250 STARTTLS\n454 4.7.0 TLS not available\n", "localhost")
	err := c.StartTLS(testTLSConfig())
	var terr *TLSUpgradeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TLSUpgradeError, got: %v", err)
	}
	var rerr *RejectedError
	if !errors.As(err, &rerr) || rerr.Code != 454 {
		t.Errorf("expected wrapped 454 rejection, got: %v", err)
	}
	if !strings.Contains(err.Error(), "refused") {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestClient_StartTLSPlaintextInjection(t *testing.T) {
	client, server := net.Pipe()
	defer func() {
		_ = server.Close()
	}()
	go func() {
		r := bufio.NewReader(server)
		_, _ = server.Write([]byte("220 ready\r\n"))
		_, _ = r.ReadString('\n')
		_, _ = server.Write([]byte("250-localhost\r\n250 STARTTLS\r\n"))
		_, _ = r.ReadString('\n')
		_, _ = server.Write([]byte("220 go ahead\r\n250 injected\r\n"))
	}()

	c, err := NewClient(client, "localhost")
	if err != nil {
		t.Fatalf("NewClient failed: %s", err)
	}
	defer func() {
		_ = c.Close()
	}()
	err = c.StartTLS(testTLSConfig())
	if !errors.Is(err, ErrPlaintextAfterStartTLS) {
		t.Fatalf("expected ErrPlaintextAfterStartTLS, got: %v", err)
	}
	var terr *TLSUpgradeError
	if !errors.As(err, &terr) {
		t.Errorf("expected TLSUpgradeError, got %T", err)
	}
}

func TestClient_StartTLSHandshakeFailure(t *testing.T) {
	ln := newLocalListener(t)
	defer func() {
		_ = ln.Close()
	}()
	go func() {
		_ = serveStartTLS(ln)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("failed to dial: %s", err)
	}
	c, err := NewClient(conn, "example.com")
	if err != nil {
		t.Fatalf("NewClient failed: %s", err)
	}
	defer func() {
		_ = c.Close()
	}()
	// no RootCAs: the self-signed test certificate is not trusted
	err = c.StartTLS(&tls.Config{ServerName: "example.com", MinVersion: tls.VersionTLS12})
	var terr *TLSUpgradeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TLSUpgradeError, got: %v", err)
	}
	if terr.Reply == nil || terr.Reply.Code != 220 {
		t.Errorf("expected the 220 reply to be recorded, got: %+v", terr.Reply)
	}
}

// serveStartTLS is a tiny SMTP server that performs the STARTTLS exchange and
// answers EHLO and QUIT on the encrypted channel
func serveStartTLS(ln net.Listener) error {
	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	r := bufio.NewReader(conn)
	send := func(w io.Writer, s string) {
		_, _ = w.Write([]byte(s + "\r\n"))
	}
	send(conn, "220 127.0.0.1 ESMTP service ready")
	if err = expectLine(r, "EHLO localhost"); err != nil {
		return err
	}
	send(conn, "250-127.0.0.1\r\n250-STARTTLS\r\n250 8BITMIME")
	if err = expectLine(r, "STARTTLS"); err != nil {
		return err
	}
	if r.Buffered() != 0 {
		return fmt.Errorf("client sent plaintext data after STARTTLS")
	}
	send(conn, "220 Go ahead")

	keypair, err := tls.X509KeyPair(localhostCert, localhostKey)
	if err != nil {
		return err
	}
	tlsConn := tls.Server(conn, &tls.Config{Certificates: []tls.Certificate{keypair}})
	if err = tlsConn.Handshake(); err != nil {
		return err
	}
	tr := bufio.NewReader(tlsConn)
	if err = expectLine(tr, "EHLO localhost"); err != nil {
		return err
	}
	send(tlsConn, "250-127.0.0.1\r\n250 AUTH LOGIN")
	if err = expectLine(tr, "QUIT"); err != nil {
		return err
	}
	send(tlsConn, "221 Bye")
	return nil
}

func expectLine(r *bufio.Reader, want string) error {
	line, err := r.ReadString('\n')
	if err != nil {
		return err
	}
	if got := strings.TrimRight(line, "\r\n"); got != want {
		return fmt.Errorf("expected %q, got %q", want, got)
	}
	return nil
}

func newLocalListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		ln, err = net.Listen("tcp6", "[::1]:0")
	}
	if err != nil {
		t.Fatal(err)
	}
	return ln
}

func testTLSConfig() *tls.Config {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(localhostCert)
	return &tls.Config{ServerName: "example.com", RootCAs: pool, MinVersion: tls.VersionTLS12}
}

// localhostCert is a PEM-encoded TLS cert generated from src/crypto/tls:
//
//	go run generate_cert.go --rsa-bits 1024 --host 127.0.0.1,::1,example.com \
//		--ca --start-date "Jan 1 00:00:00 1970" --duration=1000000h
var localhostCert = []byte(`
-----BEGIN CERTIFICATE-----
MIICFDCCAX2gAwIBAgIRAK0xjnaPuNDSreeXb+z+0u4wDQYJKoZIhvcNAQELBQAw
EjEQMA4GA1UEChMHQWNtZSBDbzAgFw03MDAxMDEwMDAwMDBaGA8yMDg0MDEyOTE2
MDAwMFowEjEQMA4GA1UEChMHQWNtZSBDbzCBnzANBgkqhkiG9w0BAQEFAAOBjQAw
gYkCgYEA0nFbQQuOWsjbGtejcpWz153OlziZM4bVjJ9jYruNw5n2Ry6uYQAffhqa
JOInCmmcVe2siJglsyH9aRh6vKiobBbIUXXUU1ABd56ebAzlt0LobLlx7pZEMy30
LqIi9E6zmL3YvdGzpYlkFRnRrqwEtWYbGBf3znO250S56CCWH2UCAwEAAaNoMGYw
DgYDVR0PAQH/BAQDAgKkMBMGA1UdJQQMMAoGCCsGAQUFBwMBMA8GA1UdEwEB/wQF
MAMBAf8wLgYDVR0RBCcwJYILZXhhbXBsZS5jb22HBH8AAAGHEAAAAAAAAAAAAAAA
AAAAAAEwDQYJKoZIhvcNAQELBQADgYEAbZtDS2dVuBYvb+MnolWnCNqvw1w5Gtgi
NmvQQPOMgM3m+oQSCPRTNGSg25e1Qbo7bgQDv8ZTnq8FgOJ/rbkyERw2JckkHpD4
n4qcK27WkEDBtQFlPihIM8hLIuzWoi/9wygiElTy/tVL3y7fGCvY2/k1KBthtZGF
tN8URjVmyEo=
-----END CERTIFICATE-----`)

// localhostKey is the private key for localhostCert.
var localhostKey = []byte(testingKey(`
-----BEGIN RSA TESTING KEY-----
MIICXgIBAAKBgQDScVtBC45ayNsa16NylbPXnc6XOJkzhtWMn2Niu43DmfZHLq5h
AB9+Gpok4icKaZxV7ayImCWzIf1pGHq8qKhsFshRddRTUAF3np5sDOW3QuhsuXHu
lkQzLfQuoiL0TrOYvdi90bOliWQVGdGurAS1ZhsYF/fOc7bnRLnoIJYfZQIDAQAB
AoGBAMst7OgpKyFV6c3JwyI/jWqxDySL3caU+RuTTBaodKAUx2ZEmNJIlx9eudLA
kucHvoxsM/eRxlxkhdFxdBcwU6J+zqooTnhu/FE3jhrT1lPrbhfGhyKnUrB0KKMM
VY3IQZyiehpxaeXAwoAou6TbWoTpl9t8ImAqAMY8hlULCUqlAkEA+9+Ry5FSYK/m
542LujIcCaIGoG1/Te6Sxr3hsPagKC2rH20rDLqXwEedSFOpSS0vpzlPAzy/6Rbb
PHTJUhNdwwJBANXkA+TkMdbJI5do9/mn//U0LfrCR9NkcoYohxfKz8JuhgRQxzF2
6jpo3q7CdTuuRixLWVfeJzcrAyNrVcBq87cCQFkTCtOMNC7fZnCTPUv+9q1tcJyB
vNjJu3yvoEZeIeuzouX9TJE21/33FaeDdsXbRhQEj23cqR38qFHsF1qAYNMCQQDP
QXLEiJoClkR2orAmqjPLVhR3t2oB3INcnEjLNSq8LHyQEfXyaFfu4U9l5+fRPL2i
jiC0k/9L5dHUsF0XZothAkEA23ddgRs+Id/HxtojqqUT27B8MT/IGNrYsp4DvS/c
qgkeluku4GjxRlDMBuXk94xOBEinUs+p/hwP1Alll80Tpg==
-----END RSA TESTING KEY-----`))

func testingKey(s string) string { return strings.ReplaceAll(s, "TESTING KEY", "PRIVATE KEY") }
