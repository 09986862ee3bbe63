// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/KristoveNohy/mvmont/log"
	"github.com/KristoveNohy/mvmont/smtp"
)

// Defaults
const (
	// DefaultPort is the default connection port to the SMTP server
	DefaultPort = 25

	// DefaultPortSSL is the default connection port for SSL/TLS to the SMTP server
	DefaultPortSSL = 465

	// DefaultPortTLS is the default connection port for STARTTLS to the SMTP server
	DefaultPortTLS = 587

	// DefaultTimeout is the default timeout of a whole SMTP transaction, from the
	// dial to the QUIT reply
	DefaultTimeout = time.Second * 15

	// DefaultTLSPolicy is the default STARTTLS policy
	DefaultTLSPolicy = TLSMandatory

	// DefaultTLSMinVersion is the minimum TLS version required for the connection
	// Nowadays TLS1.2 should be the sane default
	DefaultTLSMinVersion = tls.VersionTLS12
)

// DialContextFunc is a type to define custom DialContext function.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client is the SMTP client configuration. It is read-only after NewClient returned
// and can be shared by concurrent calls to Send; every Send opens its own connection.
type Client struct {
	// Timeout of a whole SMTP transaction
	cto time.Duration

	// dialContextFunc is a custom DialContext function to dial target SMTP server
	dialContextFunc DialContextFunc

	// dl enables the debug logging on the SMTP client
	dl bool

	// HELO/EHLO string for the greeting the target SMTP server
	helo string

	// Hostname of the target SMTP server to connect to
	host string

	// l is a logger that implements the log.Logger interface
	l log.Logger

	// logAuthData disables the redaction of AUTH payloads in the debug log
	logAuthData bool

	// pass is the corresponding SMTP AUTH password
	pass string

	// Port of the SMTP server to connect to
	port int

	// satype represents the authentication type for SMTP AUTH
	satype SMTPAuthType

	// Use implicit SSL/TLS for the connection
	ssl bool

	// tlspolicy sets the client to use the provided TLSPolicy for the STARTTLS protocol
	tlspolicy TLSPolicy

	// tlsconfig represents the tls.Config setting for the STARTTLS connection
	tlsconfig *tls.Config

	// user is the SMTP AUTH username
	user string
}

// Option returns a function that can be used for grouping Client options
type Option func(*Client) error

var (
	// ErrInvalidPort should be used if a port is specified that is not valid
	ErrInvalidPort = errors.New("invalid port number")

	// ErrInvalidTimeout should be used if a timeout is set that is zero or negative
	ErrInvalidTimeout = errors.New("timeout cannot be zero or negative")

	// ErrInvalidHELO should be used if an empty HELO sting is provided
	ErrInvalidHELO = errors.New("invalid HELO/EHLO value - must not be empty")

	// ErrInvalidTLSConfig should be used if an empty tls.Config is provided
	ErrInvalidTLSConfig = errors.New("invalid TLS config")

	// ErrUnsupportedAuthType should be used if an SMTP AUTH type other than LOGIN is requested
	ErrUnsupportedAuthType = errors.New("unsupported SMTP AUTH type")

	// ErrNoHostname should be used if a Client has no hostname set
	ErrNoHostname = errors.New("hostname for client cannot be empty")

	// ErrNoCredentials should be used if SMTP AUTH is required but the username or the
	// password is empty
	ErrNoCredentials = errors.New("SMTP username and password are required")

	// ErrNoSender should be used if an Envelope has no From address
	ErrNoSender = errors.New("envelope has no sender address")

	// ErrNoRecipient should be used if an Envelope has no To address
	ErrNoRecipient = errors.New("envelope has no recipient address")

	// ErrInvalidAddress should be used if an address contains characters that would
	// break the SMTP command line
	ErrInvalidAddress = errors.New("invalid mail address")

	// ErrNoStartTLS should be used if the TLSPolicy is TLSMandatory but the server
	// does not advertise STARTTLS
	ErrNoStartTLS = errors.New("STARTTLS is mandatory, but the server does not support it")
)

// NewClient returns a new Client for the SMTP server h. An empty host is accepted
// here, so that an application can start without mail configuration; Send reports
// it as ErrConfiguration.
func NewClient(h string, o ...Option) (*Client, error) {
	c := &Client{
		cto:       DefaultTimeout,
		host:      h,
		port:      DefaultPortTLS,
		satype:    SMTPAuthLogin,
		tlsconfig: &tls.Config{ServerName: h, MinVersion: DefaultTLSMinVersion},
		tlspolicy: DefaultTLSPolicy,
	}

	// Set default HELO/EHLO hostname
	if err := c.setDefaultHelo(); err != nil {
		return c, err
	}

	// Override defaults with optionally provided Option functions
	for _, co := range o {
		if co == nil {
			continue
		}
		if err := co(c); err != nil {
			return c, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return c, nil
}

// WithPort overrides the default connection port
func WithPort(p int) Option {
	return func(c *Client) error {
		if p < 1 || p > 65535 {
			return ErrInvalidPort
		}
		c.port = p
		return nil
	}
}

// WithTimeout overrides the default timeout of a whole SMTP transaction
func WithTimeout(t time.Duration) Option {
	return func(c *Client) error {
		if t <= 0 {
			return ErrInvalidTimeout
		}
		c.cto = t
		return nil
	}
}

// WithSSL tells the client to use an implicit SSL/TLS connection. The TLS handshake
// happens right after the TCP connect, STARTTLS is never issued.
func WithSSL() Option {
	return func(c *Client) error {
		c.ssl = true
		return nil
	}
}

// WithSSLPort tells the client to use an implicit SSL/TLS connection.
// It automatically sets the port to 465.
func WithSSLPort() Option {
	return func(c *Client) error {
		c.ssl = true
		c.port = DefaultPortSSL
		return nil
	}
}

// WithDebugLog tells the client to log incoming and outgoing messages of the SMTP client
// to StdErr
func WithDebugLog() Option {
	return func(c *Client) error {
		c.dl = true
		return nil
	}
}

// WithLogger overrides the default log.Logger that is used for debug logging
func WithLogger(l log.Logger) Option {
	return func(c *Client) error {
		c.l = l
		return nil
	}
}

// WithLogAuthData tells the client to include SMTP AUTH payloads in the debug log.
// Only use this for debugging against a test server.
func WithLogAuthData() Option {
	return func(c *Client) error {
		c.logAuthData = true
		return nil
	}
}

// WithHELO tells the client to use the provided string as HELO/EHLO greeting host
func WithHELO(h string) Option {
	return func(c *Client) error {
		if h == "" {
			return ErrInvalidHELO
		}
		c.helo = h
		return nil
	}
}

// WithTLSPolicy tells the client to use the provided TLSPolicy
func WithTLSPolicy(p TLSPolicy) Option {
	return func(c *Client) error {
		c.tlspolicy = p
		return nil
	}
}

// WithTLSPortPolicy tells the client to use the provided TLSPolicy,
// The correct port is automatically set.
//
// Port 587 is used for TLSMandatory and TLSOpportunistic.
// NoTLS will always use port 25.
func WithTLSPortPolicy(p TLSPolicy) Option {
	return func(c *Client) error {
		c.port = DefaultPortTLS
		if p == NoTLS {
			c.port = DefaultPort
		}
		c.tlspolicy = p
		return nil
	}
}

// WithTLSConfig tells the client to use the provided *tls.Config
func WithTLSConfig(co *tls.Config) Option {
	return func(c *Client) error {
		if co == nil {
			return ErrInvalidTLSConfig
		}
		c.tlsconfig = co
		return nil
	}
}

// WithSMTPAuth tells the client to use the provided SMTPAuthType for authentication.
// Only SMTPAuthLogin and SMTPAuthNoAuth are supported.
func WithSMTPAuth(t SMTPAuthType) Option {
	return func(c *Client) error {
		switch t {
		case SMTPAuthLogin, SMTPAuthNoAuth:
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedAuthType, t)
		}
		c.satype = t
		return nil
	}
}

// WithUsername tells the client to use the provided string as username for authentication
func WithUsername(u string) Option {
	return func(c *Client) error {
		c.user = u
		return nil
	}
}

// WithPassword tells the client to use the provided string as password/secret for authentication
func WithPassword(p string) Option {
	return func(c *Client) error {
		c.pass = p
		return nil
	}
}

// WithDialContextFunc overrides the default DialContext for connecting SMTP server.
// With WithSSL the TLS handshake is performed on the returned connection.
func WithDialContextFunc(f DialContextFunc) Option {
	return func(c *Client) error {
		c.dialContextFunc = f
		return nil
	}
}

// TLSPolicy returns the currently set TLSPolicy as string
func (c *Client) TLSPolicy() string {
	return c.tlspolicy.String()
}

// ServerAddr returns the currently set combination of hostname and port
func (c *Client) ServerAddr() string {
	return net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port))
}

// setDefaultHelo retrieves the current hostname and sets it as HELO/EHLO hostname
func (c *Client) setDefaultHelo() error {
	hn, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to read local hostname: %w", err)
	}
	c.helo = hn
	return nil
}

// Send delivers the Envelope in one SMTP transaction on a new connection:
//
//	dial, greeting, EHLO, STARTTLS + EHLO, AUTH LOGIN, MAIL, RCPT, DATA, QUIT
//
// The connection is closed on every return path. One deadline, now plus the
// configured timeout, covers the whole transaction; cancelling ctx aborts it as
// well. The send succeeds once the server accepted the message with a 250 reply; a
// failing QUIT afterwards is logged only. Every error is a *SendError.
func (c *Client) Send(ctx context.Context, e Envelope) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		var se *SendError
		if errors.As(err, &se) {
			result = se.Reason.label()
		}
		metricSend.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	if err = c.validate(e); err != nil {
		return newConfigError(err)
	}
	msg, err := buildMessage(e)
	if err != nil {
		return newConfigError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cto)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		return newSendError("dial", &smtp.ConnectionError{Op: "dial", Err: err})
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err = conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return newSendError("dial", &smtp.ConnectionError{Op: "set deadline", Err: err})
		}
	}
	// a deadline in the past aborts all pending reads and writes
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	sc, err := smtp.NewClient(conn, c.host)
	if err != nil {
		return newSendError("greeting", err)
	}
	defer func() {
		if cerr := sc.Close(); cerr != nil {
			c.logWarn("failed to close SMTP connection: %s", cerr)
		}
	}()
	if c.l != nil {
		sc.SetLogger(c.l)
	}
	if c.dl {
		sc.SetDebugLog(true)
	}
	if c.logAuthData {
		sc.SetLogAuthData()
	}

	if err = sc.Hello(c.helo); err != nil {
		return newSendError("EHLO", err)
	}
	if err = c.tls(sc); err != nil {
		return newSendError("STARTTLS", err)
	}
	if err = c.auth(sc); err != nil {
		return newSendError("AUTH", err)
	}
	if err = sc.Mail(e.From); err != nil {
		return newSendError("MAIL", err)
	}
	if err = sc.Rcpt(e.To); err != nil {
		return newSendError("RCPT", err)
	}
	if err = sc.Data(msg); err != nil {
		return newSendError("DATA", err)
	}
	if qerr := sc.Quit(); qerr != nil {
		c.logWarn("QUIT failed after the message to %s was accepted: %s", e.To, qerr)
	}
	return nil
}

// validate checks that the Client and the Envelope are complete, so that no
// connection is opened for a send that cannot succeed
func (c *Client) validate(e Envelope) error {
	if c.host == "" {
		return ErrNoHostname
	}
	if c.satype == SMTPAuthLogin && (c.user == "" || c.pass == "") {
		return ErrNoCredentials
	}
	if strings.TrimSpace(e.From) == "" {
		return ErrNoSender
	}
	if strings.TrimSpace(e.To) == "" {
		return ErrNoRecipient
	}
	for _, addr := range []string{e.From, e.To, e.ReplyTo} {
		if strings.ContainsAny(addr, "\r\n<>") {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
		}
	}
	return nil
}

// dial opens the connection to the SMTP server. With implicit TLS the handshake is
// completed before dial returns.
func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	security := "plain"
	if c.ssl {
		security = "tls"
	}
	metricConnections.WithLabelValues(security).Inc()

	if c.dialContextFunc == nil {
		nd := net.Dialer{}
		if c.ssl {
			td := tls.Dialer{NetDialer: &nd, Config: c.tlsconfig}
			return td.DialContext(ctx, "tcp", c.ServerAddr())
		}
		return nd.DialContext(ctx, "tcp", c.ServerAddr())
	}

	conn, err := c.dialContextFunc(ctx, "tcp", c.ServerAddr())
	if err != nil || !c.ssl {
		return conn, err
	}
	tlsConn := tls.Client(conn, c.tlsconfig)
	if err = tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// tls makes sure that the STARTTLS requirements of the TLSPolicy are satisfied
func (c *Client) tls(sc *smtp.Client) error {
	if c.ssl || c.tlspolicy == NoTLS {
		return nil
	}
	st, _ := sc.Extension("STARTTLS")
	if !st {
		if c.tlspolicy == TLSMandatory {
			return &smtp.TLSUpgradeError{Err: ErrNoStartTLS}
		}
		c.logWarn("STARTTLS not offered by %s, continuing unencrypted", c.host)
		return nil
	}
	return sc.StartTLS(c.tlsconfig)
}

// auth performs SMTP AUTH LOGIN unless the Client is configured without authentication
func (c *Client) auth(sc *smtp.Client) error {
	if c.satype == SMTPAuthNoAuth {
		return nil
	}
	return sc.Auth(smtp.LoginAuth(c.user, c.pass, c.host))
}

// logWarn logs an application message at warn level if a logger is configured
func (c *Client) logWarn(format string, args ...interface{}) {
	if c.l == nil {
		return
	}
	c.l.Warnf(log.Log{Direction: log.DirNone, Format: format, Messages: args})
}
