// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

// Package config reads the runtime configuration of the mvmont server from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	mail "github.com/KristoveNohy/mvmont"
	"github.com/KristoveNohy/mvmont/log"
)

// Defaults
const (
	DefaultHTTPPort    = 3000
	DefaultAdminToken  = "changeme-admin-token"
	DefaultDataDir     = "data"
	DefaultUploadsDir  = "uploads"
	DefaultPublicDir   = "."
	DefaultCompanyName = "MV-MONT"
	DefaultSMTPTimeout = 15 * time.Second
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ErrInvalidValue is returned if an environment variable holds a malformed value
var ErrInvalidValue = errors.New("invalid configuration value")

// Config is the complete runtime configuration. It is built once at start-up and
// not modified afterwards.
type Config struct {
	Port       int
	AdminToken string
	DataDir    string
	UploadsDir string
	PublicDir  string

	CompanyName string
	ContactTo   string
	ContactFrom string

	LogFormat string
	LogLevel  log.Level

	SMTP SMTP
}

// SMTP is the configuration of the outgoing mail server
type SMTP struct {
	Host    string
	Port    int
	User    string
	Pass    string
	Secure  bool
	Timeout time.Duration
	HELO    string
	Debug   bool
}

// LookupFunc looks up an environment variable, os.LookupEnv satisfies it
type LookupFunc func(key string) (string, bool)

// Load reads the given .env files into the process environment and parses the
// configuration from it. Files that do not exist are skipped and variables that
// are already set in the environment are never overridden.
func Load(envFiles ...string) (*Config, error) {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat env file: %w", err)
		}
		existing = append(existing, f)
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	return Parse(os.LookupEnv)
}

// Parse builds a Config from the variables returned by lookup. All malformed values
// are reported at once.
func Parse(lookup LookupFunc) (*Config, error) {
	p := &parser{lookup: lookup}
	c := &Config{
		Port:        p.int("PORT", DefaultHTTPPort),
		AdminToken:  p.string("ADMIN_TOKEN", DefaultAdminToken),
		DataDir:     p.string("DATA_DIR", DefaultDataDir),
		UploadsDir:  p.string("UPLOADS_DIR", DefaultUploadsDir),
		PublicDir:   p.string("PUBLIC_DIR", DefaultPublicDir),
		CompanyName: p.string("COMPANY_NAME", DefaultCompanyName),
		ContactTo:   p.string("CONTACT_TO", ""),
		ContactFrom: p.string("CONTACT_FROM", ""),
		LogFormat:   strings.ToLower(p.string("LOG_FORMAT", LogFormatText)),
		LogLevel:    p.level("LOG_LEVEL"),
	}
	c.SMTP = SMTP{
		Host:    p.string("SMTP_HOST", ""),
		Port:    p.int("SMTP_PORT", mail.DefaultPortTLS),
		User:    p.string("SMTP_USER", ""),
		Pass:    p.string("SMTP_PASS", ""),
		HELO:    p.string("SMTP_HELO", ""),
		Debug:   p.bool("SMTP_DEBUG", false),
		Timeout: time.Duration(p.int("SMTP_TIMEOUT_MS", int(DefaultSMTPTimeout/time.Millisecond))) * time.Millisecond,
	}
	c.SMTP.Secure = p.bool("SMTP_SECURE", false) || c.SMTP.Port == mail.DefaultPortSSL
	// the wire log is written at debug level
	if c.SMTP.Debug && p.string("LOG_LEVEL", "") == "" {
		c.LogLevel = log.LevelDebug
	}

	if c.Port < 1 || c.Port > 65535 {
		p.fail("PORT", strconv.Itoa(c.Port), errors.New("port out of range"))
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		p.fail("SMTP_PORT", strconv.Itoa(c.SMTP.Port), errors.New("port out of range"))
	}
	if c.SMTP.Timeout <= 0 {
		p.fail("SMTP_TIMEOUT_MS", c.SMTP.Timeout.String(), errors.New("timeout must be positive"))
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		p.fail("LOG_FORMAT", c.LogFormat, errors.New("must be text or json"))
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Logger returns the application logger for the configured format and level
func (c *Config) Logger(w io.Writer) log.Logger {
	if c.LogFormat == LogFormatJSON {
		return log.NewJSON(w, c.LogLevel)
	}
	return log.New(w, c.LogLevel)
}

// MailConfigured reports whether contact notifications can be sent at all
func (c *Config) MailConfigured() bool {
	return c.ContactTo != "" && c.ContactFrom != ""
}

// MailOptions turns the SMTP section into mail.Options. Implicit TLS is used for
// SMTP_SECURE (or port 465); otherwise STARTTLS is mandatory on the submission
// port 587 and opportunistic on every other port.
func (c *Config) MailOptions(l log.Logger) []mail.Option {
	s := c.SMTP
	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithUsername(s.User),
		mail.WithPassword(s.Pass),
		mail.WithTimeout(s.Timeout),
		mail.WithLogger(l),
	}
	if s.HELO != "" {
		opts = append(opts, mail.WithHELO(s.HELO))
	}
	switch {
	case s.Secure:
		opts = append(opts, mail.WithSSL())
	case s.Port == mail.DefaultPortTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.Debug {
		opts = append(opts, mail.WithDebugLog())
	}
	return opts
}

// parser collects the errors of all malformed variables
type parser struct {
	lookup LookupFunc
	errs   []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%w: %s=%q: %s", ErrInvalidValue, key, value, err))
}

func (p *parser) string(key, def string) string {
	v, ok := p.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func (p *parser) int(key string, def int) int {
	v := p.string(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := p.string(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

func (p *parser) level(key string) log.Level {
	v := p.string(key, "")
	l, err := log.ParseLevel(v)
	if err != nil {
		p.fail(key, v, err)
	}
	return l
}
