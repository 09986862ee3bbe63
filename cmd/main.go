// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mail "github.com/KristoveNohy/mvmont"
	"github.com/KristoveNohy/mvmont/internal/config"
	"github.com/KristoveNohy/mvmont/internal/site"
	"github.com/KristoveNohy/mvmont/internal/store"
	"github.com/KristoveNohy/mvmont/log"
)

// shutdownTimeout bounds the time in-flight requests get to finish on shutdown
const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %s\n", err)
		os.Exit(1)
	}
	l := cfg.Logger(os.Stderr)
	if err = run(cfg, l); err != nil {
		l.Errorf(log.Log{Direction: log.DirNone, Format: "server failed: %s", Messages: []interface{}{err}})
		os.Exit(1)
	}
}

func run(cfg *config.Config, l log.Logger) error {
	mc, err := mail.NewClient(cfg.SMTP.Host, cfg.MailOptions(l)...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if cfg.SMTP.Host == "" || !cfg.MailConfigured() {
		l.Warnf(log.Log{Direction: log.DirNone, Format: "SMTP_HOST, CONTACT_TO or CONTACT_FROM is not set, " +
			"contact notifications will fail"})
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return err
	}
	srv, err := site.New(cfg, st, mc, l)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		l.Infof(log.Log{Direction: log.DirNone, Format: "server listening on http://localhost:%d",
			Messages: []interface{}{cfg.Port}})
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	l.Infof(log.Log{Direction: log.DirNone, Format: "shutting down"})
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = hs.Shutdown(sctx); err != nil {
		return fmt.Errorf("failed to shut down gracefully: %w", err)
	}
	return nil
}
