// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

// Package site implements the HTTP side of the MV-MONT web site: the contact form,
// the gallery administration API and the static file server.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	mail "github.com/KristoveNohy/mvmont"
	"github.com/KristoveNohy/mvmont/internal/config"
	"github.com/KristoveNohy/mvmont/internal/store"
	"github.com/KristoveNohy/mvmont/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/unicode/norm"
)

const (
	// CollectionContacts is the store collection for contact form submissions
	CollectionContacts = "contacts"
	// CollectionGallery is the store collection for gallery items
	CollectionGallery = "gallery"

	// MaxBodySize is the largest accepted request body
	MaxBodySize = 5 << 20

	// timeFormat matches the millisecond precision UTC timestamps of the stored records
	timeFormat = "2006-01-02T15:04:05.000Z07:00"
)

// Notifier delivers a single mail envelope. *mail.Client satisfies it.
type Notifier interface {
	Send(ctx context.Context, e mail.Envelope) error
}

// Server serves the site. It is safe for concurrent use.
type Server struct {
	cfg      *config.Config
	handler  http.Handler
	log      log.Logger
	notifier Notifier
	now      func() time.Time
	store    *store.Store
}

// errorResponse is the JSON body of every failed API request
type errorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// New returns a Server for the given configuration. It creates the uploads directory
// and the collections in st if they are missing.
func New(cfg *config.Config, st *store.Store, n Notifier, l log.Logger) (*Server, error) {
	if cfg == nil || st == nil || n == nil || l == nil {
		return nil, errors.New("site: configuration, store, notifier and logger are required")
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	for _, name := range []string{CollectionContacts, CollectionGallery} {
		if err := st.Ensure(name); err != nil {
			return nil, err
		}
	}
	s := &Server{
		cfg:      cfg,
		log:      l,
		notifier: n,
		now:      time.Now,
		store:    st,
	}
	s.handler = s.routes()
	return s, nil
}

// ServeHTTP satisfies the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/contact", instrument("contact", http.HandlerFunc(s.handleContact)))
	mux.Handle("GET /api/gallery", instrument("gallery_list", http.HandlerFunc(s.handleGalleryList)))
	mux.Handle("POST /api/gallery", instrument("gallery_create", s.requireAdmin(s.handleGalleryCreate)))
	mux.Handle("PUT /api/gallery/{id}", instrument("gallery_update", s.requireAdmin(s.handleGalleryUpdate)))
	mux.Handle("DELETE /api/gallery/{id}", instrument("gallery_delete", s.requireAdmin(s.handleGalleryDelete)))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /uploads/", instrument("uploads", s.fileServer(s.cfg.UploadsDir, "/uploads")))
	mux.Handle("GET /", instrument("static", s.fileServer(s.cfg.PublicDir, "")))
	return cors(mux)
}

// instrument wraps h with the request counter and duration metrics for the given handler name
func instrument(name string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": name}
	return promhttp.InstrumentHandlerDuration(metricHTTPDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(metricHTTPRequests.MustCurryWith(labels), h))
}

// cors adds the CORS headers to every response and answers preflight requests
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Admin-Token")
		h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeBody decodes the JSON request body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodySize)
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeBodyError answers a request whose body could not be decoded
func writeBodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "Požiadavka je príliš veľká", nil)
		return
	}
	writeError(w, http.StatusBadRequest, "Neplatný formát požiadavky", nil)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, details map[string]string) {
	writeJSON(w, status, errorResponse{Message: message, Details: details})
}

// clean trims a submitted text field and brings it into Unicode normalization form C,
// so that composed and decomposed input is stored alike
func clean(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(timeFormat)
}

func (s *Server) logError(format string, args ...interface{}) {
	s.log.Errorf(log.Log{Direction: log.DirNone, Format: format, Messages: args})
}

func (s *Server) logWarn(format string, args ...interface{}) {
	s.log.Warnf(log.Log{Direction: log.DirNone, Format: format, Messages: args})
}
