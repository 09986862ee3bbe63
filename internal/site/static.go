// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package site

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

var errForbidden = errors.New("forbidden path")

// contentTypes maps file extensions to the Content-Type of served files
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".gif":  "image/gif",
}

// contentType returns the Content-Type for a file name
func contentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// fileServer serves the files below root. The prefix is stripped from the request
// path before it is resolved.
func (s *Server) fileServer(root, prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, prefix)
		name, err := s.resolve(root, p)
		if err != nil {
			s.writeFileError(w, err)
			return
		}
		f, err := os.Open(name)
		if err != nil {
			s.writeFileError(w, err)
			return
		}
		defer func() {
			_ = f.Close()
		}()
		info, err := f.Stat()
		if err != nil {
			s.writeFileError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType(name))
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

// resolve maps a URL path to a regular file below root. Directories resolve to their
// index.html. Hidden files and the data directory are never served.
func (s *Server) resolve(root, urlPath string) (string, error) {
	if strings.Contains(urlPath, "\x00") {
		return "", errForbidden
	}
	clean := path.Clean("/" + urlPath)
	if clean == "/" {
		clean = "/index.html"
	}
	for _, seg := range strings.Split(clean, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", errForbidden
		}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	name := filepath.Join(absRoot, filepath.FromSlash(clean))
	if !within(absRoot, name) {
		return "", errForbidden
	}
	if s.cfg.DataDir != "" {
		if absData, err := filepath.Abs(s.cfg.DataDir); err == nil && within(absData, name) {
			return "", errForbidden
		}
	}

	info, err := os.Stat(name)
	if errors.Is(err, syscall.ENOTDIR) {
		return "", fs.ErrNotExist
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		name = filepath.Join(name, "index.html")
		if info, err = os.Stat(name); err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fs.ErrNotExist
		}
	}
	return name, nil
}

// within reports whether name is dir or below it
func within(dir, name string) bool {
	rel, err := filepath.Rel(dir, name)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (s *Server) writeFileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", nil)
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "Súbor nebol nájdený", nil)
	default:
		s.logError("failed to serve static file: %s", err)
		writeError(w, http.StatusInternalServerError, "Serverová chyba", nil)
	}
}
