// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package site

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/KristoveNohy/mvmont/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// uploadsPrefix is the URL prefix of images stored in the uploads directory
const uploadsPrefix = "/uploads/"

var (
	// ErrUnsupportedImage is returned for uploads that are not PNG, JPEG, WebP or GIF
	ErrUnsupportedImage = errors.New("unsupported image format")

	errItemNotFound = errors.New("gallery item not found")
)

// dataURLRegexp splits a base64 data URL into its MIME type and payload
var dataURLRegexp = regexp.MustCompile(`(?is)^data:([^;,]+);base64,(.*)$`)

// GalleryItem is a stored gallery entry
type GalleryItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type galleryPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageData   string `json:"imageData"`
	ImageName   string `json:"imageName"`
	ImageURL    string `json:"imageUrl"`
}

type galleryListResponse struct {
	Items []GalleryItem `json:"items"`
}

type galleryItemResponse struct {
	Item GalleryItem `json:"item"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// requireAdmin only passes requests that carry the configured admin token in the
// X-Admin-Token header
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !checkAdminToken(s.cfg.AdminToken, r.Header.Get("X-Admin-Token")) {
			writeError(w, http.StatusUnauthorized, "Nesprávny administrátorský token", nil)
			return
		}
		next(w, r)
	})
}

// checkAdminToken compares the given token to the configured one. A configured value
// starting with "$2" is treated as a bcrypt hash.
func checkAdminToken(configured, given string) bool {
	if configured == "" || given == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1
}

func (s *Server) handleGalleryList(w http.ResponseWriter, _ *http.Request) {
	items, err := store.Read[GalleryItem](s.store, CollectionGallery)
	if err != nil {
		s.logError("failed to read gallery: %s", err)
		writeError(w, http.StatusInternalServerError, "Serverová chyba", nil)
		return
	}
	writeJSON(w, http.StatusOK, galleryListResponse{Items: items})
}

func (s *Server) handleGalleryCreate(w http.ResponseWriter, r *http.Request) {
	var p galleryPayload
	if err := decodeBody(w, r, &p); err != nil {
		writeBodyError(w, err)
		return
	}
	p.Title = clean(p.Title)
	p.Category = clean(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)

	errs := make(map[string]string)
	if p.Title == "" {
		errs["title"] = "Prosím, zadajte názov"
	}
	if p.Category == "" {
		errs["category"] = "Prosím, zadajte kategóriu"
	}
	if p.ImageData == "" && p.ImageURL == "" {
		errs["image"] = "Obrázok je povinný"
	}
	if len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Formulár obsahuje chyby", errs)
		return
	}

	imageURL := p.ImageURL
	if p.ImageData != "" {
		name := p.ImageName
		if name == "" {
			name = p.Title
		}
		var err error
		if imageURL, err = s.saveImage(p.ImageData, name); err != nil {
			s.writeGalleryError(w, err, "Nastala chyba pri ukladaní obrázka")
			return
		}
	}

	now := s.timestamp()
	item := GalleryItem{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Description: clean(p.Description),
		Category:    p.Category,
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := store.Update(s.store, CollectionGallery, func(items []GalleryItem) ([]GalleryItem, error) {
		return append(items, item), nil
	})
	if err != nil {
		if imageURL != p.ImageURL {
			s.removeImage(imageURL)
		}
		s.writeGalleryError(w, err, "Nastala chyba pri ukladaní obrázka")
		return
	}
	writeJSON(w, http.StatusCreated, galleryItemResponse{Item: item})
}

func (s *Server) handleGalleryUpdate(w http.ResponseWriter, r *http.Request) {
	var p galleryPayload
	if err := decodeBody(w, r, &p); err != nil {
		writeBodyError(w, err)
		return
	}
	id := r.PathValue("id")

	var updated GalleryItem
	var replaced, saved string
	err := store.Update(s.store, CollectionGallery, func(items []GalleryItem) ([]GalleryItem, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, errItemNotFound
		}
		updated = items[i]
		switch {
		case p.ImageData != "":
			name := p.ImageName
			if name == "" {
				name = updated.Title
			}
			url, err := s.saveImage(p.ImageData, name)
			if err != nil {
				return nil, err
			}
			replaced, saved = updated.ImageURL, url
			updated.ImageURL = url
		case strings.TrimSpace(p.ImageURL) != "":
			replaced = updated.ImageURL
			updated.ImageURL = strings.TrimSpace(p.ImageURL)
		}
		if v := clean(p.Title); v != "" {
			updated.Title = v
		}
		if v := clean(p.Description); v != "" {
			updated.Description = v
		}
		if v := clean(p.Category); v != "" {
			updated.Category = v
		}
		updated.UpdatedAt = s.timestamp()
		items[i] = updated
		return items, nil
	})
	if err != nil {
		if saved != "" {
			s.removeImage(saved)
		}
		s.writeGalleryError(w, err, "Nastala chyba pri aktualizácii položky")
		return
	}
	if replaced != "" && replaced != updated.ImageURL {
		s.removeImage(replaced)
	}
	writeJSON(w, http.StatusOK, galleryItemResponse{Item: updated})
}

func (s *Server) handleGalleryDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var removed GalleryItem
	err := store.Update(s.store, CollectionGallery, func(items []GalleryItem) ([]GalleryItem, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, errItemNotFound
		}
		removed = items[i]
		return append(items[:i], items[i+1:]...), nil
	})
	if err != nil {
		s.writeGalleryError(w, err, "Nastala chyba pri odstraňovaní položky")
		return
	}
	s.removeImage(removed.ImageURL)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Položka bola odstránená"})
}

// writeGalleryError maps err to the response of a failed gallery request. Unexpected
// errors are logged and answered with message.
func (s *Server) writeGalleryError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, errItemNotFound):
		writeError(w, http.StatusNotFound, "Položka nebola nájdená", nil)
	case errors.Is(err, ErrUnsupportedImage):
		writeError(w, http.StatusBadRequest, "Nepodporovaný formát obrázka", nil)
	default:
		s.logError("gallery request failed: %s", err)
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

// saveImage decodes a base64 image, plain or as data URL, into the uploads directory
// and returns its URL
func (s *Server) saveImage(data, name string) (string, error) {
	var mime string
	if m := dataURLRegexp.FindStringSubmatch(data); m != nil {
		mime, data = strings.ToLower(m[1]), m[2]
	}
	ext := imageExtension(name, mime)
	if ext == "" {
		return "", ErrUnsupportedImage
	}
	content, err := decodeBase64(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, err)
	}
	filename := uuid.NewString() + ext
	if err = os.WriteFile(filepath.Join(s.cfg.UploadsDir, filename), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return uploadsPrefix + filename, nil
}

// removeImage deletes an image from the uploads directory. URLs outside of the
// uploads directory are ignored.
func (s *Server) removeImage(url string) {
	name, ok := strings.CutPrefix(url, uploadsPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return
	}
	err := os.Remove(filepath.Join(s.cfg.UploadsDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logWarn("failed to delete image %s: %s", name, err)
	}
}

// imageExtension returns the file extension for an image, derived from its name or
// its MIME type
func imageExtension(name, mime string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".png") || mime == "image/png":
		return ".png"
	case strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpeg") || mime == "image/jpeg":
		return ".jpg"
	case strings.HasSuffix(name, ".webp") || mime == "image/webp":
		return ".webp"
	case strings.HasSuffix(name, ".gif") || mime == "image/gif":
		return ".gif"
	}
	return ""
}

// decodeBase64 decodes padded or unpadded base64 and ignores embedded whitespace
func decodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if strings.HasSuffix(s, "=") || len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func indexOf(items []GalleryItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
