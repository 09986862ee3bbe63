// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	mail "github.com/KristoveNohy/mvmont"
	"github.com/KristoveNohy/mvmont/internal/store"
	"github.com/google/uuid"
)

const (
	// EmailStatusSent reports that both notifications were accepted by the SMTP server
	EmailStatusSent = "sent"
	// EmailStatusFailed reports that at least one notification was not delivered
	EmailStatusFailed = "failed"
)

var (
	// ErrNoContactTo is returned when the staff recipient is not configured
	ErrNoContactTo = errors.New("CONTACT_TO is not set")
	// ErrNoContactFrom is returned when the notification sender is not configured
	ErrNoContactFrom = errors.New("CONTACT_FROM is not set")
)

// emailRegexp is the loose address check of the contact form
var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// serviceLabels maps the service codes of the contact form to their display names
var serviceLabels = map[string]string{
	"frameless": "Bezrámové presklenia",
	"framed":    "Rámové presklenia",
	"shutters":  "Rolety",
	"blinds":    "Žalúzie",
	"terraces":  "Terasy",
	"railings":  "Balkónové zábradlia",
	"screens":   "Siete proti hmyzu",
}

// Contact is a stored contact form submission
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Service   string `json:"service"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type contactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

type contactResponse struct {
	Message     string  `json:"message"`
	Contact     Contact `json:"contact"`
	EmailStatus string  `json:"emailStatus"`
}

// ServiceLabel returns the display name of a service code, or the code itself if it
// is unknown
func ServiceLabel(service string) string {
	if l, ok := serviceLabels[service]; ok {
		return l
	}
	return service
}

func (p *contactPayload) clean() {
	p.Name = clean(p.Name)
	p.Email = clean(p.Email)
	p.Phone = clean(p.Phone)
	p.Service = clean(p.Service)
	p.Message = clean(p.Message)
}

func (p *contactPayload) validate() map[string]string {
	errs := make(map[string]string)
	if p.Name == "" {
		errs["name"] = "Prosím, zadajte vaše meno"
	}
	if !emailRegexp.MatchString(p.Email) {
		errs["email"] = "Prosím, zadajte platný e-mail"
	}
	if p.Phone == "" {
		errs["phone"] = "Prosím, zadajte telefónne číslo"
	}
	if p.Service == "" {
		errs["service"] = "Prosím, vyberte typ služby"
	}
	if p.Message == "" {
		errs["message"] = "Prosím, zadajte vašu správu"
	}
	return errs
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var p contactPayload
	if err := decodeBody(w, r, &p); err != nil {
		writeBodyError(w, err)
		return
	}
	p.clean()
	if errs := p.validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Formulár obsahuje chyby", errs)
		return
	}

	entry := Contact{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Service:   p.Service,
		Message:   p.Message,
		CreatedAt: s.timestamp(),
	}
	err := store.Update(s.store, CollectionContacts, func(contacts []Contact) ([]Contact, error) {
		return append([]Contact{entry}, contacts...), nil
	})
	if err != nil {
		s.logError("failed to store contact submission: %s", err)
		writeError(w, http.StatusInternalServerError, "Nastala chyba pri odosielaní formulára", nil)
		return
	}

	status := EmailStatusSent
	// the submission is stored, so a client disconnect must not abort the notifications
	if err = s.notify(context.WithoutCancel(r.Context()), entry); err != nil {
		s.logWarn("contact notification for %s failed: %s", entry.ID, err)
		status = EmailStatusFailed
	}

	writeJSON(w, http.StatusCreated, contactResponse{
		Message:     "Ďakujeme za vašu správu! Ozveme sa vám čo najskôr.",
		Contact:     entry,
		EmailStatus: status,
	})
}

// notify sends the staff notification and the acknowledgment for entry concurrently
// and returns the joined errors of both sends
func (s *Server) notify(ctx context.Context, entry Contact) error {
	switch {
	case s.cfg.ContactTo == "":
		metricContactNotify.WithLabelValues("skipped").Inc()
		return ErrNoContactTo
	case s.cfg.ContactFrom == "":
		metricContactNotify.WithLabelValues("skipped").Inc()
		return ErrNoContactFrom
	}

	envelopes := []mail.Envelope{s.companyEnvelope(entry), s.customerEnvelope(entry)}
	errs := make([]error, len(envelopes))
	var wg sync.WaitGroup
	for i := range envelopes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.notifier.Send(ctx, envelopes[i]); err != nil {
				errs[i] = fmt.Errorf("message to %s: %w", envelopes[i].To, err)
			}
		}(i)
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		metricContactNotify.WithLabelValues(EmailStatusFailed).Inc()
		return err
	}
	metricContactNotify.WithLabelValues(EmailStatusSent).Inc()
	return nil
}

// companyEnvelope is the notification for the staff mailbox
func (s *Server) companyEnvelope(entry Contact) mail.Envelope {
	return mail.Envelope{
		From:    s.cfg.ContactFrom,
		To:      s.cfg.ContactTo,
		Subject: fmt.Sprintf("Nový kontakt z webu (%s)", s.cfg.CompanyName),
		Text: strings.Join([]string{
			"Meno: " + entry.Name,
			"E-mail: " + entry.Email,
			"Telefón: " + entry.Phone,
			"Typ služby: " + ServiceLabel(entry.Service),
			"",
			"Správa:",
			entry.Message,
			"",
			"Čas odoslania: " + entry.CreatedAt,
		}, "\n"),
	}
}

// customerEnvelope is the acknowledgment for the submitter. Replies go to the staff
// mailbox.
func (s *Server) customerEnvelope(entry Contact) mail.Envelope {
	return mail.Envelope{
		From:    s.cfg.ContactFrom,
		To:      entry.Email,
		ReplyTo: s.cfg.ContactTo,
		Subject: fmt.Sprintf("Potvrdenie prijatia správy (%s)", s.cfg.CompanyName),
		Text: strings.Join([]string{
			fmt.Sprintf("Dobrý deň %s,", entry.Name),
			"",
			"Ďakujeme za Vašu správu. Potvrdzujeme jej prijatie a čoskoro sa Vám ozveme.",
			"",
			"Zhrnutie:",
			"Typ služby: " + ServiceLabel(entry.Service),
			"Telefón: " + entry.Phone,
			"",
			"Vaša správa:",
			entry.Message,
			"",
			"S pozdravom,",
			s.cfg.CompanyName,
		}, "\n"),
	}
}
