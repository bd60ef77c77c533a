package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"catalogsite/internal/cms"
	"catalogsite/internal/i18n"
	"catalogsite/internal/metrics"
)

var ErrSubmitFailed = errors.New("contact submission failed")

// RateLimitedError is returned when a client has exhausted its window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many submissions, retry in %s", e.RetryAfter.Round(time.Second))
}

type Forwarder interface {
	SubmitContact(ctx context.Context, form cms.ContactForm) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type Service struct {
	Forwarder Forwarder
	Repo      *Repository
	Limiter   *RateLimiter
	Mailer    Mailer
	NotifyTo  string
	Default   string

	newID func() string
	now   func() time.Time
}

func NewService(fwd Forwarder, repo *Repository, limiter *RateLimiter, mailer Mailer, notifyTo, defaultLocale string) *Service {
	return &Service{
		Forwarder: fwd,
		Repo:      repo,
		Limiter:   limiter,
		Mailer:    mailer,
		NotifyTo:  notifyTo,
		Default:   defaultLocale,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Submit validates, throttles and records one submission, returning its id.
// The submission succeeds when it reached either the CMS or the database.
// Notification mail is best effort.
func (s *Service) Submit(ctx context.Context, form Form, ip string) (string, error) {
	form = form.Normalize()
	if form.Locale == "" {
		form.Locale = s.Default
	}
	if err := form.Validate(); err != nil {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return "", err
	}

	if s.Limiter != nil {
		ok, retry, err := s.Limiter.Allow(ctx, ip)
		if err != nil {
			log.Printf("contact: rate limiter: %v", err)
		} else if !ok {
			metrics.ContactSubmissions.WithLabelValues("limited").Inc()
			return "", &RateLimitedError{RetryAfter: retry}
		}
	}

	in := Inquiry{ID: s.newID(), Form: form, IP: ip, CreatedAt: s.now()}

	fwdErr := s.Forwarder.SubmitContact(ctx, cms.ContactForm{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Company: form.Company,
		Message: form.Message,
		Locale:  form.Locale,
	})
	if fwdErr != nil {
		log.Printf("contact: forward %s: %v", in.ID, fwdErr)
	}
	in.Forwarded = fwdErr == nil

	var saveErr error
	if s.Repo != nil {
		if saveErr = s.Repo.Create(ctx, in); saveErr != nil {
			log.Printf("contact: save %s: %v", in.ID, saveErr)
		}
	} else {
		saveErr = errors.New("no repository")
	}

	if fwdErr != nil && saveErr != nil {
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", ErrSubmitFailed, fwdErr)
	}

	s.notify(ctx, in)
	metrics.ContactSubmissions.WithLabelValues("ok").Inc()
	return in.ID, nil
}

func (s *Service) notify(ctx context.Context, in Inquiry) {
	if s.Mailer == nil {
		return
	}
	if s.NotifyTo != "" {
		msg := i18n.InquiryEmail(s.Default, i18n.Inquiry{
			ID:      in.ID,
			Locale:  in.Form.Locale,
			Name:    in.Form.Name,
			Email:   in.Form.Email,
			Phone:   in.Form.Phone,
			Company: in.Form.Company,
			Message: in.Form.Message,
		})
		if err := s.Mailer.Send(ctx, s.NotifyTo, msg.Subject, msg.Text, msg.HTML); err != nil {
			log.Printf("contact: notify %s: %v", in.ID, err)
		}
	}
	receipt := i18n.ReceiptEmail(in.Form.Locale, in.Form.Name, in.ID)
	if err := s.Mailer.Send(ctx, in.Form.Email, receipt.Subject, receipt.Text, receipt.HTML); err != nil {
		log.Printf("contact: receipt %s: %v", in.ID, err)
	}
}
