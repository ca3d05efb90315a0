package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"digital-delivery-gateway/config"
	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/internal/metrics"
	"digital-delivery-gateway/pkg/apperror"
	"digital-delivery-gateway/pkg/logger"

	"github.com/rs/zerolog"
)

// TestPublicOrderID is linked from test emails; it never matches a real order.
const TestPublicOrderID = "ABC123ABC123ABC123ABC123"

const sendTimeout = 30 * time.Second

var orderReadyHTML = template.Must(template.New("order_ready").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Helvetica, Arial, sans-serif; color: #222;">
    {{- if .BannerURL}}
    <img src="{{.BannerURL}}" alt="{{.FromName}}" style="max-width: 600px; width: 100%;">
    {{- end}}
    <h1>{{.Title}}</h1>
    <p>Your digital product from {{.FromName}} is ready to download.</p>
    <p><a href="{{.OrderURL}}">Download your files</a></p>
    <p style="font-size: 12px; color: #666;">Download links on the order page expire shortly after they are opened. You can return to the order page at any time to get fresh ones.</p>
  </body>
</html>
`))

type orderReadyView struct {
	Title     string
	FromName  string
	BannerURL string
	OrderURL  string
}

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	notifier ports.Notifier
	cfg      config.NotifyConfig
	tasks    ports.TaskRunner
	sleep    func(time.Duration)
	log      zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl. Dispatched
// emails run on tasks; a nil tasks starts plain goroutines.
func NewNotificationService(notifier ports.Notifier, cfg config.NotifyConfig, tasks ports.TaskRunner, log zerolog.Logger) *NotificationServiceImpl {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &NotificationServiceImpl{
		notifier: notifier,
		cfg:      cfg,
		tasks:    tasks,
		sleep:    time.Sleep,
		log:      log,
	}
}

// OrderURL returns the customer-facing order page.
func (s *NotificationServiceImpl) OrderURL(publicOrderID string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/order/" + publicOrderID
}

func (s *NotificationServiceImpl) compose(toEmail, publicOrderID string) (domain.EmailMessage, error) {
	view := orderReadyView{
		Title:     s.cfg.Title,
		FromName:  s.cfg.FromName,
		BannerURL: s.cfg.BannerURL,
		OrderURL:  s.OrderURL(publicOrderID),
	}

	var html bytes.Buffer
	if err := orderReadyHTML.Execute(&html, view); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("rendering email: %w", err)
	}

	text := fmt.Sprintf("%s\n\nYour digital product from %s is ready to download:\n%s\n",
		view.Title, view.FromName, view.OrderURL)

	return domain.EmailMessage{
		FromName:  s.cfg.FromName,
		FromEmail: s.cfg.FromEmail,
		ToEmail:   toEmail,
		Subject:   "Your digital product is ready from " + s.cfg.FromName,
		BodyHTML:  html.String(),
		BodyText:  text,
	}, nil
}

// SendOrderReady emails the customer a link to the order page.
func (s *NotificationServiceImpl) SendOrderReady(ctx context.Context, toEmail string, publicOrderID string) (string, error) {
	if toEmail == "" {
		return "", apperror.Validation("recipient email is required")
	}
	msg, err := s.compose(toEmail, publicOrderID)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		return "", apperror.InternalError(err)
	}

	id, err := s.notifier.Send(ctx, msg)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		return "", apperror.ErrNotificationFailure(err)
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return id, nil
}

// Dispatch sends the order email in the background. With the default of one
// attempt a failure is logged and dropped; more attempts back off linearly.
func (s *NotificationServiceImpl) Dispatch(toEmail string, publicOrderID string) {
	if s.tasks == nil {
		go s.deliverWithRetries(toEmail, publicOrderID)
		return
	}
	s.tasks.Go(func() { s.deliverWithRetries(toEmail, publicOrderID) })
}

func (s *NotificationServiceImpl) deliverWithRetries(toEmail, publicOrderID string) {
	masked := logger.MaskEmail(toEmail)

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			s.sleep(time.Duration(attempt-1) * s.cfg.RetryBackoff)
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		id, err := s.SendOrderReady(ctx, toEmail, publicOrderID)
		cancel()
		if err == nil {
			s.log.Info().
				Str("to", masked).
				Str("public_order_id", publicOrderID).
				Str("message_id", id).
				Int("attempt", attempt).
				Msg("order email sent")
			return
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "VAL_001" {
			s.log.Error().Err(err).Str("public_order_id", publicOrderID).Msg("order email not sendable")
			return
		}
		s.log.Warn().Err(err).
			Str("to", masked).
			Str("public_order_id", publicOrderID).
			Int("attempt", attempt).
			Msg("order email failed")
	}

	s.log.Error().
		Str("to", masked).
		Str("public_order_id", publicOrderID).
		Msg("order email: all attempts exhausted")
}

// SendTestEmail sends the order email for a placeholder order to the
// configured test address.
func (s *NotificationServiceImpl) SendTestEmail(ctx context.Context) (string, error) {
	if s.cfg.TestToEmail == "" {
		return "", apperror.Validation("notify.test_to_email is not configured")
	}
	return s.SendOrderReady(ctx, s.cfg.TestToEmail, TestPublicOrderID)
}
