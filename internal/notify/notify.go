// Package notify sends the report to the patient when an order is delivered.
// The report content is treated as an opaque text blob.
package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/lims-api/internal/model"
	"github.com/jwalitptl/lims-api/pkg/logger"
)

// Notifier is called by the presentation layer after a successful transition
// to delivered. Failures must never affect the transition itself.
type Notifier interface {
	OrderDelivered(ctx context.Context, order *model.Order) error
}

// NopNotifier is used when no SMTP transport is configured.
type NopNotifier struct{}

func (NopNotifier) OrderDelivered(ctx context.Context, order *model.Order) error {
	return nil
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier mails the report to the patient on delivery. Patients without
// an email address are skipped.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	log    *logger.Logger
}

func NewEmailNotifier(cfg EmailConfig, log *logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (n *EmailNotifier) OrderDelivered(ctx context.Context, order *model.Order) error {
	if order.Patient.Email == "" {
		n.log.Debug("patient has no email, skipping delivery notification",
			"order_id", order.OrderID)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", order.Patient.Email)
	m.SetHeader("Subject", fmt.Sprintf("Lab report for order %s", order.OrderID))
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nYour lab report for order %s is ready.\n\n%s\n",
		order.Patient.Name, order.OrderID, order.ReportContent,
	))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send delivery notification: %w", err)
	}
	return nil
}
