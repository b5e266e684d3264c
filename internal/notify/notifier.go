// Package notify abstracts the out-of-band notification channel.
package notify

import (
	"context"
	"log"
)

// Notifier delivers a message to a recipient out of band. Delivery failures
// are non-fatal to most flows; flows whose entire purpose is delivering a
// code surface the error.
type Notifier interface {
	Send(ctx context.Context, recipientEmail, subject, body string) error
}

// LogNotifier writes notifications to the process log. It stands in for a
// real mail channel in development and tests.
type LogNotifier struct{}

// Send logs the notification and always succeeds.
func (LogNotifier) Send(ctx context.Context, recipientEmail, subject, body string) error {
	log.Printf("notify: to=%s subject=%q body=%q", recipientEmail, subject, body)
	return nil
}
