// Package notification delivers trading-event alerts to external channels.
package notification

import (
	"context"
	"fmt"
	"log"

	"tradingbot/internal/model"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo    AlertLevel = "INFO"
	AlertWarning AlertLevel = "WARNING"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// OrderAlert builds the alert for one order attempt. Failed orders escalate
// to WARNING because the exchange and local position may now disagree.
func OrderAlert(symbol string, side model.Signal, qty, price float64, reason string, orderErr error) Alert {
	if orderErr != nil {
		return Alert{
			Level: AlertWarning,
			Title: fmt.Sprintf("%s order FAILED (%s)", symbol, reason),
			Message: fmt.Sprintf("%s %.6f @ %.2f: %v — local position state updated anyway",
				side.String(), qty, price, orderErr),
		}
	}
	return Alert{
		Level:   AlertInfo,
		Title:   fmt.Sprintf("%s %s (%s)", symbol, side.String(), reason),
		Message: fmt.Sprintf("%s %.6f @ %.2f", side.String(), qty, price),
	}
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier logs alerts instead of delivering them (useful for development
// and as the fallback when no webhook is configured).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}
