package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const notificationTitle = "Task timer expired"

// Notifier surfaces a short expiry message to the user. The capability may
// be unavailable or denied; implementations swallow failures so that an
// expiry never fails the reconciliation tick.
type Notifier interface {
	Notify(ctx context.Context, taskText string)
}

func expiryMessage(taskText string) string {
	return fmt.Sprintf("Your task %q is due now!", taskText)
}

// LogNotifier writes the notification to the log. Always available.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, taskText string) {
	n.logger.Info().
		Str("title", notificationTitle).
		Msg(expiryMessage(taskText))
}

// WebhookNotifier posts the notification to an external endpoint.
type WebhookNotifier struct {
	logger zerolog.Logger
	client *http.Client
	url    string
}

func NewWebhookNotifier(logger zerolog.Logger, url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		logger: logger,
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

type webhookPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, taskText string) {
	payload, _ := json.Marshal(webhookPayload{
		Title: notificationTitle,
		Body:  expiryMessage(taskText),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn().
			Err(err).
			Msg("failed to build notification request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn().
			Err(err).
			Msg("failed to deliver notification")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Warn().
			Int("status", resp.StatusCode).
			Msg("notification endpoint rejected the message")
	}
}
