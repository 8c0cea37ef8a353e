package notifier

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dghubble/sling"

	"github.com/mhofmann/dpwt-tracker/internal/logger"
)

const (
	// Discord rejects webhook messages longer than 2000 characters.
	maxMessageLength = 2000

	webhookTimeout = 20 * time.Second
)

// DiscordNotifier posts messages to a Discord channel webhook.
type DiscordNotifier struct {
	sling *sling.Sling
	pause time.Duration
}

// NewDiscordNotifier creates a notifier for the given webhook URL.
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}

	httpClient := &http.Client{
		Timeout: webhookTimeout,
	}

	return &DiscordNotifier{
		sling: sling.New().Client(httpClient).Base(webhookURL),
		pause: 2 * time.Second,
	}, nil
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Notify posts each message to the webhook, pausing between messages to
// stay under Discord's webhook rate limit.
func (n *DiscordNotifier) Notify(messages []string) error {
	for i, msg := range messages {
		if err := n.post(msg); err != nil {
			return fmt.Errorf("posting message %d of %d: %w", i+1, len(messages), err)
		}
		logger.IncrCounter("notify.sent")

		if i < len(messages)-1 {
			time.Sleep(n.pause)
		}
	}
	return nil
}

// post sends one message, retrying once after a transient failure.
func (n *DiscordNotifier) post(msg string) error {
	if len(msg) > maxMessageLength {
		msg = msg[:maxMessageLength-3] + "..."
	}

	err := n.send(msg)
	if err == nil {
		return nil
	}

	logger.Warn("webhook post failed, retrying once", logger.Fields{
		"error": err.Error(),
	})
	time.Sleep(n.pause)
	return n.send(msg)
}

func (n *DiscordNotifier) send(msg string) error {
	resp, err := n.sling.New().Post("").BodyJSON(&webhookPayload{Content: msg}).ReceiveSuccess(nil)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
