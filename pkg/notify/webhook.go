package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// WebhookConfig holds settings for the generic webhook channel.
type WebhookConfig struct {
	// Secret signs request bodies with HMAC-SHA256 when non-empty.
	Secret string

	// MaxAttempts caps delivery attempts per message. Defaults to 3.
	MaxAttempts int

	// Backoff is the base delay between attempts; the delay doubles
	// after each failure. Defaults to one second.
	Backoff time.Duration
}

// WebhookChannel POSTs alerts to an arbitrary HTTP endpoint. The
// recipient is the destination URL. Payload keys are emitted in sorted
// order so receivers can verify the signature over the exact bytes.
type WebhookChannel struct {
	cfg    WebhookConfig
	client *http.Client
}

// NewWebhookChannel creates a generic webhook channel.
func NewWebhookChannel(cfg WebhookConfig) *WebhookChannel {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &WebhookChannel{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WebhookChannel) Name() model.Channel { return model.ChannelWebhook }

func (w *WebhookChannel) Send(ctx context.Context, recipient string, msg Message) error {
	return w.SendWithSecret(ctx, recipient, "", msg)
}

// SendWithSecret delivers with a per-endpoint signing secret. An empty
// secret falls back to the channel-wide one.
func (w *WebhookChannel) SendWithSecret(ctx context.Context, recipient, secret string, msg Message) error {
	if secret == "" {
		secret = w.cfg.Secret
	}

	// Marshal through a map so keys come out sorted.
	payload := map[string]any{
		"event":         string(msg.Event),
		"item_id":       msg.ItemID,
		"title":         msg.Title,
		"platform":      string(msg.Platform),
		"product_url":   msg.ProductURL,
		"current_price": msg.CurrentPrice,
		"target_price":  msg.TargetPrice,
		"old_price":     msg.OldPrice,
		"currency":      msg.Currency,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	delay := w.cfg.Backoff
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if lastErr = w.post(ctx, recipient, secret, body); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", w.cfg.MaxAttempts, lastErr)
}

func (w *WebhookChannel) post(ctx context.Context, url, secret string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "pricewatch/1.0")

	if secret != "" {
		sig := computeHMAC(body, []byte(secret))
		req.Header.Set("X-Pricewatch-Signature", "sha256="+sig)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
