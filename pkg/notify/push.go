package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// PushConfig holds Pushover application settings.
type PushConfig struct {
	AppToken string
	Endpoint string
}

// PushChannel delivers alerts as mobile push notifications through
// Pushover. The recipient is the Pushover user key.
type PushChannel struct {
	cfg    PushConfig
	client *resty.Client
}

// NewPushChannel creates a Pushover channel.
func NewPushChannel(cfg PushConfig) *PushChannel {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.pushover.net/1"
	}
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	return &PushChannel{cfg: cfg, client: client}
}

func (p *PushChannel) Name() model.Channel { return model.ChannelPush }

func (p *PushChannel) Send(ctx context.Context, recipient string, msg Message) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"token":     p.cfg.AppToken,
			"user":      recipient,
			"title":     fmt.Sprintf("pricewatch: %s", msg.Event),
			"message":   fmt.Sprintf("%s now %.2f %s (target %.2f)", msg.Title, msg.CurrentPrice, msg.Currency, msg.TargetPrice),
			"url":       msg.ProductURL,
			"url_title": "View product",
		}).
		Post(p.cfg.Endpoint + "/messages.json")
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode())
	}
	return nil
}
