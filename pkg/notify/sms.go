package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// SMSConfig holds Twilio API credentials.
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	Endpoint   string
}

// SMSChannel delivers alerts as text messages through Twilio. The
// recipient is a phone number in E.164 form.
type SMSChannel struct {
	cfg    SMSConfig
	client *resty.Client
}

// NewSMSChannel creates a Twilio SMS channel.
func NewSMSChannel(cfg SMSConfig) *SMSChannel {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.twilio.com/2010-04-01"
	}
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	return &SMSChannel{cfg: cfg, client: client}
}

func (s *SMSChannel) Name() model.Channel { return model.ChannelSMS }

func (s *SMSChannel) Send(ctx context.Context, recipient string, msg Message) error {
	text := fmt.Sprintf("pricewatch: %s now %.2f %s (target %.2f). %s",
		msg.Title, msg.CurrentPrice, msg.Currency, msg.TargetPrice, msg.ProductURL)

	resp, err := s.client.R().
		SetContext(ctx).
		SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken).
		SetFormData(map[string]string{
			"To":   recipient,
			"From": s.cfg.From,
			"Body": text,
		}).
		Post(s.cfg.Endpoint + "/Accounts/" + s.cfg.AccountSID + "/Messages.json")
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("twilio returned status %d", resp.StatusCode())
	}
	return nil
}
