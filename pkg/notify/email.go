package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailChannel delivers alerts over SMTP.
type EmailChannel struct {
	cfg EmailConfig
}

// NewEmailChannel creates an SMTP email channel.
func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

func (e *EmailChannel) Name() model.Channel { return model.ChannelEmail }

func (e *EmailChannel) Send(ctx context.Context, recipient string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", emailSubject(msg))
	m.SetBody("text/html", emailBody(msg))

	d := gomail.NewDialer(e.cfg.Host, e.cfg.Port, e.cfg.Username, e.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func emailSubject(msg Message) string {
	switch msg.Event {
	case model.KindBackInStock:
		return fmt.Sprintf("[pricewatch] back in stock: %s", msg.Title)
	case model.KindPriceIncrease:
		return fmt.Sprintf("[pricewatch] price increase: %s", msg.Title)
	default:
		return fmt.Sprintf("[pricewatch] price drop: %s", msg.Title)
	}
}

func emailBody(msg Message) string {
	return fmt.Sprintf(
		`<h2>%s</h2>
<p>%s</p>
<table>
<tr><td>Platform</td><td>%s</td></tr>
<tr><td>Current price</td><td>%.2f %s</td></tr>
<tr><td>Target price</td><td>%.2f %s</td></tr>
</table>
<p><a href="%s">View product</a></p>`,
		msg.Title, msg.Body,
		msg.Platform,
		msg.CurrentPrice, msg.Currency,
		msg.TargetPrice, msg.Currency,
		msg.ProductURL,
	)
}
