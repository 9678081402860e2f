package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// SlackChannel delivers alerts to a Slack incoming webhook. The
// recipient is the webhook URL, so one user can route to their own
// workspace.
type SlackChannel struct {
	client *http.Client
}

// NewSlackChannel creates a Slack webhook channel.
func NewSlackChannel() *SlackChannel {
	return &SlackChannel{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *SlackChannel) Name() model.Channel { return model.ChannelSlack }

func (s *SlackChannel) Send(ctx context.Context, recipient string, msg Message) error {
	color := "#36a64f" // green
	switch msg.Event {
	case model.KindPriceIncrease:
		color = "#ff9900" // orange
	case model.KindBackInStock:
		color = "#439fe0" // blue
	}

	payload := slackPayload{
		Attachments: []slackAttachment{
			{
				Color: color,
				Title: msg.Title,
				Text:  msg.Body,
				Fields: []slackField{
					{Title: "Platform", Value: string(msg.Platform), Short: true},
					{Title: "Event", Value: string(msg.Event), Short: true},
					{Title: "Current Price", Value: fmt.Sprintf("%.2f %s", msg.CurrentPrice, msg.Currency), Short: true},
					{Title: "Target Price", Value: fmt.Sprintf("%.2f %s", msg.TargetPrice, msg.Currency), Short: true},
				},
				Footer: "pricewatch",
				Ts:     time.Now().Unix(),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recipient, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

type slackPayload struct {
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
