package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/pricewatch/pkg/metrics"
	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// Dispatcher resolves recipients for an alert and fans it out across
// the registered channels, recording one delivery record per attempt.
type Dispatcher struct {
	store    storage.Storage
	channels map[model.Channel]Channel
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(store storage.Storage, channels []Channel, logger *slog.Logger) *Dispatcher {
	byName := make(map[model.Channel]Channel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &Dispatcher{store: store, channels: byName, logger: logger}
}

// Dispatch sends msg to every enabled destination for the item's owner.
// Recipients come from the owner's per-channel settings; when none of
// those match the event, the item's legacy notify email is used. Having
// nowhere to send is not an error. The returned count is the number of
// successful deliveries.
func (d *Dispatcher) Dispatch(ctx context.Context, item *model.TrackedItem, msg Message) (int, error) {
	targets := d.resolveTargets(ctx, item, msg.Event)
	if len(targets) == 0 {
		d.logger.Debug("no notification targets", "item_id", item.ID, "event", msg.Event)
		return 0, nil
	}

	sent := 0
	for _, t := range targets {
		ch, ok := d.channels[t.channel]
		if !ok {
			d.logger.Warn("channel not configured", "channel", t.channel, "item_id", item.ID)
			continue
		}

		err := send(ctx, ch, t, msg)
		rec := &model.NotificationRecord{
			ID:        uuid.NewString(),
			OwnerID:   item.OwnerID,
			ItemID:    item.ID,
			Channel:   t.channel,
			Recipient: t.recipient,
			Subject:   fmt.Sprintf("%s: %s", msg.Event, msg.Title),
			Status:    model.DeliverySent,
			SentAt:    time.Now().UTC(),
		}
		if err != nil {
			rec.Status = model.DeliveryFailed
			rec.Error = err.Error()
			d.logger.Error("notification delivery failed",
				"channel", t.channel, "item_id", item.ID, "error", err)
		} else {
			sent++
			d.logger.Info("notification sent",
				"channel", t.channel, "item_id", item.ID, "event", msg.Event)
		}
		metrics.NotificationsTotal.WithLabelValues(string(t.channel), string(rec.Status)).Inc()
		if recErr := d.store.RecordNotification(ctx, rec); recErr != nil {
			d.logger.Error("record notification", "item_id", item.ID, "error", recErr)
		}
	}
	return sent, nil
}

type target struct {
	channel   model.Channel
	recipient string
	secret    string
}

// secretSender is implemented by channels that sign deliveries with a
// per-recipient secret, such as webhooks.
type secretSender interface {
	SendWithSecret(ctx context.Context, recipient, secret string, msg Message) error
}

func send(ctx context.Context, ch Channel, t target, msg Message) error {
	if t.secret != "" {
		if s, ok := ch.(secretSender); ok {
			return s.SendWithSecret(ctx, t.recipient, t.secret, msg)
		}
	}
	return ch.Send(ctx, t.recipient, msg)
}

func (d *Dispatcher) resolveTargets(ctx context.Context, item *model.TrackedItem, kind model.AlertKind) []target {
	settings, err := d.store.ListEnabledSettings(ctx, item.OwnerID)
	if err != nil {
		d.logger.Error("list notification settings", "owner_id", item.OwnerID, "error", err)
		settings = nil
	}

	var targets []target
	for _, s := range settings {
		if s.Recipient == "" || !s.WantsEvent(kind) {
			continue
		}
		targets = append(targets, target{channel: s.Channel, recipient: s.Recipient, secret: s.Secret})
	}
	if len(targets) == 0 && item.NotifyEmail != "" {
		targets = append(targets, target{channel: model.ChannelEmail, recipient: item.NotifyEmail})
	}
	return targets
}
