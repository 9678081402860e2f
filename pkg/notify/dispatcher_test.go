package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// fakeChannel records every send and can be made to fail.
type fakeChannel struct {
	name       model.Channel
	recipients []string
	fail       error
}

func (f *fakeChannel) Name() model.Channel { return f.name }

func (f *fakeChannel) Send(_ context.Context, recipient string, _ notify.Message) error {
	f.recipients = append(f.recipients, recipient)
	return f.fail
}

func newDispatcherTest(t *testing.T, channels ...notify.Channel) (*notify.Dispatcher, *storage.SQLite, *model.TrackedItem) {
	t.Helper()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	item := &model.TrackedItem{
		OwnerID:     "owner-1",
		Platform:    model.PlatformAmazon,
		ProductUID:  "B08N5WRWNW",
		CanonicalID: "B08N5WRWNW",
		TargetPrice: 78,
		NotifyEmail: "fallback@example.com",
		IsActive:    true,
	}
	require.NoError(t, db.CreateItem(context.Background(), item))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notify.NewDispatcher(db, channels, logger), db, item
}

func TestDispatcher_SettingsRouting(t *testing.T) {
	ctx := context.Background()
	email := &fakeChannel{name: model.ChannelEmail}
	slack := &fakeChannel{name: model.ChannelSlack}
	d, db, item := newDispatcherTest(t, email, slack)

	require.NoError(t, db.UpsertSetting(ctx, &model.NotificationSetting{
		OwnerID:         "owner-1",
		Channel:         model.ChannelSlack,
		Enabled:         true,
		Recipient:       "https://hooks.slack.com/services/T/B/x",
		NotifyPriceDrop: true,
	}))

	sent, err := d.Dispatch(ctx, item, testMessage())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"https://hooks.slack.com/services/T/B/x"}, slack.recipients)
	assert.Empty(t, email.recipients, "configured settings suppress the legacy email fallback")
}

func TestDispatcher_LegacyEmailFallback(t *testing.T) {
	ctx := context.Background()
	email := &fakeChannel{name: model.ChannelEmail}
	d, _, item := newDispatcherTest(t, email)

	sent, err := d.Dispatch(ctx, item, testMessage())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"fallback@example.com"}, email.recipients)
}

func TestDispatcher_NoTargetsIsNotAnError(t *testing.T) {
	ctx := context.Background()
	email := &fakeChannel{name: model.ChannelEmail}
	d, _, item := newDispatcherTest(t, email)
	item.NotifyEmail = ""

	sent, err := d.Dispatch(ctx, item, testMessage())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, email.recipients)
}

func TestDispatcher_EventFiltering(t *testing.T) {
	ctx := context.Background()
	slack := &fakeChannel{name: model.ChannelSlack}
	d, db, item := newDispatcherTest(t, slack)
	item.NotifyEmail = ""

	require.NoError(t, db.UpsertSetting(ctx, &model.NotificationSetting{
		OwnerID:           "owner-1",
		Channel:           model.ChannelSlack,
		Enabled:           true,
		Recipient:         "https://hooks.slack.com/services/T/B/x",
		NotifyBackInStock: true,
	}))

	// A price drop does not match a stock-only subscription.
	sent, err := d.Dispatch(ctx, item, testMessage())
	require.NoError(t, err)
	assert.Zero(t, sent)

	msg := testMessage()
	msg.Event = model.KindBackInStock
	sent, err = d.Dispatch(ctx, item, msg)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

// secretChannel records the signing secret handed to each delivery.
type secretChannel struct {
	fakeChannel
	secrets []string
}

func (s *secretChannel) SendWithSecret(_ context.Context, recipient, secret string, _ notify.Message) error {
	s.recipients = append(s.recipients, recipient)
	s.secrets = append(s.secrets, secret)
	return s.fail
}

func TestDispatcher_PerSettingSecret(t *testing.T) {
	ctx := context.Background()
	hook := &secretChannel{fakeChannel: fakeChannel{name: model.ChannelWebhook}}
	d, db, item := newDispatcherTest(t, hook)

	require.NoError(t, db.UpsertSetting(ctx, &model.NotificationSetting{
		OwnerID:         "owner-1",
		Channel:         model.ChannelWebhook,
		Enabled:         true,
		Recipient:       "https://example.com/hook",
		Secret:          "endpoint-secret",
		NotifyPriceDrop: true,
	}))

	sent, err := d.Dispatch(ctx, item, testMessage())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"https://example.com/hook"}, hook.recipients)
	assert.Equal(t, []string{"endpoint-secret"}, hook.secrets)
}

func TestDispatcher_RecordsEveryAttempt(t *testing.T) {
	ctx := context.Background()
	email := &fakeChannel{name: model.ChannelEmail}
	slack := &fakeChannel{name: model.ChannelSlack, fail: errors.New("webhook gone")}
	d, db, item := newDispatcherTest(t, email, slack)

	require.NoError(t, db.UpsertSetting(ctx, &model.NotificationSetting{
		OwnerID:         "owner-1",
		Channel:         model.ChannelEmail,
		Enabled:         true,
		Recipient:       "user@example.com",
		NotifyPriceDrop: true,
	}))
	require.NoError(t, db.UpsertSetting(ctx, &model.NotificationSetting{
		OwnerID:         "owner-1",
		Channel:         model.ChannelSlack,
		Enabled:         true,
		Recipient:       "https://hooks.slack.com/services/T/B/x",
		NotifyPriceDrop: true,
	}))

	sent, err := d.Dispatch(ctx, item, testMessage())
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "only the email delivery succeeded")

	records, err := db.ListNotifications(ctx, item.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byStatus := map[model.DeliveryStatus]model.NotificationRecord{}
	for _, r := range records {
		byStatus[r.Status] = r
	}
	assert.Equal(t, model.ChannelSlack, byStatus[model.DeliveryFailed].Channel)
	assert.Contains(t, byStatus[model.DeliveryFailed].Error, "webhook gone")
	assert.Equal(t, model.ChannelEmail, byStatus[model.DeliverySent].Channel)
	assert.Contains(t, byStatus[model.DeliverySent].Subject, "Test Widget")
}

func TestDispatcher_UnregisteredChannelSkipped(t *testing.T) {
	ctx := context.Background()
	d, db, item := newDispatcherTest(t) // no channels registered
	item.NotifyEmail = ""

	require.NoError(t, db.UpsertSetting(ctx, &model.NotificationSetting{
		OwnerID:         "owner-1",
		Channel:         model.ChannelSMS,
		Enabled:         true,
		Recipient:       "+15550100",
		NotifyPriceDrop: true,
	}))

	sent, err := d.Dispatch(ctx, item, testMessage())
	require.NoError(t, err)
	assert.Zero(t, sent)

	records, err := db.ListNotifications(ctx, item.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, records, "skipped channels leave no audit rows")
}
