package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pricewatch/pricewatch/pkg/model"
)

func TestPlatform_Valid(t *testing.T) {
	for _, p := range model.Platforms {
		assert.True(t, p.Valid(), "platform %q should be valid", p)
	}
	assert.False(t, model.Platform("aliexpress").Valid())
	assert.False(t, model.Platform("").Valid())
	assert.False(t, model.Platform("AMAZON").Valid())
}

func TestAlertRule_Expired(t *testing.T) {
	now := time.Now().UTC()

	rule := model.AlertRule{}
	assert.False(t, rule.Expired(now), "rule without expiry never expires")

	past := now.Add(-time.Minute)
	rule.ExpiresAt = &past
	assert.True(t, rule.Expired(now))

	future := now.Add(time.Minute)
	rule.ExpiresAt = &future
	assert.False(t, rule.Expired(now))
}

func TestNotificationSetting_WantsEvent(t *testing.T) {
	setting := model.NotificationSetting{
		NotifyPriceDrop:   true,
		NotifyBackInStock: true,
	}

	assert.True(t, setting.WantsEvent(model.KindPriceDrop))
	assert.False(t, setting.WantsEvent(model.KindPriceIncrease))
	assert.True(t, setting.WantsEvent(model.KindBackInStock))
	assert.False(t, setting.WantsEvent(model.AlertKind("unknown")))
}
