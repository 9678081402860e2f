package notify_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/notify"
)

func testMessage() notify.Message {
	return notify.Message{
		Event:        model.KindPriceDrop,
		ItemID:       "item-1",
		Title:        "Test Widget",
		Platform:     model.PlatformAmazon,
		ProductURL:   "https://www.amazon.com/dp/B08N5WRWNW",
		CurrentPrice: 75.00,
		TargetPrice:  78.00,
		OldPrice:     79.99,
		Currency:     "USD",
		Body:         "Test Widget dropped to 75.00 USD",
	}
}

func TestWebhookChannel_SignsPayload(t *testing.T) {
	secret := "topsecret"

	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Pricewatch-Signature")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := notify.NewWebhookChannel(notify.WebhookConfig{Secret: secret})
	require.NoError(t, ch.Send(context.Background(), srv.URL, testMessage()))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, gotSig, "signature must cover the exact bytes sent")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "price_drop", payload["event"])
	assert.Equal(t, "item-1", payload["item_id"])
	assert.Equal(t, 75.00, payload["current_price"])
	assert.Contains(t, payload, "timestamp")
}

func TestWebhookChannel_PerCallSecretOverridesDefault(t *testing.T) {
	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Pricewatch-Signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := notify.NewWebhookChannel(notify.WebhookConfig{Secret: "global"})
	require.NoError(t, ch.SendWithSecret(context.Background(), srv.URL, "per-endpoint", testMessage()))

	mac := hmac.New(sha256.New, []byte("per-endpoint"))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, gotSig, "stored endpoint secret wins over the channel default")
}

func TestWebhookChannel_NoSecretNoSignature(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Pricewatch-Signature")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := notify.NewWebhookChannel(notify.WebhookConfig{})
	require.NoError(t, ch.Send(context.Background(), srv.URL, testMessage()))
	assert.Empty(t, gotSig)
}

func TestWebhookChannel_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := notify.NewWebhookChannel(notify.WebhookConfig{
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	})
	require.NoError(t, ch.Send(context.Background(), srv.URL, testMessage()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookChannel_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := notify.NewWebhookChannel(notify.WebhookConfig{
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
	})
	err := ch.Send(context.Background(), srv.URL, testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookChannel_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := notify.NewWebhookChannel(notify.WebhookConfig{
		MaxAttempts: 5,
		Backoff:     time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := ch.Send(ctx, srv.URL, testMessage())
	require.ErrorIs(t, err, context.Canceled)
}
