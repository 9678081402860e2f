package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/notify"
)

func TestSlackChannel_Send(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := notify.NewSlackChannel()
	require.NoError(t, ch.Send(context.Background(), srv.URL, testMessage()))

	var payload struct {
		Attachments []struct {
			Color  string `json:"color"`
			Title  string `json:"title"`
			Fields []struct {
				Title string `json:"title"`
				Value string `json:"value"`
			} `json:"fields"`
			Footer string `json:"footer"`
		} `json:"attachments"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Len(t, payload.Attachments, 1)

	att := payload.Attachments[0]
	assert.Equal(t, "#36a64f", att.Color, "price drops render green")
	assert.Equal(t, "Test Widget", att.Title)
	assert.Equal(t, "pricewatch", att.Footer)
	require.Len(t, att.Fields, 4)
	assert.Equal(t, "75.00 USD", att.Fields[2].Value)
}

func TestSlackChannel_ColorByEvent(t *testing.T) {
	var color string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Attachments []struct {
				Color string `json:"color"`
			} `json:"attachments"`
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		color = payload.Attachments[0].Color
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := notify.NewSlackChannel()

	msg := testMessage()
	msg.Event = model.KindPriceIncrease
	require.NoError(t, ch.Send(context.Background(), srv.URL, msg))
	assert.Equal(t, "#ff9900", color)

	msg.Event = model.KindBackInStock
	require.NoError(t, ch.Send(context.Background(), srv.URL, msg))
	assert.Equal(t, "#439fe0", color)
}

func TestSlackChannel_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	ch := notify.NewSlackChannel()
	err := ch.Send(context.Background(), srv.URL, testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
