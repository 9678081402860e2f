package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/internal/server"
	"github.com/pricewatch/pricewatch/pkg/engine"
	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/sources"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

type serverTest struct {
	srv *server.Server
	db  *storage.SQLite
}

func newServerTest(t *testing.T) *serverTest {
	t.Helper()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(`items:
  - platform: amazon
    product_id: B08N5WRWNW
    price: 75.00
    title: Test Widget
`), 0o644))
	sim, err := sources.NewSimulatorFromFile(catalog)
	require.NoError(t, err)
	registry := sources.NewRegistry(sim, true)

	dispatcher := notify.NewDispatcher(db, nil, logger)
	eng := engine.New(db, registry, dispatcher, logger, engine.Options{})

	return &serverTest{
		srv: server.NewServer(db, eng, nil, logger),
		db:  db,
	}
}

func (st *serverTest) addItem(t *testing.T, platform model.Platform, uid string, active bool) *model.TrackedItem {
	t.Helper()
	item := &model.TrackedItem{
		OwnerID:     "owner-1",
		Platform:    platform,
		ProductUID:  uid,
		CanonicalID: uid,
		TargetPrice: 78,
		IsActive:    active,
	}
	require.NoError(t, st.db.CreateItem(context.Background(), item))
	return item
}

func (st *serverTest) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	st.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	st := newServerTest(t)

	rec := st.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Status(t *testing.T) {
	st := newServerTest(t)
	st.addItem(t, model.PlatformAmazon, "B08N5WRWNW", true)
	st.addItem(t, model.PlatformEBay, "123456789012", true)

	rec := st.do(t, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Stats      model.EngineStats `json:"stats"`
		TotalItems int64             `json:"total_items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.TotalItems)
	assert.False(t, body.Stats.SchedulerUp)
}

func TestServer_ListItems(t *testing.T) {
	st := newServerTest(t)
	st.addItem(t, model.PlatformAmazon, "B08N5WRWNW", true)
	st.addItem(t, model.PlatformEBay, "123456789012", false)

	rec := st.do(t, http.MethodGet, "/api/v1/items")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []model.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	rec = st.do(t, http.MethodGet, "/api/v1/items?active=true")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 1)

	rec = st.do(t, http.MethodGet, "/api/v1/items?platform=ebay")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, model.PlatformEBay, items[0].Platform)
}

func TestServer_ListItems_UnknownPlatform(t *testing.T) {
	st := newServerTest(t)

	rec := st.do(t, http.MethodGet, "/api/v1/items?platform=aliexpress")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetItem(t *testing.T) {
	st := newServerTest(t)
	item := st.addItem(t, model.PlatformAmazon, "B08N5WRWNW", true)

	rec := st.do(t, http.MethodGet, "/api/v1/items/"+item.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "B08N5WRWNW", got.ProductUID)
}

func TestServer_GetItem_NotFound(t *testing.T) {
	st := newServerTest(t)

	rec := st.do(t, http.MethodGet, "/api/v1/items/no-such-id")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CheckItem(t *testing.T) {
	st := newServerTest(t)
	item := st.addItem(t, model.PlatformAmazon, "B08N5WRWNW", true)

	rec := st.do(t, http.MethodPost, "/api/v1/items/"+item.ID+"/check")
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 75.00, got.CurrentPrice, "response carries the fresh quote")
	assert.Equal(t, "Test Widget", got.Title)
	assert.Equal(t, model.AlertTriggered, got.AlertStatus)
}

func TestServer_CheckItem_FetchFailure(t *testing.T) {
	st := newServerTest(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Simulation off with no sources configured: every fetch fails.
	registry := sources.NewRegistry(sources.NewSimulator(), false)
	dispatcher := notify.NewDispatcher(st.db, nil, logger)
	eng := engine.New(st.db, registry, dispatcher, logger, engine.Options{})
	srv := server.NewServer(st.db, eng, nil, logger)

	item := st.addItem(t, model.PlatformAmazon, "B08N5WRWNW", true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+item.ID+"/check", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body struct {
		Error string            `json:"error"`
		Item  model.TrackedItem `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "fetch")
	assert.Equal(t, 1, body.Item.ConsecutiveErrors, "response carries the failure bookkeeping")
	assert.NotEmpty(t, body.Item.LastError)
}

func TestServer_History(t *testing.T) {
	st := newServerTest(t)
	item := st.addItem(t, model.PlatformAmazon, "B08N5WRWNW", true)

	ctx := context.Background()
	now := time.Now().UTC()
	for i, price := range []float64{79.99, 77.50, 75.00} {
		require.NoError(t, st.db.AppendObservation(ctx, &model.PriceObservation{
			ID:         fmt.Sprintf("obs-%d", i),
			ItemID:     item.ID,
			Price:      price,
			Currency:   "USD",
			ObservedAt: now.Add(time.Duration(i-3) * 24 * time.Hour),
		}))
	}

	rec := st.do(t, http.MethodGet, "/api/v1/items/"+item.ID+"/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var obs []model.PriceObservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obs))
	assert.Len(t, obs, 3)

	// Window narrowed to the last two days.
	from := now.AddDate(0, 0, -2).Format(time.RFC3339)
	rec = st.do(t, http.MethodGet, "/api/v1/items/"+item.ID+"/history?from="+from)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obs))
	assert.Len(t, obs, 2)
}

func TestServer_History_BadBounds(t *testing.T) {
	st := newServerTest(t)
	item := st.addItem(t, model.PlatformAmazon, "B08N5WRWNW", true)

	rec := st.do(t, http.MethodGet, "/api/v1/items/"+item.ID+"/history?from=lastweek")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_History_NotFound(t *testing.T) {
	st := newServerTest(t)

	rec := st.do(t, http.MethodGet, "/api/v1/items/missing/history")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	st := newServerTest(t)

	rec := st.do(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
