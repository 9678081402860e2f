package sources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/sources"
)

func TestAmazon_ExtractID(t *testing.T) {
	a := sources.NewAmazon(sources.AmazonConfig{})

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "B08N5WRWNW", true},
		{"https://www.amazon.com/gp/product/B000123456?ref=nav", "B000123456", true},
		{"https://www.amazon.co.uk/Some-Product/dp/b08n5wrwnw/", "B08N5WRWNW", true},
		{"B08N5WRWNW", "B08N5WRWNW", true},
		{"https://www.amazon.com/s?k=laptop", "", false},
		{"definitely-not-an-asin", "", false},
	}
	for _, tc := range cases {
		got, ok := a.ExtractID(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestEbay_ExtractID(t *testing.T) {
	e := sources.NewEbay(sources.EbayConfig{})

	got, ok := e.ExtractID("https://www.ebay.com/itm/123456789012")
	require.True(t, ok)
	assert.Equal(t, "123456789012", got)

	got, ok = e.ExtractID("https://www.ebay.com/itm/cool-widget/987654321098?var=0")
	require.True(t, ok)
	assert.Equal(t, "987654321098", got)

	got, ok = e.ExtractID("123456789012")
	require.True(t, ok)
	assert.Equal(t, "123456789012", got)

	_, ok = e.ExtractID("https://www.ebay.com/sch/i.html?_nkw=widget")
	assert.False(t, ok)
}

func TestWalmart_ExtractID(t *testing.T) {
	w := sources.NewWalmart(sources.WalmartConfig{})

	got, ok := w.ExtractID("https://www.walmart.com/ip/Widget-Deluxe/5053452213")
	require.True(t, ok)
	assert.Equal(t, "5053452213", got)

	got, ok = w.ExtractID("https://www.walmart.com/ip/5053452213")
	require.True(t, ok)
	assert.Equal(t, "5053452213", got)

	_, ok = w.ExtractID("https://www.walmart.com/browse/electronics")
	assert.False(t, ok)
}

func TestBestBuy_ExtractID(t *testing.T) {
	b := sources.NewBestBuy(sources.BestBuyConfig{})

	got, ok := b.ExtractID("https://www.bestbuy.com/site/some-tv/6428997.p?skuId=6428997")
	require.True(t, ok)
	assert.Equal(t, "6428997", got)

	got, ok = b.ExtractID("6428997")
	require.True(t, ok)
	assert.Equal(t, "6428997", got)
}

func TestTarget_ExtractID(t *testing.T) {
	tg := sources.NewTarget(sources.TargetConfig{})

	got, ok := tg.ExtractID("https://www.target.com/p/widget-deluxe/-/A-54191097")
	require.True(t, ok)
	assert.Equal(t, "54191097", got)

	got, ok = tg.ExtractID("54191097")
	require.True(t, ok)
	assert.Equal(t, "54191097", got)

	// Bare numbers shorter than a TCIN are rejected.
	_, ok = tg.ExtractID("1234")
	assert.False(t, ok)
}

func TestBestBuy_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/6428997.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "55-inch TV",
			"salePrice": 379.99,
			"regularPrice": 499.99,
			"manufacturer": "Samsung",
			"onlineAvailability": true
		}`))
	}))
	defer srv.Close()

	b := sources.NewBestBuy(sources.BestBuyConfig{APIKey: "test-key", Endpoint: srv.URL})
	require.True(t, b.Configured())

	quote, err := b.Fetch(context.Background(), "6428997")
	require.NoError(t, err)
	assert.Equal(t, 379.99, quote.Price)
	assert.Equal(t, 499.99, quote.OriginalPrice)
	assert.Equal(t, "55-inch TV", quote.Title)
	assert.Equal(t, "Samsung", quote.Brand)
	assert.Equal(t, model.AvailabilityInStock, quote.Availability)
	assert.False(t, quote.Simulated)
}

func TestBestBuy_Fetch_ErrorKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/404.json":
			w.WriteHeader(http.StatusNotFound)
		case "/products/500.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"name": "priceless", "salePrice": 0}`))
		}
	}))
	defer srv.Close()

	b := sources.NewBestBuy(sources.BestBuyConfig{APIKey: "k", Endpoint: srv.URL})
	ctx := context.Background()

	_, err := b.Fetch(ctx, "404")
	assert.Equal(t, sources.KindNotFound, sources.KindOf(err))

	_, err = b.Fetch(ctx, "500")
	assert.Equal(t, sources.KindUnavailable, sources.KindOf(err))

	_, err = b.Fetch(ctx, "777")
	assert.Equal(t, sources.KindParse, sources.KindOf(err))
}

func TestSimulator_Deterministic(t *testing.T) {
	sim := sources.NewSimulator()

	first := sim.Quote(model.PlatformAmazon, "B08N5WRWNW")
	second := sim.Quote(model.PlatformAmazon, "B08N5WRWNW")
	assert.Equal(t, first.Price, second.Price, "same platform+id must price identically")
	assert.True(t, first.Simulated)

	other := sim.Quote(model.PlatformEBay, "B08N5WRWNW")
	assert.True(t, other.Simulated)
	// Platform participates in the hash, so bands stay distinct.
	assert.GreaterOrEqual(t, first.Price, 20.0)
	assert.GreaterOrEqual(t, other.Price, 15.0)
}

func TestSimulator_CatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	catalog := `items:
  - platform: amazon
    product_id: B08N5WRWNW
    price: 42.50
    title: Pinned Widget
`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	sim, err := sources.NewSimulatorFromFile(path)
	require.NoError(t, err)

	quote := sim.Quote(model.PlatformAmazon, "B08N5WRWNW")
	assert.Equal(t, 42.50, quote.Price)
	assert.Equal(t, "Pinned Widget", quote.Title)
	assert.Equal(t, model.AvailabilityInStock, quote.Availability)
	assert.True(t, quote.Simulated)

	// Products outside the catalog still get hashed prices.
	free := sim.Quote(model.PlatformAmazon, "B000000001")
	assert.True(t, free.Simulated)
	assert.Greater(t, free.Price, 0.0)
}

func TestRegistry_SimulationFallback(t *testing.T) {
	registry := sources.NewRegistry(sources.NewSimulator(), true)
	require.NoError(t, registry.Register(sources.NewAmazon(sources.AmazonConfig{})))

	quote, err := registry.Fetch(context.Background(), model.PlatformAmazon, "https://www.amazon.com/dp/B08N5WRWNW")
	require.NoError(t, err)
	assert.True(t, quote.Simulated)

	// The URL is canonicalized before hashing, so URL and bare ASIN agree.
	direct, err := registry.Fetch(context.Background(), model.PlatformAmazon, "B08N5WRWNW")
	require.NoError(t, err)
	assert.Equal(t, quote.Price, direct.Price)
}

func TestRegistry_NotConfigured(t *testing.T) {
	registry := sources.NewRegistry(sources.NewSimulator(), false)
	require.NoError(t, registry.Register(sources.NewEbay(sources.EbayConfig{})))

	_, err := registry.Fetch(context.Background(), model.PlatformEBay, "123456789012")
	require.Error(t, err)
	assert.Equal(t, sources.KindNotConfigured, sources.KindOf(err))
}

func TestRegistry_UnknownPlatform(t *testing.T) {
	registry := sources.NewRegistry(sources.NewSimulator(), true)

	_, err := registry.Fetch(context.Background(), model.Platform("aliexpress"), "x")
	require.Error(t, err)
	assert.Equal(t, sources.KindNotFound, sources.KindOf(err))
}

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		url  string
		want model.Platform
		ok   bool
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", model.PlatformAmazon, true},
		{"https://amzn.to/3xyz", model.PlatformAmazon, true},
		{"https://www.ebay.com/itm/123456789012", model.PlatformEBay, true},
		{"https://www.walmart.com/ip/5053452213", model.PlatformWalmart, true},
		{"https://www.bestbuy.com/site/tv/6428997.p", model.PlatformBestBuy, true},
		{"https://www.target.com/p/w/-/A-54191097", model.PlatformTarget, true},
		{"https://www.newegg.com/p/N82E16834233454", model.PlatformNewegg, true},
		{"https://example.com/product/1", "", false},
	}
	for _, tc := range cases {
		got, ok := sources.DetectPlatform(tc.url)
		assert.Equal(t, tc.ok, ok, "url %q", tc.url)
		assert.Equal(t, tc.want, got, "url %q", tc.url)
	}
}
