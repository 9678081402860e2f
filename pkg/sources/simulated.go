package sources

import (
	"fmt"
	"hash/fnv"
	"os"
	"time"

	"github.com/pricewatch/pricewatch/pkg/model"

	"gopkg.in/yaml.v3"
)

// CatalogEntry pins a fixed quote for one product in the simulation
// catalog.
type CatalogEntry struct {
	Platform     model.Platform     `yaml:"platform"`
	ProductID    string             `yaml:"product_id"`
	Price        float64            `yaml:"price"`
	Title        string             `yaml:"title,omitempty"`
	Availability model.Availability `yaml:"availability,omitempty"`
	Currency     string             `yaml:"currency,omitempty"`
}

// Catalog holds YAML-loaded simulation overrides.
type Catalog struct {
	Items []CatalogEntry `yaml:"items"`
}

// priceBand shapes the deterministic price for a platform.
type priceBand struct {
	base   float64
	spread int
}

var bands = map[model.Platform]priceBand{
	model.PlatformAmazon:  {base: 20, spread: 200},
	model.PlatformEBay:    {base: 15, spread: 150},
	model.PlatformWalmart: {base: 10, spread: 100},
	model.PlatformBestBuy: {base: 50, spread: 500},
	model.PlatformTarget:  {base: 10, spread: 80},
	model.PlatformNewegg:  {base: 30, spread: 300},
	model.PlatformCustom:  {base: 5, spread: 250},
}

// Simulator fabricates deterministic quotes for development and for
// platforms without credentials. Every quote it produces is flagged as
// simulated; it is an explicit mode, never a silent fallback.
type Simulator struct {
	catalog map[string]CatalogEntry
}

// NewSimulator creates a simulator with no catalog overrides.
func NewSimulator() *Simulator {
	return &Simulator{catalog: make(map[string]CatalogEntry)}
}

// NewSimulatorFromFile creates a simulator seeded with a YAML catalog.
func NewSimulatorFromFile(path string) (*Simulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read simulation catalog %s: %w", path, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse simulation catalog %s: %w", path, err)
	}

	s := NewSimulator()
	for _, entry := range catalog.Items {
		s.catalog[catalogKey(entry.Platform, entry.ProductID)] = entry
	}
	return s, nil
}

// Quote produces a deterministic quote for a product. The same
// platform+id pair always yields the same price, so threshold behavior
// is reproducible across runs.
func (s *Simulator) Quote(platform model.Platform, productID string) *Quote {
	now := time.Now().UTC()

	if entry, ok := s.catalog[catalogKey(platform, productID)]; ok {
		currency := entry.Currency
		if currency == "" {
			currency = "USD"
		}
		availability := entry.Availability
		if availability == "" {
			availability = model.AvailabilityInStock
		}
		title := entry.Title
		if title == "" {
			title = simulatedTitle(platform, productID)
		}
		return &Quote{
			Price:        entry.Price,
			Currency:     currency,
			Title:        title,
			Availability: availability,
			Simulated:    true,
			FetchedAt:    now,
		}
	}

	band, ok := bands[platform]
	if !ok {
		band = bands[model.PlatformCustom]
	}

	h := fnv.New32a()
	h.Write([]byte(string(platform) + ":" + productID))
	v := h.Sum32()

	price := band.base + float64(v%uint32(band.spread)) + float64(v%100)/100

	return &Quote{
		Price:        roundCents(price),
		Currency:     "USD",
		Title:        simulatedTitle(platform, productID),
		Availability: model.AvailabilityUnknown,
		Simulated:    true,
		FetchedAt:    now,
	}
}

func catalogKey(platform model.Platform, productID string) string {
	return string(platform) + "/" + productID
}

func simulatedTitle(platform model.Platform, productID string) string {
	return fmt.Sprintf("Simulated %s product %s", platform, productID)
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
