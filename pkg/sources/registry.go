package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// Registry manages source instances by platform and decides when the
// simulation source stands in for an unconfigured platform.
type Registry struct {
	mu        sync.RWMutex
	sources   map[model.Platform]Source
	simulator *Simulator
	simulate  bool
}

// NewRegistry creates an empty source registry. When simulate is true,
// unconfigured platforms resolve to deterministic simulation quotes
// instead of a NotConfigured failure.
func NewRegistry(simulator *Simulator, simulate bool) *Registry {
	return &Registry{
		sources:   make(map[model.Platform]Source),
		simulator: simulator,
		simulate:  simulate,
	}
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	platform := s.Platform()
	if _, exists := r.sources[platform]; exists {
		return fmt.Errorf("source for %q already registered", platform)
	}
	r.sources[platform] = s
	return nil
}

// Get returns the source registered for a platform, if any.
func (r *Registry) Get(platform model.Platform) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[platform]
	return s, ok
}

// Configured reports whether a platform can serve real quotes.
func (r *Registry) Configured(platform model.Platform) bool {
	s, ok := r.Get(platform)
	return ok && s.Configured()
}

// SimulationEnabled reports whether unconfigured platforms fall through
// to the simulation source.
func (r *Registry) SimulationEnabled() bool {
	return r.simulate
}

// Fetch retrieves a quote for a product on a platform. Unconfigured
// platforms yield a simulation quote when simulation mode is on, and a
// typed NotConfigured failure otherwise.
func (r *Registry) Fetch(ctx context.Context, platform model.Platform, productID string) (*Quote, error) {
	if !platform.Valid() {
		return nil, NewError(platform, KindNotFound, "unsupported platform", nil)
	}

	s, ok := r.Get(platform)
	if ok && s.Configured() {
		return s.Fetch(ctx, productID)
	}

	if r.simulate && r.simulator != nil {
		id := productID
		if ok {
			if extracted, found := s.ExtractID(productID); found {
				id = extracted
			}
		}
		return r.simulator.Quote(platform, id), nil
	}

	return nil, NewError(platform, KindNotConfigured, "no credentials configured and simulation disabled", nil)
}

// ExtractID resolves a URL or raw identifier for a platform. Platforms
// without a registered source pass the input through unchanged.
func (r *Registry) ExtractID(platform model.Platform, urlOrID string) (string, bool) {
	s, ok := r.Get(platform)
	if !ok {
		return urlOrID, urlOrID != ""
	}
	return s.ExtractID(urlOrID)
}

// DetectPlatform guesses a platform from a product URL's hostname.
func DetectPlatform(url string) (model.Platform, bool) {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "amazon.") || strings.Contains(lower, "amzn."):
		return model.PlatformAmazon, true
	case strings.Contains(lower, "ebay."):
		return model.PlatformEBay, true
	case strings.Contains(lower, "walmart."):
		return model.PlatformWalmart, true
	case strings.Contains(lower, "bestbuy."):
		return model.PlatformBestBuy, true
	case strings.Contains(lower, "target."):
		return model.PlatformTarget, true
	case strings.Contains(lower, "newegg."):
		return model.PlatformNewegg, true
	}
	return "", false
}
