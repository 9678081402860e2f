package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/pkg/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "test.db")
	cfg.Sources.Simulation = true
	cfg.Logging.Level = "error"
	return cfg
}

func TestInitEngine_SharesRegistry(t *testing.T) {
	cfg := testConfig(t)

	eng, registry, store, err := initEngine(cfg)
	require.NoError(t, err)
	defer store.Close()

	require.NotNil(t, eng)
	require.NotNil(t, registry)

	// The returned registry is fully wired: it resolves product ids
	// for commands without a second construction pass.
	id, ok := registry.ExtractID(model.PlatformAmazon, "https://www.amazon.com/dp/B08N5WRWNW")
	assert.True(t, ok)
	assert.Equal(t, "B08N5WRWNW", id)
	assert.True(t, registry.SimulationEnabled())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, parseDuration("5m", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("bogus", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("-1s", time.Hour))
}
