package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const overlayYAML = `
metadata:
  version: "2025.2"
auto:
  usage:
    values:
      taxi: 1.80
  fees:
    levies:
      - code: fga
        label: Fonds de garantie automobile
        rate: 0.025
        floor: 6000
epargne:
  interest_rate: 0.04
`

func TestLoadRates_DefaultsWithoutFile(t *testing.T) {
	tables, err := LoadRates("")
	require.NoError(t, err)
	assert.Equal(t, "XOF", tables.Metadata.Currency)
}

func TestLoadRates_Overlay(t *testing.T) {
	tables, err := LoadRates(writeFile(t, "rates.yaml", overlayYAML))
	require.NoError(t, err)

	assert.Equal(t, "2025.2", tables.Metadata.Version)
	assert.Equal(t, "XOF", tables.Metadata.Currency, "untouched keys keep their default")
	assert.True(t, tables.Auto.Usage.Values["taxi"].Equal(decimal.RequireFromString("1.80")))
	assert.True(t, tables.Auto.Usage.Values["prive"].Equal(decimal.NewFromInt(1)), "map keys merge")
	require.Len(t, tables.Auto.Fees.Levies, 1)
	assert.True(t, tables.Auto.Fees.Levies[0].Floor.Equal(decimal.NewFromInt(6000)))
	require.Len(t, tables.Auto.Fees.Taxes, 1, "lists not in the file keep their default")
	assert.True(t, tables.Savings.InterestRate.Equal(decimal.RequireFromString("0.04")))
	assert.Equal(t, domain.RoundEachStep, tables.Savings.Rounding, "inline fields keep their default")
}

func TestLoadRates_RejectsGap(t *testing.T) {
	_, err := LoadRates(writeFile(t, "rates.yaml", `
auto:
  seats:
    name: seats
    brackets:
      - {min: 1, max: 5, value: 1}
      - {min: 7, value: 1.2}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap or overlap")
}

func TestLoadRates_Errors(t *testing.T) {
	_, err := LoadRates("missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read rates file")

	_, err = LoadRates(writeFile(t, "rates.yaml", "auto: [oops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse rates YAML")
}

func TestRatesWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	path := writeFile(t, "rates.yaml", overlayYAML)
	rw, err := NewRatesWatcher(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025.2", rw.Rates().Metadata.Version)

	require.NoError(t, os.WriteFile(path, []byte("epargne:\n  rounding: sometimes\n"), 0o644))
	assert.Error(t, rw.Reload())
	assert.Equal(t, "2025.2", rw.Rates().Metadata.Version)

	var calls int32
	rw.OnReload(func(*domain.RateTables) { atomic.AddInt32(&calls, 1) })
	require.NoError(t, os.WriteFile(path, []byte("metadata:\n  version: \"2025.3\"\n"), 0o644))
	require.NoError(t, rw.Reload())
	assert.Equal(t, "2025.3", rw.Rates().Metadata.Version)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRatesWatcher_WatchesFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "rates.yaml", overlayYAML)
	rw, err := NewRatesWatcher(path, nil)
	require.NoError(t, err)
	rw.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, rw.Start(ctx))
	defer rw.Stop()

	require.NoError(t, os.WriteFile(path, []byte("metadata:\n  version: \"2026.1\"\n"), 0o644))
	assert.Eventually(t, func() bool {
		return rw.Rates().Metadata.Version == "2026.1"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRatesWatcher_DefaultsDoNotWatch(t *testing.T) {
	rw, err := NewRatesWatcher("", nil)
	require.NoError(t, err)
	require.NoError(t, rw.Start(context.Background()))
	rw.Stop()
	assert.NotNil(t, rw.Rates())
}
