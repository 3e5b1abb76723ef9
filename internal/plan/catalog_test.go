package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileMissingFallsBackToDefault(t *testing.T) {
	catalog, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	p := catalog.Get("pro")
	require.NotNil(t, p)
	assert.Equal(t, "Pro Plan", p.Name)
	assert.Equal(t, int64(999), p.UnitAmount)
	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, "month", p.Interval)
	assert.Equal(t, int64(7), p.TrialDays)
	assert.NotEmpty(t, p.Features)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"plans": [
			{"id": "pro", "name": "Pro Plan", "unit_amount": 999, "currency": "usd", "interval": "month", "trial_days": 7},
			{"id": "annual", "name": "Annual Plan", "unit_amount": 9900, "currency": "usd", "interval": "year", "trial_days": 14}
		]
	}`), 0o644))

	catalog, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Len(t, catalog.All(), 2)
	assert.True(t, catalog.Exists("annual"))
	assert.Equal(t, int64(9900), catalog.Get("annual").UnitAmount)
	assert.Nil(t, catalog.Get("enterprise"))
}

func TestLoadFromFileInvalid(t *testing.T) {
	dir := t.TempDir()

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{"plans": [`), 0o644))
	_, err := LoadFromFile(badJSON)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"plans": []}`), 0o644))
	_, err = LoadFromFile(empty)
	assert.Error(t, err)
}
