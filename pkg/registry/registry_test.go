package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"homelead-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())

	fields := reg.AllowedFields(models.CollectionLeads)
	assert.Contains(t, fields, "leadNo")
	assert.Contains(t, fields, "maxBudget")
	assert.NotContains(t, fields, "commissionPercent")
}

func TestAllowedFields_ReturnsCopy(t *testing.T) {
	reg := Default()
	fields := reg.AllowedFields(models.CollectionBrokers)
	fields[0] = "mutated"

	assert.Equal(t, "name", reg.AllowedFields(models.CollectionBrokers)[0])
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.json")
	require.NoError(t, Default().Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Collections, loaded.Collections)
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Registry)
		wantErr string
	}{
		{
			name:    "unknown collection",
			mutate:  func(r *Registry) { r.Collections[0].Name = "franchises" },
			wantErr: "unknown collection",
		},
		{
			name:    "missing collection",
			mutate:  func(r *Registry) { r.Collections = r.Collections[:4] },
			wantErr: `missing collection "lands"`,
		},
		{
			name:    "empty allow-list",
			mutate:  func(r *Registry) { r.Collections[1].AllowedFields = nil },
			wantErr: "projects: no allowed fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Default()
			tt.mutate(reg)
			data, err := json.Marshal(reg)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "bad.json")
			require.NoError(t, os.WriteFile(path, data, 0o600))

			_, err = LoadRegistry(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_DefaultsWeight(t *testing.T) {
	reg := Default()
	for i := range reg.Collections {
		reg.Collections[i].Weight = 0
	}
	path := filepath.Join(t.TempDir(), "noweight.json")
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	for _, p := range loaded.Collections {
		assert.Equal(t, 1.0, p.Weight)
	}
}

func TestLoadOrDefault(t *testing.T) {
	reg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Len(t, reg.Collections, 5)

	_, err = LoadOrDefault("/does/not/exist.json")
	assert.Error(t, err)
}
