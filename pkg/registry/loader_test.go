package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snow-ghost/validator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	r, err := NewLoader(filepath.Join(t.TempDir(), "none.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultThresholds().Snapshot(), r.Snapshot())

	r, err = NewLoader("").Load()
	require.NoError(t, err)
	assert.Len(t, r.Criteria(), 6)
}

func TestLoad_OverridesAndAdds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
criteria:
  Q:
    fullness: {min_value: 8}
    examples: {required: true}
  Rel:
    peer_review: {weight: 0.1, required: false}
`), 0o644))

	r, err := NewLoader(path).Load()
	require.NoError(t, err)

	fullness, _ := r.Get(core.CriterionQuality, "fullness")
	assert.Equal(t, core.Threshold{MinValue: 8, Weight: 0.4, Required: true}, fullness)

	examples, _ := r.Get(core.CriterionQuality, "examples")
	assert.Equal(t, core.Threshold{MinValue: 6, Weight: 0.15, Required: true}, examples)

	peer, ok := r.Get(core.CriterionReliability, "peer_review")
	require.True(t, ok)
	assert.Equal(t, core.Threshold{MinValue: 6, Weight: 0.1, Required: false}, peer)
}

func TestApply_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown criterion": "criteria:\n  X:\n    m: {weight: 1}\n",
		"negative weight":   "criteria:\n  Q:\n    m: {weight: -1}\n",
		"invalid yaml":      "criteria: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Apply(core.NewThresholdRegistry(), []byte(doc)))
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "thresholds.yaml")
	want := core.DefaultThresholds()
	want.Set(core.CriterionUtility, "benefits", core.WithMinValue(7.5))

	require.NoError(t, NewLoader(path).Save(want))

	got := core.NewThresholdRegistry()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, Apply(got, data))
	assert.Equal(t, want.Snapshot(), got.Snapshot())
}
