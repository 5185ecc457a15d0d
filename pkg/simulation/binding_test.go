package simulation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	bound   map[string]float64
	invalid bool
}

func (r *recorder) Bind(field string, value float64) error {
	if field == "bad" {
		return errors.New("rejected")
	}
	if r.bound == nil {
		r.bound = make(map[string]float64)
	}
	r.bound[field] = value
	return nil
}

func (r *recorder) Validate() error {
	if r.invalid {
		return errors.New("invalid")
	}
	return nil
}

func TestManifest_Apply(t *testing.T) {
	manifest := Manifest{
		{Target: "sma", Field: "fast", Name: "p1"},
		{Target: "sma", Field: "slow", Name: "p2"},
		{Target: "risk", Field: "fraction", Name: "p1"},
	}
	assert.Equal(t, []string{"p1", "p2"}, manifest.Names())

	sma, risk := &recorder{}, &recorder{}
	targets := map[string]Bindable{"sma": sma, "risk": risk}

	require.NoError(t, manifest.Apply(targets, map[string]float64{"p1": 5, "p2": 20}))
	assert.Equal(t, map[string]float64{"fast": 5, "slow": 20}, sma.bound)
	assert.Equal(t, map[string]float64{"fraction": 5}, risk.bound)
}

func TestManifest_ApplyErrors(t *testing.T) {
	tests := []struct {
		name        string
		manifest    Manifest
		realization map[string]float64
		invalid     bool
		wantErr     error
	}{
		{
			name:        "unknown target",
			manifest:    Manifest{{Target: "ghost", Field: "x", Name: "p"}},
			realization: map[string]float64{"p": 1},
			wantErr:     ErrUnknownTarget,
		},
		{
			name:        "missing value",
			manifest:    Manifest{{Target: "sma", Field: "fast", Name: "p"}},
			realization: map[string]float64{},
			wantErr:     ErrMissingParameter,
		},
		{
			name:        "rejected field",
			manifest:    Manifest{{Target: "sma", Field: "bad", Name: "p"}},
			realization: map[string]float64{"p": 1},
		},
		{
			name:        "validation after binding",
			manifest:    Manifest{{Target: "sma", Field: "fast", Name: "p"}},
			realization: map[string]float64{"p": 1},
			invalid:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets := map[string]Bindable{"sma": &recorder{invalid: tt.invalid}}
			err := tt.manifest.Apply(targets, tt.realization)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestManifest_Empty(t *testing.T) {
	var manifest Manifest
	assert.NoError(t, manifest.Apply(nil, nil))
	assert.Empty(t, manifest.Names())
}
