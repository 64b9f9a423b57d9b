package pso

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Dimension)
	assert.Equal(t, -10.0, cfg.Lower)
	assert.Equal(t, 10.0, cfg.Upper)
	assert.Equal(t, 10, cfg.Particles)
	assert.Equal(t, 100, cfg.Iterations)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero dimension", func(c *Config) { c.Dimension = 0 }, "Dimension"},
		{"lower equals upper", func(c *Config) { c.Lower, c.Upper = 3, 3 }, "Lower"},
		{"lower above upper", func(c *Config) { c.Lower, c.Upper = 5, -5 }, "Lower"},
		{"infinite upper", func(c *Config) { c.Upper = math.Inf(1) }, "Upper"},
		{"nan lower", func(c *Config) { c.Lower = math.NaN() }, "Lower"},
		{"no particles", func(c *Config) { c.Particles = 0 }, "Particles"},
		{"negative iterations", func(c *Config) { c.Iterations = -1 }, "Iterations"},
		{"negative c1", func(c *Config) { c.C1 = -0.1 }, "C1"},
		{"negative c2", func(c *Config) { c.C2 = -2 }, "C2"},
		{"nan c1", func(c *Config) { c.C1 = math.NaN() }, "C1"},
		{"infinite c1", func(c *Config) { c.C1 = math.Inf(1) }, "C1"},
		{"infinite c2", func(c *Config) { c.C2 = math.Inf(1) }, "C2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			_, err = New(cfg, valley)
			assert.Error(t, err)
		})
	}
}

func TestConfig_ZeroCoefficientsAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.C1, cfg.C2 = 0, 0
	assert.NoError(t, cfg.Validate())
}
