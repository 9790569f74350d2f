package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 20.0, cfg.Correction.DayUnitMin)
	assert.Equal(t, 28.0, cfg.Correction.DayUnitMax)
	assert.Equal(t, 0.8, cfg.Correction.AgreementMin)
	assert.Equal(t, 1.2, cfg.Correction.AgreementMax)
	assert.Equal(t, 100.0, cfg.Correction.ElapsedHoursMax)
	assert.Equal(t, 24.0, cfg.UnitHours["d"])
	assert.Equal(t, 50, cfg.Export.MaxColumnWidth)
	assert.Contains(t, cfg.Reference.HoursColumns, "Duración(horas)")
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
correction:
  day_unit_min: 22
unit_hours:
  w: 120
reference:
  path: native.xlsx
workers: 4
`))
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 22.0, cfg.Correction.DayUnitMin)
	// Untouched keys keep their defaults.
	assert.Equal(t, 28.0, cfg.Correction.DayUnitMax)
	assert.Equal(t, 120.0, cfg.UnitHours["w"])
	assert.Equal(t, 1.0, cfg.UnitHours["eh"])
	assert.Equal(t, "native.xlsx", cfg.Reference.Path)
	assert.Equal(t, 4, cfg.Workers)
}

func TestBindEnv(t *testing.T) {
	t.Setenv("MPPCONVERT_REFERENCE_PATH", "s3://plans/reference.xlsx")
	t.Setenv("MPPCONVERT_WORKERS", "3")
	t.Setenv("MPPCONVERT_STORAGE_USE_PATH_STYLE", "true")

	v := viper.New()
	require.NoError(t, BindEnv(v))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "s3://plans/reference.xlsx", cfg.Reference.Path)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, "xlsx", cfg.Export.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "inverted day band",
			mutate: func(c *Config) { c.Correction.DayUnitMin = 30 },
			errMsg: "invalid day-unit band",
		},
		{
			name:   "overlapping bands",
			mutate: func(c *Config) { c.Correction.AgreementMax = 21 },
			errMsg: "overlap",
		},
		{
			name:   "negative unit hours",
			mutate: func(c *Config) { c.UnitHours["w"] = -1 },
			errMsg: "must not be negative",
		},
		{
			name:   "unknown format",
			mutate: func(c *Config) { c.Export.Format = "ods" },
			errMsg: "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
