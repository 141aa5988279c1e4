package config_test

import (
	"path/filepath"
	"testing"

	"github.com/printcraft/m3dhost/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadSettings_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings")

	s := config.Default()
	s.BackRightOffset = 1.25
	s.BacklashSpeed = 1500
	s.FilamentType = 2
	s.FilamentTemperature = 215

	require.NoError(t, config.SaveSettings(path, s))

	loaded, err := config.LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, s.BackRightOffset, loaded.BackRightOffset)
	assert.Equal(t, s.BacklashSpeed, loaded.BacklashSpeed)
	assert.Equal(t, s.FilamentType, loaded.FilamentType)
	assert.Equal(t, s.FilamentTemperature, loaded.FilamentTemperature)
}

func TestLoadSettings_MissingFileReturnsError(t *testing.T) {
	_, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
