package pipeline_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/printcraft/m3dhost/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempGcode(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "job.gcode")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestValidate_DropsUnsupportedCommandsAndToolSelection(t *testing.T) {
	path := writeTempGcode(t, "M82\nG21\nG1 X10 T1\nM83\n")
	require.NoError(t, pipeline.Validate(path))

	out := readFile(t, path)
	assert.NotContains(t, out, "M82")
	assert.NotContains(t, out, "M83")
	assert.NotContains(t, out, "G21")
	assert.NotContains(t, out, "T1")
	assert.Contains(t, out, "G1")
}

func TestFeedRateConversion_ScalesAndClampsFeedRate(t *testing.T) {
	path := writeTempGcode(t, "G1 X10 F6000\nG1 X20 F120000\n")
	require.NoError(t, pipeline.FeedRateConversion(path))

	lines := strings.Split(strings.TrimRight(readFile(t, path), "\n"), "\n")
	require.Len(t, lines, 2)
	// F6000/60=100 > cap(60.0001) -> clamped to cap -> native value is the
	// floor of the scale (30).
	assert.Contains(t, lines[0], "F30.000000")
	assert.Contains(t, lines[1], "F30.000000")
}

func TestFeedRateConversion_ZeroFeedRateMapsToCeiling(t *testing.T) {
	path := writeTempGcode(t, "G1 X10 F0\n")
	require.NoError(t, pipeline.FeedRateConversion(path))
	out := readFile(t, path)
	assert.Contains(t, out, "F830.000000")
}

func TestDimensionCheck_FlagsOutOfBoundsMove(t *testing.T) {
	path := writeTempGcode(t, "G1 X500 Y500 Z1\n")
	ok, _, err := pipeline.DimensionCheck(path, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDimensionCheck_WithinBoundsPasses(t *testing.T) {
	path := writeTempGcode(t, "G1 X60 Y55 Z1\n")
	ok, ext, err := pipeline.DimensionCheck(path, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 60.0, ext.MaxXLow)
}

func TestPrepare_WrapsInputWithIntroAndOutro(t *testing.T) {
	path := writeTempGcode(t, "G1 X10 Y10 E1\n")
	err := pipeline.Prepare(path, pipeline.FilamentABS, 230, pipeline.Extents{}, false)
	require.NoError(t, err)

	out := readFile(t, path)
	assert.True(t, strings.HasPrefix(out, "M106 S50\n"))
	assert.Contains(t, out, "G1 X10 Y10 E1")
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), "M107"))
}

func TestRun_SkipsValidationAndPreparationWhenDisabled(t *testing.T) {
	path := writeTempGcode(t, "M82\nG1 X10 Y10 E1\n")
	err := pipeline.Run(path, pipeline.Options{
		IgnoreDimensionLimits: true,
		Filament:              pipeline.FilamentABS,
		FilamentTemperature:   230,
	})
	require.NoError(t, err)

	out := readFile(t, path)
	assert.Contains(t, out, "M82")
	assert.False(t, strings.HasPrefix(out, "M106 S50\n"))
}

func TestRun_AppliesValidationAndPreparationWhenEnabled(t *testing.T) {
	path := writeTempGcode(t, "M82\nG1 X10 Y10 E1\n")
	err := pipeline.Run(path, pipeline.Options{
		IgnoreDimensionLimits: true,
		Validation:            true,
		Preparation:           true,
		Filament:              pipeline.FilamentABS,
		FilamentTemperature:   230,
	})
	require.NoError(t, err)

	out := readFile(t, path)
	assert.NotContains(t, out, "M82")
	assert.True(t, strings.HasPrefix(out, "M106 S50\n"))
}
