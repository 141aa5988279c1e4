package pipeline_test

import (
	"strings"
	"testing"

	"github.com/printcraft/m3dhost/geom"
	"github.com/printcraft/m3dhost/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveBond_AddsRippleOnFirstLayerMoves(t *testing.T) {
	path := writeTempGcode(t, ";LAYER:0\nG1 X60 Y60 E1\nG1 X65 Y65 E2\n")
	require.NoError(t, pipeline.WaveBond(path))
	out := readFile(t, path)
	assert.Contains(t, out, "G1")
}

func TestThermalBond_InjectsFirstLayerTemperatureBoost(t *testing.T) {
	path := writeTempGcode(t, ";LAYER:0\nG1 X60 Y60 E1\n;LAYER:1\nG1 X65 Y65 E1\n")
	require.NoError(t, pipeline.ThermalBond(path, pipeline.FilamentABS, 230, false, false))
	out := readFile(t, path)
	require.True(t, strings.HasPrefix(out, "M109 S245\n"))
}

func TestBacklashCompensation_InsertsMoveOnDirectionReversal(t *testing.T) {
	path := writeTempGcode(t, "G1 X60 Y50 F1000\nG1 X50 Y50 F1000\n")
	require.NoError(t, pipeline.BacklashCompensation(path, 0.5, 0.5, 2000))
	out := readFile(t, path)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "F2000.000000")
}

func TestBedCompensation_AppliesFixedHeightOffset(t *testing.T) {
	path := writeTempGcode(t, "G1 X60 Y60 Z1 E1\n")
	orientation := geom.BedOrientation{}
	require.NoError(t, pipeline.BedCompensation(path, orientation, 0.2))
	out := readFile(t, path)
	assert.Contains(t, out, "Z1.200000")
}
