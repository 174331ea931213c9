package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/load-planner/internal/catalog"
	"github.com/eugenenazirov/load-planner/internal/packer"
)

const truckManifest = `
container:
  width: 200
  length: 400
  height: 180
weight_budget: 5000
boxes:
  - {id: A, width: 50, length: 60, height: 40, weight: 30, quantity: 4}
  - {id: B, width: 40, length: 40, height: 40, weight: 20, quantity: 10}
  - {id: C, width: 100, length: 100, height: 50, weight: 80, quantity: 1}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testOptions(t *testing.T, manifest, format string) options {
	t.Helper()
	for _, key := range []string{"PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL", "METRICS_ENABLED", "CONTAINER_MAX_GROSS_WEIGHT"} {
		t.Setenv(key, "")
	}
	return options{manifest: writeFile(t, "plan.yaml", manifest), format: format, logLevel: "error"}
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testOptions(t, truckManifest, "json"), &out))

	var got jsonOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, packer.Container{Width: 200, Length: 400, Height: 180}, got.Container)
	assert.Equal(t, 15, got.RequestedCount)
	assert.Equal(t, 7, got.PlacedCount)
	assert.Equal(t, 240.0, got.TotalWeight)
	assert.True(t, got.Truncated)
	assert.Equal(t, "C", got.Placements[0].BoxID)
}

func TestRunText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testOptions(t, truckManifest, "text"), &out))

	text := out.String()
	assert.Contains(t, text, "Container: 200 x 400 x 180 cm (14.40 m3)")
	assert.Contains(t, text, "Placed: 7 of 15 units")
	assert.Contains(t, text, "  B: 2\n")
	assert.NotContains(t, text, "WARNING")
}

func TestRunWarnsAtWeightLimit(t *testing.T) {
	manifest := "container_preset: 20ft\ntruck_class: 4-wheel\nweight_budget: 60\nboxes:\n  - {id: A, width: 10, length: 10, height: 10, weight: 30, quantity: 3}\n"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testOptions(t, manifest, "text"), &out))

	text := out.String()
	assert.Contains(t, text, "[20ft]")
	assert.Contains(t, text, "Total weight: 60.00 / 60 kg")
	assert.Contains(t, text, "WARNING")
}

func TestRunUsesConfiguredPresets(t *testing.T) {
	opts := testOptions(t, "container_preset: van\nboxes: []\n", "json")
	opts.configFile = writeFile(t, "config.yaml", "container_max_gross_weight: 3500\ncontainers:\n  - {name: van, width: 170, length: 300, height: 180, tare_weight: 2000}\n")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))

	var got jsonOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "van", got.ContainerPreset)
	assert.Equal(t, 1500.0, got.WeightBudget)
	assert.Empty(t, got.Placements)
}

func TestRunReportsInvalidInput(t *testing.T) {
	manifest := "container_preset: 20ft\nboxes:\n  - {id: A, width: 10, length: 0, height: 10, quantity: 1}\n"

	err := run(context.Background(), testOptions(t, manifest, "text"), &bytes.Buffer{})
	require.ErrorIs(t, err, packer.ErrInvalidDimension)
	assert.True(t, strings.Contains(err.Error(), "boxes[0].length"))
}

func TestRunUnknownPreset(t *testing.T) {
	err := run(context.Background(), testOptions(t, "container_preset: 53ft\n", "text"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, catalog.ErrUnknownContainer))
}

func TestRunMissingManifest(t *testing.T) {
	opts := testOptions(t, truckManifest, "text")
	opts.manifest = filepath.Join(t.TempDir(), "absent.yaml")

	assert.Error(t, run(context.Background(), opts, &bytes.Buffer{}))
}
