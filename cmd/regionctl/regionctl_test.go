package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inamate/regionedit/internal/configstore"
	"github.com/inamate/regionedit/internal/eventloop"
	"github.com/inamate/regionedit/internal/logging"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

const toggleScript = `
variant: multi_area
node_id: "7"
widget: {width: 532, height: 404}
steps:
  - down: [110, 60]
  - up: [110, 60]
  - move: [130, 80]
  - wait: 40ms
  - down: [500, 380]
  - edit: {field: strength, value: 0.5}
`

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(toggleScript))
	require.NoError(t, err)
	assert.Equal(t, "multi_area", s.Variant)
	assert.Len(t, s.Steps, 6)
	assert.Equal(t, []float64{110, 60}, s.Steps[0].Down)
	assert.Equal(t, "40ms", s.Steps[3].Wait)

	s, err = ParseScript([]byte("variant: body_parts\nsteps: []\n"))
	require.NoError(t, err)
	assert.Equal(t, "replay", s.NodeID)

	bad := []string{
		"steps: [{down: [1]}]",
		"steps: [{wait: soon}]",
		"steps: [{edit: {field: depth, value: 1}}]",
		"steps: [{action: explode}]",
		"steps: [{down: [1, 2], up: [1, 2]}]",
		"steps: [{}]",
	}
	for _, b := range bad {
		_, err := ParseScript([]byte(b))
		assert.ErrorIs(t, err, errBadStep, b)
	}
}

func TestReplayManual(t *testing.T) {
	s, err := ParseScript([]byte(toggleScript))
	require.NoError(t, err)

	res, err := Replay(s, manualDriver{eventloop.NewManual(time.Time{})}, nil)
	require.NoError(t, err)
	assert.Equal(t, "multi_area", res.Variant)
	assert.Equal(t, "7", res.NodeID)
	assert.Positive(t, res.Pushes)
	assert.Positive(t, res.Frames)

	tuple := res.Payload.Regions["0"]
	require.Len(t, tuple, 6)
	assert.Equal(t, 20.0, tuple[0])
	assert.Equal(t, 20.0, tuple[1])
	assert.Equal(t, 0.5, tuple[4])
	assert.Equal(t, 512.0, res.Payload.CanvasWidth)
}

func TestReplayRealtime(t *testing.T) {
	s, err := ParseScript([]byte(toggleScript))
	require.NoError(t, err)

	serial := eventloop.NewSerial(eventloop.FrameInterval, logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go serial.Run(ctx)

	res, err := Replay(s, serialDriver{serial}, nil)
	require.NoError(t, err)
	tuple := res.Payload.Regions["0"]
	require.Len(t, tuple, 6)
	assert.Equal(t, 20.0, tuple[0])
	assert.Equal(t, 0.5, tuple[4])
}

func TestReplayCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(toggleScript), 0o600))

	out, err := run(t, "replay", path)
	require.NoError(t, err)
	var res struct {
		Variant string `json:"variant"`
		Payload struct {
			Regions map[string][]any `json:"regions"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "multi_area", res.Variant)
	assert.Equal(t, 20.0, res.Payload.Regions["0"][0])

	_, err = run(t, "replay", path, "--variant", "nope")
	assert.ErrorContains(t, err, "unknown variant")
}

func TestDefaultsCommand(t *testing.T) {
	out, err := run(t, "defaults", "multi_image", "-o", "yaml")
	require.NoError(t, err)

	var payload struct {
		Regions      map[string][]any `yaml:"regions"`
		CanvasWidth  float64          `yaml:"canvas_width"`
		CanvasHeight float64          `yaml:"canvas_height"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload.Regions, 4)
	assert.Equal(t, 1024.0, payload.CanvasWidth)
	assert.Len(t, payload.Regions["1"], 7)
	assert.Equal(t, false, payload.Regions["1"][6])

	_, err = run(t, "defaults", "nope")
	assert.Error(t, err)
}

func TestVariantsCommand(t *testing.T) {
	out, err := run(t, "variants")
	require.NoError(t, err)
	var ds []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &ds))
	assert.Len(t, ds, 3)
}

func TestStoreCommands(t *testing.T) {
	dir := t.TempDir()
	store, err := configstore.NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()
	for _, id := range []string{"4", "2"} {
		require.NoError(t, store.Save(ctx, "human_body_parts", configstore.Entry{
			Revision: "rev_" + id, NodeID: id, Timestamp: 1, Config: json.RawMessage(`{"regions":{}}`),
		}))
	}

	out, err := run(t, "list", "human_body_parts", "--backend", "file", "--data-dir", dir)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []string{"2", "4"}, ids)

	out, err = run(t, "get", "human_body_parts", "4", "--backend", "file", "--data-dir", dir)
	require.NoError(t, err)
	var entry configstore.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "rev_4", entry.Revision)

	_, err = run(t, "get", "human_body_parts", "9", "--backend", "file", "--data-dir", dir)
	assert.ErrorIs(t, err, configstore.ErrNotFound)

	out, err = run(t, "clear", "human_body_parts", "4", "--backend", "file", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed human_body_parts/4")

	out, err = run(t, "clear", "human_body_parts", "--backend", "file", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 config(s)")
}
