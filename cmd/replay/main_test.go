package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

func TestParseScript(t *testing.T) {
	s, err := parseScript([]byte(`
ruleset: compact
steps:
  - {action: " Place ", rotation: 2, lane: 3}
  - {action: toggle_mark}
  - {action: break, rotation: 2, lane: 3, repeat: 4}
`))
	require.NoError(t, err)

	assert.Equal(t, "compact", s.Ruleset)
	assert.Equal(t, []Step{
		{Action: "place", Rotation: 2, Lane: 3, Repeat: 1},
		{Action: "toggle_mark", Repeat: 1},
		{Action: "break", Rotation: 2, Lane: 3, Repeat: 4},
	}, s.Steps)
}

func TestParseScript_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"bad yaml", "steps: [:"},
		{"missing action", "steps:\n  - {rotation: 1, lane: 1}"},
		{"missing lane", "steps:\n  - {action: place, rotation: 1}"},
		{"zero based", "steps:\n  - {action: place, rotation: 0, lane: 1}"},
		{"negative repeat", "steps:\n  - {action: place, rotation: 1, lane: 1, repeat: -1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScript([]byte(tt.script))
			assert.Error(t, err)
		})
	}
}

func TestReplay_CarryForward(t *testing.T) {
	s, err := loadScript(filepath.Join("testdata", "carry_forward.yaml"))
	require.NoError(t, err)

	eng := engine.NewEngineWithDefaults()
	var out bytes.Buffer
	succeeded, err := replay(eng, s, &out, false)
	require.NoError(t, err)

	assert.Equal(t, 19, succeeded)
	assert.Equal(t, engine.OutcomeCarriedForward, eng.GetLastIntent().Outcome)
	assert.Contains(t, out.String(), "  1. ✓ place r1 l1 -> placed")
	assert.Contains(t, out.String(), "12. ✓ toggle_mark -> mark_mode_on")
	assert.Contains(t, out.String(), "19. ✓ break r1 l4 -> carried_forward")

	board := eng.GetBoardView()
	assert.Equal(t, 11, board.Rotations[0].WallCount)
	assert.Equal(t, 7, board.Rotations[0].BreakCount)
	assert.Equal(t, 4, board.Rotations[1].CarryCount)
}

func TestReplay_Quiet(t *testing.T) {
	s, err := parseScript([]byte("steps:\n  - {action: place, rotation: 1, lane: 1, repeat: 3}"))
	require.NoError(t, err)

	var out bytes.Buffer
	succeeded, err := replay(engine.NewEngineWithDefaults(), s, &out, true)
	require.NoError(t, err)
	assert.Equal(t, 3, succeeded)
	assert.Empty(t, out.String())
}

func TestReplay_UnknownAction(t *testing.T) {
	s, err := parseScript([]byte("steps:\n  - {action: jump, rotation: 1, lane: 1}"))
	require.NoError(t, err)

	_, err = replay(engine.NewEngineWithDefaults(), s, &bytes.Buffer{}, false)
	assert.ErrorContains(t, err, "step 1")
}

func TestCommand_RendersBoard(t *testing.T) {
	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), []string{
		"replay", "--config-dir", filepath.Join("..", "..", "configs"), "--quiet",
		filepath.Join("testdata", "carry_forward.yaml"),
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Rotation 1  walls 11/11  breaks 7/7")
	assert.Contains(t, out.String(), "Mark Mode: ON")
	assert.NotContains(t, out.String(), "->")
}

func TestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - {action: place, rotation: 2, lane: 3}\n"), 0644))

	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), []string{
		"replay", "--config-dir", filepath.Join("..", "..", "configs"),
		"--ruleset", "compact", "--json", path,
	})
	require.NoError(t, err)

	// the step log precedes the JSON document
	raw := out.Bytes()[bytes.IndexByte(out.Bytes(), '{'):]
	var board engine.BoardView
	require.NoError(t, json.Unmarshal(raw, &board))
	assert.Len(t, board.Rotations, 4)
	assert.Equal(t, 1, board.Rotations[1].WallCount)
}

func TestCommand_Errors(t *testing.T) {
	configs := filepath.Join("..", "..", "configs")

	err := newCommand(&bytes.Buffer{}).Run(context.Background(), []string{"replay", "--config-dir", configs})
	assert.Error(t, err)

	err = newCommand(&bytes.Buffer{}).Run(context.Background(), []string{
		"replay", "--config-dir", configs, "--ruleset", "missing", filepath.Join("testdata", "carry_forward.yaml"),
	})
	assert.Error(t, err)
}
