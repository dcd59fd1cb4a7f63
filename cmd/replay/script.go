package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

// Script is a recorded sequence of intents replayed against one ruleset
type Script struct {
	Ruleset string `yaml:"ruleset"`
	Steps   []Step `yaml:"steps"`
}

// Step is one intent. Rotation and lane are 1-based as a player counts them.
type Step struct {
	Action   string `yaml:"action"`
	Rotation int    `yaml:"rotation"`
	Lane     int    `yaml:"lane"`
	Repeat   int    `yaml:"repeat"`
}

// laneless actions take no coordinates
var laneless = map[string]bool{
	engine.ActionToggleMark: true,
	engine.ActionReset:      true,
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseScript(data)
}

func parseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, step := range s.Steps {
		step.Action = strings.ToLower(strings.TrimSpace(step.Action))
		if step.Action == "" {
			return nil, fmt.Errorf("step %d: action is required", i+1)
		}
		if !laneless[step.Action] && (step.Rotation < 1 || step.Lane < 1) {
			return nil, fmt.Errorf("step %d: %s needs rotation and lane", i+1, step.Action)
		}
		if step.Repeat < 0 {
			return nil, fmt.Errorf("step %d: repeat must not be negative", i+1)
		}
		if step.Repeat == 0 {
			step.Repeat = 1
		}
		s.Steps[i] = step
	}
	return &s, nil
}

// replay applies every step to eng and writes one line per intent unless
// quiet is set. It returns the number of intents that succeeded.
func replay(eng *engine.GameEngine, s *Script, w io.Writer, quiet bool) (int, error) {
	succeeded := 0
	for i, step := range s.Steps {
		rotation, lane := step.Rotation-1, step.Lane-1
		if laneless[step.Action] {
			rotation, lane = -1, -1
		}
		for n := 0; n < step.Repeat; n++ {
			ok, err := eng.ApplyIntent(step.Action, rotation, lane)
			if err != nil {
				return succeeded, fmt.Errorf("step %d: %w", i+1, err)
			}
			if ok {
				succeeded++
			}
			if quiet {
				continue
			}
			last := eng.GetLastIntent()
			mark := "✓"
			if !ok {
				mark = "✗"
			}
			if laneless[step.Action] {
				fmt.Fprintf(w, "%3d. %s %s -> %s\n", last.IntentNumber, mark, step.Action, last.Outcome)
			} else {
				fmt.Fprintf(w, "%3d. %s %s r%d l%d -> %s\n", last.IntentNumber, mark, step.Action, step.Rotation, step.Lane, last.Outcome)
			}
		}
	}
	return succeeded, nil
}
