// Command validate checks every ruleset in a directory. It reports:
//   - parse errors and keys the ruleset schema does not know
//   - anything the engine rejects (dimensions, caps, colours, message templates)
//   - rules that load but can never trigger carry-forward
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/rotationwalls/game/config"
	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateConfig loads and validates a single ruleset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	if err := checkKnownFields(filePath, data); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Unknown field: %v", err))
	}

	rules, err := config.ParseFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if !result.Valid {
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ %s: %d lanes, %d rotations, %d walls per lane", rules.Name, rules.Lanes, rules.Rotations, rules.MaxWalls),
		fmt.Sprintf("✓ Caps: %d walls, %d breaks per rotation", rules.WallCap, rules.BreakCap),
	)
	if rules.RollbackCarryOver {
		result.Errors = append(result.Errors, "✓ Carry-over rolls back when the capping break is reversed")
	}
	result.Warnings = analyzeRules(rules)
	return result
}

// checkKnownFields decodes strictly so misspelled keys are not silently
// replaced by defaults.
func checkKnownFields(filePath string, data []byte) error {
	var rules engine.GameConfig
	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&rules); err != nil && err != io.EOF {
			return err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rules); err != nil {
			return err
		}
	}
	return nil
}

// analyzeRules flags rulesets that load but never carry walls forward
func analyzeRules(rules *engine.GameConfig) []string {
	var warnings []string
	if rules.Rotations == 1 {
		warnings = append(warnings, "Only one rotation: carry-forward has no target")
	}
	if rules.BreakCap >= rules.WallCap {
		warnings = append(warnings, fmt.Sprintf(
			"break_cap %d is not below wall_cap %d: the capping break can leave no survivors to carry",
			rules.BreakCap, rules.WallCap))
	}
	return warnings
}

// rulesetFiles lists the ruleset files of dir in name order
func rulesetFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// report prints every result and returns whether the run passed
func report(w io.Writer, results []ValidationResult, strict bool) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
			if strict {
				allValid = false
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All rulesets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some rulesets have errors")
	}
	return allValid
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate every ruleset in a directory",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "Treat warnings as errors"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}

			files, err := rulesetFiles(dir)
			if err != nil {
				return fmt.Errorf("finding ruleset files: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no rulesets found in %s", dir)
			}

			results := make([]ValidationResult, 0, len(files))
			for _, file := range files {
				results = append(results, validateConfig(file))
			}
			if !report(out, results, cmd.Bool("strict")) {
				return errors.New("validation failed")
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
