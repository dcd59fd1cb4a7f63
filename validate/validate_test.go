package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

func writeRuleset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write ruleset: %v", err)
	}
	return path
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeRuleset(t, t.TempDir(), "standard.json", `{
		"name": "Test Config",
		"description": "Test ruleset",
		"lanes": 6,
		"rotations": 6,
		"max_walls": 6,
		"wall_cap": 11,
		"break_cap": 7
	}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "standard.json" {
		t.Errorf("Expected file name standard.json, got %s", result.File)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
	if len(result.Errors) == 0 || !strings.HasPrefix(result.Errors[0], "✓ Test Config") {
		t.Errorf("Expected summary line, got %v", result.Errors)
	}
}

func TestValidateConfig_YAMLRollback(t *testing.T) {
	path := writeRuleset(t, t.TempDir(), "rollback.yaml", `
name: Rollback
description: Undo carry-over
rollback_carry_over: true
`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	found := false
	for _, info := range result.Errors {
		if strings.Contains(info, "rolls back") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected rollback note, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeRuleset(t, t.TempDir(), "broken.json", `{"name": "Broken",`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config for malformed JSON")
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if len(result.Errors) == 0 || !contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_UnknownField(t *testing.T) {
	dir := t.TempDir()

	for name, content := range map[string]string{
		"typo.json": `{"name": "Typo", "description": "d", "break_limit": 3}`,
		"typo.yaml": "name: Typo\ndescription: d\nbreak_limit: 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			result := validateConfig(writeRuleset(t, dir, name, content))
			if result.Valid {
				t.Fatal("Expected unknown field to be rejected")
			}
			if !contains(strings.Join(result.Errors, "\n"), "break_limit") {
				t.Errorf("Expected error naming break_limit, got %v", result.Errors)
			}
		})
	}
}

func TestValidateConfig_EngineRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad colour",
			content: `{"name": "C", "description": "d", "colors": {"N": "blue"}}`,
			want:    "colors['N']",
		},
		{
			name:    "wall cap above capacity",
			content: `{"name": "W", "description": "d", "lanes": 2, "max_walls": 2, "wall_cap": 5}`,
			want:    "wall_cap",
		},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writeRuleset(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".json", tt.content))
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !contains(strings.Join(result.Errors, "\n"), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestAnalyzeRules(t *testing.T) {
	rules := engine.DefaultConfig()
	if warnings := analyzeRules(rules); len(warnings) != 0 {
		t.Errorf("Expected no warnings for default rules, got %v", warnings)
	}

	rules.Rotations = 1
	rules.BreakCap = rules.WallCap
	warnings := analyzeRules(rules)
	if len(warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %v", warnings)
	}
	if !contains(warnings[0], "one rotation") {
		t.Errorf("Unexpected warning %q", warnings[0])
	}
	if !contains(warnings[1], "break_cap") {
		t.Errorf("Unexpected warning %q", warnings[1])
	}
}

func TestRulesetFiles(t *testing.T) {
	dir := t.TempDir()
	writeRuleset(t, dir, "b.yaml", "")
	writeRuleset(t, dir, "a.json", "")
	writeRuleset(t, dir, "c.yml", "")
	writeRuleset(t, dir, "notes.txt", "")
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := rulesetFiles(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if strings.Join(names, ",") != "a.json,b.yaml,c.yml" {
		t.Errorf("Unexpected files %v", names)
	}
}

func TestReport_Strict(t *testing.T) {
	results := []ValidationResult{
		{File: "a.json", Valid: true, Errors: []string{"✓ ok"}, Warnings: []string{"careful"}},
	}

	var out bytes.Buffer
	if !report(&out, results, false) {
		t.Error("Expected warnings to pass without strict")
	}
	if !contains(out.String(), "⚠️  careful") {
		t.Errorf("Expected warning in output, got %s", out.String())
	}

	if report(&bytes.Buffer{}, results, true) {
		t.Error("Expected warnings to fail in strict mode")
	}
}

func TestCommand_ShippedRulesets(t *testing.T) {
	var out bytes.Buffer
	if err := newCommand(&out).Run(context.Background(), []string{"validate", "--strict", "../configs"}); err != nil {
		t.Fatalf("Expected shipped rulesets to validate, got %v\n%s", err, out.String())
	}
	for _, name := range []string{"standard.json", "compact.yaml", "rollback.yaml"} {
		if !contains(out.String(), name) {
			t.Errorf("Expected %s in report", name)
		}
	}
}

func TestCommand_Failures(t *testing.T) {
	dir := t.TempDir()
	if err := newCommand(&bytes.Buffer{}).Run(context.Background(), []string{"validate", dir}); err == nil {
		t.Error("Expected error for empty directory")
	}

	writeRuleset(t, dir, "bad.json", `{"name": ""}`)
	var out bytes.Buffer
	if err := newCommand(&out).Run(context.Background(), []string{"validate", dir}); err == nil {
		t.Error("Expected error for invalid ruleset")
	}
	if !contains(out.String(), "❌ INVALID") {
		t.Errorf("Expected INVALID in output, got %s", out.String())
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
