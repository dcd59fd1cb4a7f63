// Package config loads, caches and saves rulesets for the wall tracker.
//
// Rulesets are JSON or YAML files in a config directory. A file is addressed by
// its name without extension (its config_id); "standard" is the default and the
// built-in engine.DefaultConfig is used when no file is present.
//
// Fields a file leaves out (geometry, caps, colours, the welcome and wipe
// messages) are filled from the standard ruleset before validation, so a YAML
// variant can be as short as:
//
//	name: Rollback
//	description: Carry-over is undone when breaks are reversed
//	rollback_carry_over: true
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ruleset, err := manager.LoadConfig("rollback")
//	infos, err := manager.ListConfigs()
//
// SaveConfig always writes JSON.
package config
