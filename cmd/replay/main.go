// Command replay applies a YAML intent script to a fresh tracker and prints
// the resulting board.
//
//	replay --config-dir configs scripts/carry.yaml
//
// A script names a ruleset and a list of steps:
//
//	ruleset: standard
//	steps:
//	  - {action: place, rotation: 1, lane: 3, repeat: 2}
//	  - {action: toggle_mark}
//	  - {action: break, rotation: 1, lane: 3}
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rotationwalls/game/config"
	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "Replay an intent script and print the final board",
		ArgsUsage: "<script.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing rulesets"},
			&cli.StringFlag{Name: "ruleset", Usage: "Ruleset to use instead of the one named by the script"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only print the final board"},
			&cli.BoolFlag{Name: "json", Usage: "Print the final board as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one script path")
			}
			script, err := loadScript(cmd.Args().First())
			if err != nil {
				return err
			}
			if name := cmd.String("ruleset"); name != "" {
				script.Ruleset = name
			}

			rules, err := loadRuleset(cmd.String("config-dir"), script.Ruleset)
			if err != nil {
				return err
			}
			eng, err := engine.NewEngine(rules)
			if err != nil {
				return err
			}

			succeeded, err := replay(eng, script, out, cmd.Bool("quiet"))
			if err != nil {
				return err
			}

			board := eng.GetBoardView()
			if cmd.Bool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(board)
			}
			if !cmd.Bool("quiet") {
				fmt.Fprintf(out, "\n%d/%d intents succeeded using %s\n\n", succeeded, len(eng.GetIntentHistory()), rules.Name)
			}
			fmt.Fprint(out, board.Render())
			return nil
		},
	}
}

// loadRuleset resolves name in dir, or the directory default when name is empty
func loadRuleset(dir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}
