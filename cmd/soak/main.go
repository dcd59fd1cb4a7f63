// Command soak drives a running tracker through its HTTP API and checks the
// board limits after every batch.
//
//	soak --url http://localhost:8080 --strategy random --batches 200 --seed 7
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "soak: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := newCommand(logger).Run(ctx, os.Args); err != nil {
		logger.Error("soak failed", zap.Error(err))
		os.Exit(1)
	}
}

// options configures one soak run
type options struct {
	URL       string
	ConfigID  string
	Strategy  string
	Batches   int
	BatchSize int
	Seed      uint64
	Keep      bool
}

// report summarises a finished run
type report struct {
	SessionID  string
	Batches    int
	Intents    int
	Succeeded  int
	Carries    int
	Wipes      int
	Violations []string
}

var errViolations = errors.New("board limits violated")

func newCommand(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "soak",
		Usage: "Exercise a running tracker and check board limits",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Tracker server URL"},
			&cli.StringFlag{Name: "config", Usage: "Ruleset id (server default when empty)"},
			&cli.StringFlag{Name: "strategy", Value: "systematic", Usage: "systematic or random"},
			&cli.IntFlag{Name: "batches", Value: 100, Usage: "Maximum batches to send"},
			&cli.IntFlag{Name: "batch-size", Value: engine.MaxBulkIntents, Usage: "Intents per batch"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "Seed for the random strategy"},
			&cli.BoolFlag{Name: "keep", Usage: "Leave the session on the server afterwards"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := options{
				URL:       cmd.String("url"),
				ConfigID:  cmd.String("config"),
				Strategy:  cmd.String("strategy"),
				Batches:   int(cmd.Int("batches")),
				BatchSize: int(cmd.Int("batch-size")),
				Seed:      cmd.Uint64("seed"),
				Keep:      cmd.Bool("keep"),
			}
			rep, err := run(ctx, opts, logger)
			if err != nil {
				return err
			}
			logger.Info("soak finished",
				zap.String("session", rep.SessionID),
				zap.Int("batches", rep.Batches),
				zap.Int("intents", rep.Intents),
				zap.Int("succeeded", rep.Succeeded),
				zap.Int("carries", rep.Carries),
				zap.Int("wipes", rep.Wipes))
			if len(rep.Violations) > 0 {
				for _, v := range rep.Violations {
					logger.Error("violation", zap.String("detail", v))
				}
				return errViolations
			}
			return nil
		},
	}
}

// run creates a session and feeds it batches until the strategy runs dry,
// the batch budget is spent or a limit is violated.
func run(ctx context.Context, opts options, logger *zap.Logger) (*report, error) {
	if opts.BatchSize < 1 || opts.BatchSize > engine.MaxBulkIntents {
		return nil, fmt.Errorf("batch size must be between 1 and %d", engine.MaxBulkIntents)
	}

	client := NewClient(opts.URL)
	info, err := client.CreateSession(ctx, opts.ConfigID)
	if err != nil {
		return nil, err
	}
	logger.Info("session created", zap.String("session", info.ID), zap.String("ruleset", info.ConfigName))
	if !opts.Keep {
		defer func() {
			if err := client.Close(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to delete session", zap.Error(err))
			}
		}()
	}

	var strategy Strategy
	switch opts.Strategy {
	case "systematic":
		strategy = NewSystematicStrategy(info.GameConfig)
	case "random":
		strategy = NewRandomStrategy(info.GameConfig, opts.Seed)
	default:
		return nil, fmt.Errorf("unknown strategy %q", opts.Strategy)
	}

	rep := &report{SessionID: info.ID}
	for rep.Batches < opts.Batches {
		batch := strategy.Next(opts.BatchSize)
		if len(batch) == 0 {
			break
		}

		result, err := client.BulkIntent(ctx, batch)
		if err != nil {
			return rep, err
		}
		rep.Batches++
		rep.Intents += result.IntentsExecuted
		for _, step := range result.Steps {
			if step.Success {
				rep.Succeeded++
			}
			switch step.Outcome {
			case engine.OutcomeCarriedForward:
				rep.Carries++
			case engine.OutcomeWipe:
				rep.Wipes++
			}
		}
		if !result.Success {
			return rep, fmt.Errorf("batch %d stopped: %s", rep.Batches, result.StoppedReason)
		}

		logger.Debug("batch applied",
			zap.Int("batch", rep.Batches),
			zap.Int("executed", result.IntentsExecuted),
			zap.Bool("wipe", result.Wipe))

		if v := checkBoard(result.Board); len(v) > 0 {
			rep.Violations = v
			return rep, nil
		}
	}
	return rep, nil
}
