// Command watch follows a tracker session and redraws its board every time
// the server pushes an update.
//
//	watch --url http://localhost:8080 <session-id>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
	wshub "github.com/wricardo/mcp-training/rotationwalls/transport/websocket"
)

const clearScreen = "\033[H\033[2J"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Redraw a session's board as it changes",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Tracker server URL"},
			&cli.BoolFlag{Name: "clear", Usage: "Clear the terminal before each redraw"},
			&cli.IntFlag{Name: "count", Usage: "Exit after this many updates (0 runs until interrupted)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one session id")
			}
			w := &watcher{
				baseURL: strings.TrimSuffix(cmd.String("url"), "/"),
				out:     out,
				clear:   cmd.Bool("clear"),
			}
			return w.run(ctx, cmd.Args().First(), int(cmd.Int("count")))
		},
	}
}

type watcher struct {
	baseURL string
	out     io.Writer
	clear   bool
}

// run draws the current board, then one board per pushed update
func (w *watcher) run(ctx context.Context, sessionID string, count int) error {
	board, err := w.fetchBoard(ctx, sessionID)
	if err != nil {
		return err
	}
	w.draw(sessionID, "current", board)

	conn, err := w.dial(ctx, sessionID)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for seen := 0; count == 0 || seen < count; {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read update: %w", err)
		}

		var msg wshub.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			fmt.Fprintf(w.out, "skipping malformed update: %v\n", err)
			continue
		}
		if msg.Board == nil {
			continue
		}
		w.draw(sessionID, msg.Event, msg.Board)
		seen++
	}
	return nil
}

func (w *watcher) draw(sessionID, event string, board *engine.BoardView) {
	if w.clear {
		fmt.Fprint(w.out, clearScreen)
	}
	fmt.Fprintf(w.out, "== %s (%s) %s\n", sessionID, board.ConfigName, event)
	if board.Message != "" {
		fmt.Fprintf(w.out, "%s\n", board.Message)
	}
	fmt.Fprintln(w.out)
	fmt.Fprint(w.out, board.Render())
}

func (w *watcher) fetchBoard(ctx context.Context, sessionID string) (*engine.BoardView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.baseURL+"/api/sessions/"+url.PathEscape(sessionID)+"/board", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch board: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("fetch board: %s: %s", resp.Status, apiErr.Error)
	}

	var board engine.BoardView
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	return &board, nil
}

func (w *watcher) dial(ctx context.Context, sessionID string) (*websocket.Conn, error) {
	u, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	default:
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			return nil, fmt.Errorf("connect %s: %s", u.Redacted(), resp.Status)
		}
		return nil, fmt.Errorf("connect %s: %w", u.Redacted(), err)
	}
	return conn, nil
}
