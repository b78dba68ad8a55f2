package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/errors"
)

var (
	callSocketFlag  string
	callTimeoutFlag time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call <channel> <method> [json-args]",
	Short: "Send one request to a running daemon",
	Long: `Send a bridge request and print the result, exactly as a host would.

Examples:
  trayd call system_info getAllStats
  trayd call system_info getTopProcesses '{"metric":"ram","limit":3}'
  trayd call menu_bar_helper setMenuBarItems @items.json`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) == 3 {
			raw = args[2]
		}
		callArgs, err := parseCallArgs(raw, os.ReadFile)
		if err != nil {
			return err
		}
		return callCommand(commandContext(cmd), cmd.OutOrStdout(), args[0], args[1], callArgs)
	},
}

var listenCmd = &cobra.Command{
	Use:   "listen <key_events|mouse_events>",
	Short: "Print a daemon input stream until interrupted",
	Long: `Start a stream on a running daemon and print one JSON value per item.

Examples:
  trayd listen key_events`,
	ValidArgs: []string{bridge.StreamKeyEvents, bridge.StreamMouseEvents},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()
		out := json.NewEncoder(cmd.OutOrStdout())
		return newClient().Listen(ctx, args[0], func(data any) {
			_ = out.Encode(data)
		})
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print events a running daemon sends to hosts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()
		w := cmd.OutOrStdout()
		return newClient().Events(ctx, func(m bridge.Message) {
			printEvent(w, m)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{callCmd, listenCmd, eventsCmd} {
		c.Flags().StringVar(&callSocketFlag, "socket", "", "bridge socket path (default from config)")
		rootCmd.AddCommand(c)
	}
	callCmd.Flags().DurationVar(&callTimeoutFlag, "timeout", 10*time.Second, "request timeout")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newClient connects to --socket or the configured socket.
func newClient() *bridge.Client {
	socket := callSocketFlag
	if socket == "" {
		if cfg, err := loadConfig(); err == nil {
			socket = cfg.Bridge.Socket
		}
	}
	return bridge.NewClient(socket)
}

// parseCallArgs decodes a JSON object given inline or as @file.
func parseCallArgs(raw string, readFile func(string) ([]byte, error)) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if name, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := readFile(name)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrInvalidArgs, "Cannot read "+name, "")
		}
		data = b
	}
	var args map[string]any
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrInvalidArgs,
			"Arguments must be a JSON object",
			`Quote the object, e.g. '{"itemId":"cpu"}'`)
	}
	return args, nil
}

func callCommand(ctx context.Context, w io.Writer, channel, method string, args map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeoutFlag)
	defer cancel()

	result, err := newClient().Call(ctx, channel, method, args)
	if err != nil {
		return err
	}
	if machineMode {
		return WriteJSONSuccess(w, result)
	}
	return writeIndented(w, result)
}

func writeIndented(w io.Writer, raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func printEvent(w io.Writer, m bridge.Message) {
	args, err := json.Marshal(m.Args)
	if err != nil || m.Args == nil {
		args = []byte("{}")
	}
	fmt.Fprintf(w, "%s %s %s\n", m.Channel, m.Event, args)
}
