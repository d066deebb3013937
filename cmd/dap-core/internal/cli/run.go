package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kory-oss/dap-core/handlers"
	"github.com/kory-oss/dap-core/requests"
)

func newRunCommand() *cobra.Command {
	var (
		adapter         string
		adapterArgs     []string
		cwd             string
		debugConnection bool
		program         string
		programArgs     []string
		stopOnEntry     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn an adapter, run the initialize/launch handshake, and drive it to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if adapter == "" {
				return fmt.Errorf("--adapter is required")
			}
			if debugConnection {
				logLevel = "debug"
			}
			log := resolveLogger()

			ctx := context.Background()
			launchCfg := requests.LaunchConfig{
				Request:     "launch",
				Program:     program,
				Args:        programArgs,
				Cwd:         cwd,
				StopOnEntry: stopOnEntry,
			}
			sess, err := requests.BeginSession(ctx, requests.AdapterSpec{
				Argv: append([]string{adapter}, adapterArgs...),
				Cwd:  cwd,
			}, requests.ClientInfo{
				ClientID:        "dap-core",
				ClientName:      "dap-core",
				LinesStartAt1:   true,
				ColumnsStartAt1: true,
			}, launchCfg, log)
			if err != nil {
				return fmt.Errorf("begin session: %w", err)
			}
			defer sess.Conn.Close()

			for !sess.Conn.State().IsTerminal() {
				if _, err := handlers.Tick(sess, 50*time.Millisecond); err != nil {
					return fmt.Errorf("driver tick: %w", err)
				}
				if sess.Conn.Terminated() {
					return requests.EndSession(sess, requests.EndViaDisconnect, false)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&adapter, "adapter", "", "path to the adapter executable (required)")
	cmd.Flags().StringArrayVar(&adapterArgs, "adapter-arg", nil, "argument to pass to the adapter process; may be repeated")
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory for the adapter and the launched program")
	cmd.Flags().BoolVar(&debugConnection, "debug_connection", false, "raise the log level to debug; frames exchanged with the adapter are not logged")
	cmd.Flags().StringVar(&program, "program", "", "program to launch, passed through to the adapter's launch arguments")
	cmd.Flags().BoolVar(&stopOnEntry, "stop-on-entry", false, "request the adapter stop at the debuggee's entry point")

	cmd.Flags().SetInterspersed(false)
	originalRunE := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		programArgs = args
		return originalRunE(cmd, args)
	}

	return cmd
}
