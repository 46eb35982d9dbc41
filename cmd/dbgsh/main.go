package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dbgsh/internal/bootstrap"
	"dbgsh/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var stateDir string

	root := &cobra.Command{
		Use:           "dbgsh",
		Short:         "Interactive debugger shell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&stateDir, "state-dir", defaultStateDir(), "state directory")

	root.AddCommand(newRunCmd(&stateDir))
	root.AddCommand(newTUICmd(&stateDir))
	root.AddCommand(newExecCmd(&stateDir))
	root.AddCommand(newInterpretersCmd(&stateDir))
	root.AddCommand(newHistoryCmd(&stateDir))
	root.AddCommand(newPluginCmd(&stateDir))
	return root
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dbgsh"
	}
	return filepath.Join(home, ".dbgsh")
}

func loadApp(ctx context.Context, stateDir string) (*bootstrap.App, error) {
	cfg, err := config.New(stateDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg)
}

func newRunCmd(stateDir *string) *cobra.Command {
	var interpreter string
	run := &cobra.Command{
		Use:   "run",
		Short: "Run an interactive debugger session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *stateDir)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			kind := app.Config.Interpreter
			if interpreter != "" {
				kind = interpreter
			}
			return app.RunConsole(ctx, kind)
		},
	}
	run.Flags().StringVarP(&interpreter, "interpreter", "i", "", "top-level interpreter kind (default from config)")
	return run
}

func newTUICmd(stateDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the full-screen debugger UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *stateDir)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			return app.RunTUI(ctx)
		},
	}
}

func newExecCmd(stateDir *string) *cobra.Command {
	var interpreter string
	exec := &cobra.Command{
		Use:   "exec <command>...",
		Short: "Execute debugger commands non-interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *stateDir)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			kind := app.Config.Interpreter
			if interpreter != "" {
				kind = interpreter
			}
			return app.RunBatch(ctx, kind, args)
		},
	}
	exec.Flags().StringVarP(&interpreter, "interpreter", "i", "", "interpreter kind to execute under")
	return exec
}

func newInterpretersCmd(stateDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "interpreters",
		Short: "List registered interpreter kinds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *stateDir)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			kinds, err := app.InterpCLI.Kinds(ctx)
			if err != nil {
				return err
			}
			for _, kind := range kinds {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}
}

func newHistoryCmd(stateDir *string) *cobra.Command {
	var limit int
	var sessionID string
	history := &cobra.Command{
		Use:   "history",
		Short: "Show recorded command history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *stateDir)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			entries, err := app.CommandCLI.History(ctx, sessionID, limit)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					entry.At.Format("2006-01-02T15:04:05Z07:00"), entry.SessionID, entry.Interp, entry.Command)
			}
			return nil
		},
	}
	history.Flags().IntVarP(&limit, "limit", "n", 20, "max entries to show, newest first")
	history.Flags().StringVar(&sessionID, "session", "", "restrict to one session id")
	return history
}

func newPluginCmd(stateDir *string) *cobra.Command {
	plugin := &cobra.Command{Use: "plugins", Short: "UI plugin inventory"}

	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed UI plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *stateDir)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			manifests, err := app.Plugins.List(ctx)
			if err != nil {
				return err
			}
			if len(manifests) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins installed")
				return nil
			}
			for _, m := range manifests {
				state := "disabled"
				if m.Enabled {
					state = "enabled"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", m.Name, m.Version, state, m.Binary)
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate installed UI plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *stateDir)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			results, err := app.Plugins.Doctor(ctx)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins installed")
				return nil
			}
			failures := 0
			for _, r := range results {
				status := "ok"
				if r.Error != "" {
					status = "FAIL: " + r.Error
					failures++
				}
				checks := []string{}
				if r.BinaryReachable {
					checks = append(checks, "binary")
				}
				if r.ChecksumValid {
					checks = append(checks, "checksum")
				}
				if r.LifecycleOK {
					checks = append(checks, "lifecycle")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t[%s]\t%s\n", r.Name, strings.Join(checks, ","), status)
			}
			if failures > 0 {
				return fmt.Errorf("%d plugin(s) failed validation", failures)
			}
			return nil
		},
	})

	return plugin
}
