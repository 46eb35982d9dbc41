// Package bootstrap wires the interpreter controller, the execution engine,
// the command dispatcher and the registered front-end kinds into one running
// application.
package bootstrap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"dbgsh/internal/interps/console"
	"dbgsh/internal/interps/extension"
	"dbgsh/internal/interps/mi"
	"dbgsh/internal/interps/tui"
	commandinadapter "dbgsh/internal/modules/command/adapter/in"
	commandoutadapter "dbgsh/internal/modules/command/adapter/out"
	commandservice "dbgsh/internal/modules/command/service"
	commandusecase "dbgsh/internal/modules/command/usecase"
	enginedomain "dbgsh/internal/modules/engine/domain"
	engineservice "dbgsh/internal/modules/engine/service"
	interpinadapter "dbgsh/internal/modules/interp/adapter/in"
	interpdomain "dbgsh/internal/modules/interp/domain"
	interpdto "dbgsh/internal/modules/interp/dto"
	interpservice "dbgsh/internal/modules/interp/service"
	interpusecase "dbgsh/internal/modules/interp/usecase"
	"dbgsh/internal/platform/clock"
	"dbgsh/internal/platform/config"
	"dbgsh/internal/platform/id"
	"dbgsh/internal/platform/logx"
)

type App struct {
	Config     config.Config
	Log        hclog.Logger
	InterpCLI  interpinadapter.CLIHandler
	CommandCLI commandinadapter.CLIHandler
	Plugins    *extension.Manager

	history io.Closer
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logx.New("dbgsh", cfg.LogLevel, os.Stderr)

	registry := interpdomain.NewRegistry()
	controller := interpservice.NewInterpService(registry, id.RandomHex{}, log.Named("interp"))
	interactor := interpusecase.NewInteractor(controller)

	engine := engineservice.NewEngine(interactor, enginedomain.DefaultScript())

	history, err := commandoutadapter.NewSQLiteHistoryStore(cfg.HistoryDBPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	dispatcher := commandservice.NewDispatcher(
		interactor, engine, history,
		clock.SystemClock{}, id.RandomHex{}, log.Named("command"),
	)

	registry.Register(interpdomain.KindConsole, func(name string) interpdomain.Interp {
		return console.New(name, os.Stdout, dispatcher)
	})
	for _, rev := range []struct {
		kind    string
		version int
	}{
		{interpdomain.KindMI2, 2},
		{interpdomain.KindMI3, 3},
		{interpdomain.KindMI4, 4},
		{interpdomain.KindMI, mi.CurrentVersion},
	} {
		version := rev.version
		registry.Register(rev.kind, func(name string) interpdomain.Interp {
			return mi.New(name, version, os.Stdout, dispatcher)
		})
	}
	registry.Register(interpdomain.KindTUI, func(name string) interpdomain.Interp {
		return tui.New(name, dispatcher)
	})

	manifests := extension.NewFileManifestStore(cfg.PluginsDir)
	host := extension.NewHost(log.Named("plugins"))
	if !cfg.DisableExtension {
		if err := extension.RegisterAll(ctx, registry, manifests, host, os.Stdout, log); err != nil {
			return nil, fmt.Errorf("register ui plugins: %w", err)
		}
	}

	closer, _ := history.(io.Closer)
	return &App{
		Config:     cfg,
		Log:        log,
		InterpCLI:  interpinadapter.NewCLIHandler(interactor),
		CommandCLI: commandinadapter.NewCLIHandler(commandusecase.NewInteractor(history)),
		Plugins:    extension.NewManager(manifests, host),
		history:    closer,
	}, nil
}

// RunConsole drives a line-oriented session on stdin until EOF or quit. Any
// registered kind can be the top-level interpreter here; a non-console kind
// simply frames its output differently.
func (a *App) RunConsole(ctx context.Context, topLevelKind string) error {
	sess, err := a.InterpCLI.StartSession(ctx, topLevelKind)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.InterpCLI.CloseSession(ctx, sess.ID); err != nil {
			a.Log.Warn("close session", "session", sess.ID, "error", err)
		}
	}()

	if err := a.applyConfiguredLogging(ctx, sess.ID); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if err := a.InterpCLI.PreCommandLoop(ctx, sess.ID); err != nil {
			return err
		}
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := a.InterpCLI.Exec(ctx, sess.ID, line); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
}

// RunTUI starts a session whose top-level interpreter is the full-screen one
// and blocks in its event loop until the user quits.
func (a *App) RunTUI(ctx context.Context) error {
	sess, err := a.InterpCLI.StartSession(ctx, interpdomain.KindTUI)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.InterpCLI.CloseSession(ctx, sess.ID); err != nil {
			a.Log.Warn("close session", "session", sess.ID, "error", err)
		}
	}()
	if err := a.applyConfiguredLogging(ctx, sess.ID); err != nil {
		return err
	}
	return a.InterpCLI.PreCommandLoop(ctx, sess.ID)
}

// RunBatch executes commands non-interactively through a fresh session.
func (a *App) RunBatch(ctx context.Context, topLevelKind string, commands []string) error {
	sess, err := a.InterpCLI.StartSession(ctx, topLevelKind)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.InterpCLI.CloseSession(ctx, sess.ID); err != nil {
			a.Log.Warn("close session", "session", sess.ID, "error", err)
		}
	}()
	for _, command := range commands {
		if err := a.InterpCLI.Exec(ctx, sess.ID, command); err != nil {
			return err
		}
	}
	return nil
}

// applyConfiguredLogging turns on session logging when config.yaml asks for a
// logfile, the same path "set logging on" takes at the prompt.
func (a *App) applyConfiguredLogging(ctx context.Context, sessionID string) error {
	if a.Config.LogFile == "" {
		return nil
	}
	return a.InterpCLI.SetLogging(ctx, sessionID, interpdto.LogInput{
		Enabled:       true,
		Path:          a.Config.LogFile,
		Redirect:      a.Config.LoggingRedirect,
		DebugRedirect: a.Config.DebugRedirect,
	})
}

// Shutdown releases process-wide resources: the history database and any
// plugin processes go-plugin is managing.
func (a *App) Shutdown() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.Log.Warn("close history store", "error", err)
		}
	}
	plugin.CleanupClients()
}
