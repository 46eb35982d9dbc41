package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"dbgsh/internal/modules/command/domain"
	commandout "dbgsh/internal/modules/command/port/out"
	interpdomain "dbgsh/internal/modules/interp/domain"
	interpdto "dbgsh/internal/modules/interp/dto"
	"dbgsh/internal/platform/clock"
	apperrors "dbgsh/internal/platform/errors"
	"dbgsh/internal/platform/id"
)

const defaultHistoryLimit = 10

// Dispatcher is the shared command path behind every interpreter's Exec. It
// resolves the owning session from the interpreter the line arrived on,
// records the line in history, and routes it: execution-control commands go
// to the engine, interpreter-exec runs a command under a temporarily-current
// interpreter, everything else renders through the arriving interpreter's
// sink.
type Dispatcher struct {
	interps commandout.InterpControl
	engine  commandout.Engine
	history commandout.HistoryStore
	clock   clock.Clock
	idGen   id.Generator
	log     hclog.Logger
}

func NewDispatcher(
	interps commandout.InterpControl,
	engine commandout.Engine,
	history commandout.HistoryStore,
	clk clock.Clock,
	idGen id.Generator,
	log hclog.Logger,
) *Dispatcher {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Dispatcher{interps: interps, engine: engine, history: history, clock: clk, idGen: idGen, log: log}
}

// Run implements interpdomain.Runner.
func (d *Dispatcher) Run(ctx context.Context, via interpdomain.Interp, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	sessionID, err := d.interps.SessionIDOf(via)
	if err != nil {
		return err
	}
	d.record(ctx, sessionID, via.Name(), line)
	if err := d.dispatch(ctx, via, sessionID, line); err != nil {
		d.interps.NotifyCommandError()
		return err
	}
	return nil
}

func (d *Dispatcher) record(ctx context.Context, sessionID, interpName, line string) {
	if d.history == nil {
		return
	}
	entry := domain.HistoryEntry{
		ID:        d.idGen.New(),
		SessionID: sessionID,
		Interp:    interpName,
		Command:   line,
		At:        d.clock.Now(),
	}
	if err := d.history.Append(ctx, entry); err != nil {
		d.log.Warn("record command history", "session", sessionID, "error", err)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, via interpdomain.Interp, sessionID, line string) error {
	name, rest := domain.Split(line)
	switch name {
	case "echo":
		via.Sink().Print(rest)
		return nil
	case "help":
		return d.help(via)
	case "history":
		return d.showHistory(ctx, via, sessionID, rest)
	case "interpreter-exec":
		kind, command := domain.Split(rest)
		if kind == "" || command == "" {
			return fmt.Errorf("%w: usage: interpreter-exec <kind> <command>", apperrors.ErrInvalidInput)
		}
		return d.interps.ExecWith(ctx, sessionID, kind, command)
	case "set":
		return d.set(ctx, sessionID, rest)
	case "run", "start":
		return d.engine.Run(ctx, rest)
	case "continue", "c":
		return d.engine.Continue(ctx)
	case "step", "s":
		return d.engine.Step(ctx)
	case "reverse-continue", "rc":
		return d.engine.ReverseContinue(ctx)
	case "interrupt":
		return d.engine.Interrupt(ctx)
	case "kill":
		return d.engine.Kill(ctx)
	case "thread":
		globalID, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("%w: usage: thread <global-id>", apperrors.ErrInvalidInput)
		}
		return d.engine.SelectThread(ctx, globalID)
	case "inferior":
		num, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("%w: usage: inferior <num>", apperrors.ErrInvalidInput)
		}
		return d.engine.SelectInferior(ctx, num)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownCommand, name)
	}
}

func (d *Dispatcher) help(via interpdomain.Interp) error {
	sink := via.Sink()
	for _, usage := range []string{
		"echo <text>",
		"history [n]",
		"interpreter-exec <kind> <command>",
		"set logging on <file> | set logging off",
		"run [executable]",
		"continue | step | reverse-continue | kill",
		"thread <global-id> | inferior <num>",
	} {
		sink.Print(usage)
	}
	return nil
}

func (d *Dispatcher) showHistory(ctx context.Context, via interpdomain.Interp, sessionID, rest string) error {
	limit := defaultHistoryLimit
	if rest != "" {
		parsed, err := strconv.Atoi(rest)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("%w: usage: history [n]", apperrors.ErrInvalidInput)
		}
		limit = parsed
	}
	if d.history == nil {
		return apperrors.ErrNoHistory
	}
	entries, err := d.history.Recent(ctx, sessionID, limit)
	if err != nil {
		return err
	}
	sink := via.Sink()
	// Recent is newest-first; present oldest-first like a shell would.
	for i := len(entries) - 1; i >= 0; i-- {
		sink.Print(fmt.Sprintf("%4d  %s", len(entries)-i, entries[i].Command))
	}
	return nil
}

func (d *Dispatcher) set(ctx context.Context, sessionID, rest string) error {
	topic, args := domain.Split(rest)
	if topic != "logging" {
		return fmt.Errorf("%w: set %s", apperrors.ErrUnknownCommand, topic)
	}
	mode, arg := domain.Split(args)
	switch mode {
	case "on":
		if arg == "" {
			return fmt.Errorf("%w: usage: set logging on <file>", apperrors.ErrInvalidInput)
		}
		return d.interps.SetLogging(ctx, sessionID, interpdto.LogInput{Enabled: true, Path: arg})
	case "off":
		return d.interps.SetLogging(ctx, sessionID, interpdto.LogInput{})
	default:
		return fmt.Errorf("%w: usage: set logging on <file> | set logging off", apperrors.ErrInvalidInput)
	}
}
