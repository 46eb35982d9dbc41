package usecase_test

import (
	"context"
	"testing"

	"dbgsh/internal/modules/interp/domain"
	"dbgsh/internal/modules/interp/dto"
	"dbgsh/internal/modules/interp/service"
	"dbgsh/internal/modules/interp/usecase"
	"dbgsh/internal/platform/id"
	"dbgsh/internal/platform/logx"
)

type nopSink struct{}

func (nopSink) Print(string)          {}
func (nopSink) Error(string)          {}
func (nopSink) Result(string, string) {}

type stubInterp struct {
	domain.Base
}

func (s *stubInterp) Resume()  {}
func (s *stubInterp) Suspend() {}

func (s *stubInterp) Exec(context.Context, string) error { return nil }

func (s *stubInterp) Sink() domain.Sink { return nopSink{} }

func (s *stubInterp) SetLogging(domain.LogConfig) error { return nil }

func newInteractor() *usecase.Interactor {
	reg := domain.NewRegistry()
	for _, kind := range []string{"console", "mi4"} {
		reg.Register(kind, func(name string) domain.Interp {
			return &stubInterp{Base: domain.NewBase(name)}
		})
	}
	return usecase.NewInteractor(service.NewInterpService(reg, &id.Sequential{}, logx.Discard()))
}

func TestStartSessionDescribesState(t *testing.T) {
	t.Parallel()
	uc := newInteractor()

	info, err := uc.StartSession(context.Background(), "console")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if info.TopLevel != "console" || info.Current != "console" {
		t.Fatalf("session info = %+v", info)
	}
	if info.ID == "" {
		t.Fatalf("session id must be assigned")
	}
}

func TestSetCurrentReportsPrevious(t *testing.T) {
	t.Parallel()
	uc := newInteractor()
	ctx := context.Background()

	info, err := uc.StartSession(ctx, "console")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	out, err := uc.SetCurrent(ctx, info.ID, "mi4")
	if err != nil {
		t.Fatalf("set current: %v", err)
	}
	if out.Previous != "console" || out.Current != "mi4" {
		t.Fatalf("switch output = %+v", out)
	}
	isCurrent, err := uc.CurrentNamed(ctx, info.ID, "mi4")
	if err != nil {
		t.Fatalf("current named: %v", err)
	}
	if !isCurrent {
		t.Fatalf("mi4 should be current")
	}
}

func TestListReportsPerInstanceState(t *testing.T) {
	t.Parallel()
	uc := newInteractor()
	ctx := context.Background()

	info, err := uc.StartSession(ctx, "console")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := uc.SetCurrent(ctx, info.ID, "mi4"); err != nil {
		t.Fatalf("set current: %v", err)
	}

	interps, err := uc.List(ctx, info.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(interps) != 2 {
		t.Fatalf("expected 2 instances, got %+v", interps)
	}
	byName := map[string]struct {
		current, topLevel, initialized bool
	}{}
	for _, in := range interps {
		byName[in.Name] = struct {
			current, topLevel, initialized bool
		}{in.Current, in.TopLevel, in.Initialized}
	}
	if got := byName["console"]; got.current || !got.topLevel || !got.initialized {
		t.Fatalf("console state = %+v", got)
	}
	if got := byName["mi4"]; !got.current || got.topLevel || !got.initialized {
		t.Fatalf("mi4 state = %+v", got)
	}
}

func TestCloseSessionForgetsID(t *testing.T) {
	t.Parallel()
	uc := newInteractor()
	ctx := context.Background()

	info, err := uc.StartSession(ctx, "console")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := uc.CloseSession(ctx, info.ID); err != nil {
		t.Fatalf("close session: %v", err)
	}
	if _, err := uc.Describe(ctx, info.ID); err == nil {
		t.Fatalf("closed session must be unreachable")
	}
}

func TestSetLoggingRequiresPath(t *testing.T) {
	t.Parallel()
	uc := newInteractor()
	ctx := context.Background()

	info, err := uc.StartSession(ctx, "console")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := uc.SetLogging(ctx, info.ID, dto.LogInput{Enabled: true}); err == nil {
		t.Fatalf("expected error for enabled logging without a path")
	}
}
