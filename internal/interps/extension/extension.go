// Package extension hosts out-of-process GUI front-ends. Each enabled plugin
// manifest registers an interpreter kind "ext:<name>"; the instance forwards
// lifecycle calls, command execution and engine events to the plugin binary
// over grpc.
package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	extrpc "dbgsh/internal/interps/extension/rpc"
	"dbgsh/internal/modules/interp/domain"
)

// RegisterAll registers one interpreter kind per enabled manifest.
func RegisterAll(ctx context.Context, reg *domain.Registry, store *FileManifestStore, host *Host, out io.Writer, log hclog.Logger) error {
	manifests, err := store.Load(ctx)
	if err != nil {
		return err
	}
	for _, manifest := range manifests {
		if !manifest.Enabled {
			continue
		}
		manifest := manifest
		reg.Register(domain.KindExtensionPrefix+manifest.Name, func(name string) domain.Interp {
			return newInterp(name, manifest, host, out, log)
		})
	}
	return nil
}

type Interp struct {
	domain.Base
	manifest Manifest
	host     *Host
	log      hclog.Logger
	sink     *extSink

	mu       sync.Mutex
	client   extrpc.UIPluginClient
	closeFn  func()
	topLevel bool
}

func newInterp(name string, manifest Manifest, host *Host, out io.Writer, log hclog.Logger) *Interp {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Interp{
		Base:     domain.NewBase(name),
		manifest: manifest,
		host:     host,
		log:      log.Named("ext").Named(manifest.Name),
		sink:     &extSink{out: out},
	}
}

// Init starts the plugin process and verifies it answers as the manifest
// promises. The connection stays up for the interpreter's life.
func (e *Interp) Init(topLevel bool) error {
	client, closeFn, err := e.host.connect(e.manifest)
	if err != nil {
		return fmt.Errorf("start ui plugin %s: %w", e.manifest.Name, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	meta, err := client.GetMetadata(ctx)
	if err != nil {
		closeFn()
		return fmt.Errorf("ui plugin %s metadata: %w", e.manifest.Name, err)
	}
	if meta.Name != e.manifest.Name {
		closeFn()
		return fmt.Errorf("ui plugin identifies as %q, manifest says %q", meta.Name, e.manifest.Name)
	}
	e.mu.Lock()
	e.client = client
	e.closeFn = closeFn
	e.topLevel = topLevel
	e.mu.Unlock()
	return nil
}

func (e *Interp) Resume() {
	e.setActive(true)
}

func (e *Interp) Suspend() {
	e.setActive(false)
}

func (e *Interp) setActive(active bool) {
	client := e.clientRef()
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	req := &extrpc.ActiveRequest{Active: active, TopLevel: e.isTopLevel()}
	if err := client.SetActive(ctx, req); err != nil {
		e.log.Warn("plugin set-active failed", "active", active, "error", err)
	}
}

func (e *Interp) Exec(ctx context.Context, command string) error {
	client := e.clientRef()
	if client == nil {
		return fmt.Errorf("ui plugin %s is not initialized", e.manifest.Name)
	}
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	resp, err := client.Exec(callCtx, &extrpc.ExecRequest{Command: command})
	if err != nil {
		return fmt.Errorf("plugin exec: %w", err)
	}
	if resp.Output != "" {
		e.sink.Print(resp.Output)
	}
	if resp.Error != "" {
		return fmt.Errorf("plugin exec: %s", resp.Error)
	}
	return nil
}

func (e *Interp) Sink() domain.Sink { return e.sink }

func (e *Interp) SetLogging(cfg domain.LogConfig) error {
	return e.sink.setLogging(cfg)
}

func (e *Interp) clientRef() extrpc.UIPluginClient {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client
}

func (e *Interp) isTopLevel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.topLevel
}

// notify forwards one engine event. Notification hooks are one-way; a plugin
// that cannot be reached only costs a log line.
func (e *Interp) notify(kind string, payload any) {
	client := e.clientRef()
	if client == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		e.log.Warn("encode plugin event", "event", kind, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := client.Notify(ctx, &extrpc.Event{Kind: kind, PayloadJSON: string(raw)}); err != nil {
		e.log.Warn("deliver plugin event", "event", kind, "error", err)
	}
}

func (e *Interp) OnSignalReceived(sig domain.Signal) {
	e.notify("signal-received", sig)
}

func (e *Interp) OnSignalExited(sig domain.Signal) {
	e.notify("signal-exited", sig)
}

func (e *Interp) OnNormalStop(stop domain.StopInfo) {
	e.notify("normal-stop", stop)
}

func (e *Interp) OnExited(status int) {
	e.notify("exited", map[string]int{"status": status})
}

func (e *Interp) OnNoHistory() {
	e.notify("no-history", struct{}{})
}

func (e *Interp) OnSyncExecutionDone() {
	e.notify("sync-execution-done", struct{}{})
}

func (e *Interp) OnCommandError() {
	e.notify("command-error", struct{}{})
}

func (e *Interp) OnUserSelectedContextChanged(sel domain.UserSelection) {
	e.notify("user-selected-context-changed", map[string]uint8{"selection": uint8(sel)})
}

func (e *Interp) OnNewThread(t domain.Thread) {
	e.notify("new-thread", t)
}

func (e *Interp) OnThreadExited(t domain.Thread, silent bool) {
	e.notify("thread-exited", map[string]any{"thread": t, "silent": silent})
}

func (e *Interp) OnInferiorAdded(inf domain.Inferior) {
	e.notify("inferior-added", inf)
}

func (e *Interp) OnInferiorAppeared(inf domain.Inferior) {
	e.notify("inferior-appeared", inf)
}

type extSink struct {
	mu       sync.Mutex
	out      io.Writer
	logfile  io.WriteCloser
	redirect bool
}

func (s *extSink) writer() io.Writer {
	if s.logfile != nil {
		if s.redirect {
			return s.logfile
		}
		return io.MultiWriter(s.out, s.logfile)
	}
	return s.out
}

func (s *extSink) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.writer(), text)
}

func (s *extSink) Error(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.writer(), "error: "+text)
}

func (s *extSink) Result(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.writer(), "%s = %s\n", key, value)
}

func (s *extSink) setLogging(cfg domain.LogConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.File == nil {
		if s.logfile != nil {
			if err := s.logfile.Close(); err != nil {
				return fmt.Errorf("close logfile: %w", err)
			}
		}
		s.logfile = nil
		s.redirect = false
		return nil
	}
	s.logfile = cfg.File
	s.redirect = cfg.Redirect
	return nil
}
