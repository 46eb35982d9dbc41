package extension

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	extrpc "dbgsh/internal/interps/extension/rpc"
)

const (
	startTimeout = 3 * time.Second
	callTimeout  = 5 * time.Second
)

// Host starts plugin binaries and hands out rpc clients. Connections are
// per-interpreter and live until the plugin client is killed; go-plugin's
// managed-client cleanup reaps processes at shutdown.
type Host struct {
	log hclog.Logger
}

func NewHost(log hclog.Logger) *Host {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Host{log: log}
}

func (h *Host) connect(manifest Manifest) (extrpc.UIPluginClient, func(), error) {
	if err := manifest.checksumMatches(); err != nil {
		return nil, nil, err
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  extrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          extrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           h.log.Named(manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(extrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(extrpc.UIPluginClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

// CheckLifecycle starts the plugin, asks for its metadata and tears it down
// again. Doctor uses it to validate installations.
func (h *Host) CheckLifecycle(ctx context.Context, manifest Manifest) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	if meta.Name != manifest.Name {
		return fmt.Errorf("plugin identifies as %q, manifest says %q", meta.Name, manifest.Name)
	}
	return nil
}

// DoctorResult is one plugin's installation health.
type DoctorResult struct {
	Name            string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}

// Manager exposes plugin inventory operations to the CLI.
type Manager struct {
	store *FileManifestStore
	host  *Host
}

func NewManager(store *FileManifestStore, host *Host) *Manager {
	return &Manager{store: store, host: host}
}

func (m *Manager) List(ctx context.Context) ([]Manifest, error) {
	return m.store.Load(ctx)
}

func (m *Manager) Doctor(ctx context.Context) ([]DoctorResult, error) {
	manifests, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]DoctorResult, 0, len(manifests))
	for _, manifest := range manifests {
		result := DoctorResult{Name: manifest.Name}
		if _, err := os.Stat(manifest.Binary); err != nil {
			result.Error = fmt.Sprintf("binary does not exist: %s", manifest.Binary)
			results = append(results, result)
			continue
		}
		result.BinaryReachable = true
		if err := manifest.checksumMatches(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.ChecksumValid = true
		if manifest.Enabled {
			if err := m.host.CheckLifecycle(ctx, manifest); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}
