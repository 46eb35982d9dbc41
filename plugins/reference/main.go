// The reference plugin is a minimal out-of-process front-end used to validate
// the ui-plugin contract. It echoes commands and keeps a running count of the
// engine events it observed.
package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-plugin"

	extrpc "dbgsh/internal/interps/extension/rpc"
)

type server struct {
	mu     sync.Mutex
	active bool
	events map[string]int
}

func (s *server) GetMetadata(_ context.Context, _ *extrpc.Empty) (*extrpc.Metadata, error) {
	return &extrpc.Metadata{
		Name:     "reference",
		Version:  "1.0.0",
		Protocol: 1,
	}, nil
}

func (s *server) SetActive(_ context.Context, in *extrpc.ActiveRequest) (*extrpc.Empty, error) {
	s.mu.Lock()
	s.active = in.Active
	s.mu.Unlock()
	return &extrpc.Empty{}, nil
}

func (s *server) Exec(_ context.Context, in *extrpc.ExecRequest) (*extrpc.ExecResponse, error) {
	command := strings.TrimSpace(in.Command)
	switch {
	case command == "":
		return &extrpc.ExecResponse{}, nil
	case command == "events":
		s.mu.Lock()
		lines := make([]string, 0, len(s.events))
		for kind, count := range s.events {
			lines = append(lines, fmt.Sprintf("%s: %d", kind, count))
		}
		s.mu.Unlock()
		return &extrpc.ExecResponse{Output: strings.Join(lines, "\n")}, nil
	case strings.HasPrefix(command, "echo "):
		return &extrpc.ExecResponse{Output: strings.TrimPrefix(command, "echo ")}, nil
	default:
		return &extrpc.ExecResponse{Error: fmt.Sprintf("unknown command: %s", command)}, nil
	}
}

func (s *server) Notify(_ context.Context, in *extrpc.Event) (*extrpc.Empty, error) {
	s.mu.Lock()
	if s.events == nil {
		s.events = map[string]int{}
	}
	s.events[in.Kind]++
	s.mu.Unlock()
	return &extrpc.Empty{}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: extrpc.HandshakeConfig,
		Plugins:         extrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
