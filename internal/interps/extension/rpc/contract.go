// Package rpc carries the wire contract between dbgsh and out-of-process UI
// plugins. Requests and responses travel as JSON over grpc so plugin authors
// do not need a protobuf toolchain.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "dbgsh"
	serviceName       = "dbgsh.interp.v1.UIPlugin"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodSetActive   = "/" + serviceName + "/SetActive"
	methodExec        = "/" + serviceName + "/Exec"
	methodNotify      = "/" + serviceName + "/Notify"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DBGSH_PLUGIN",
	MagicCookieValue: "dbgsh",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Protocol int32  `json:"protocol"`
}

// ActiveRequest flips the plugin between resumed and suspended. TopLevel is
// set on the activation that follows first initialization.
type ActiveRequest struct {
	Active   bool `json:"active"`
	TopLevel bool `json:"top_level"`
}

type ExecRequest struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
}

type ExecResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Event is one engine notification. Kind names mirror the controller's
// fan-out entry points ("signal-received", "normal-stop", ...); the payload
// is the event's argument struct as JSON.
type Event struct {
	Kind        string `json:"kind"`
	PayloadJSON string `json:"payload_json"`
}

type UIPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	SetActive(ctx context.Context, in *ActiveRequest) (*Empty, error)
	Exec(ctx context.Context, in *ExecRequest) (*ExecResponse, error)
	Notify(ctx context.Context, in *Event) (*Empty, error)
}

type UIPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	SetActive(ctx context.Context, in *ActiveRequest) error
	Exec(ctx context.Context, in *ExecRequest) (*ExecResponse, error)
	Notify(ctx context.Context, in *Event) error
}

type uiPluginClient struct {
	conn *grpc.ClientConn
}

func NewUIPluginClient(conn *grpc.ClientConn) UIPluginClient {
	return &uiPluginClient{conn: conn}
}

func (c *uiPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *uiPluginClient) SetActive(ctx context.Context, in *ActiveRequest) error {
	return c.conn.Invoke(ctx, methodSetActive, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func (c *uiPluginClient) Exec(ctx context.Context, in *ExecRequest) (*ExecResponse, error) {
	out := &ExecResponse{}
	if err := c.conn.Invoke(ctx, methodExec, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *uiPluginClient) Notify(ctx context.Context, in *Event) error {
	return c.conn.Invoke(ctx, methodNotify, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func RegisterUIPluginServer(server grpc.ServiceRegistrar, impl UIPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*UIPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
						typed, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, typed)
					})
				},
			},
			{
				MethodName: "SetActive",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ActiveRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.SetActive(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSetActive}
					return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
						typed, ok := req.(*ActiveRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.SetActive(ctx, typed)
					})
				},
			},
			{
				MethodName: "Exec",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ExecRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Exec(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExec}
					return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
						typed, ok := req.(*ExecRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Exec(ctx, typed)
					})
				},
			},
			{
				MethodName: "Notify",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Event{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Notify(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodNotify}
					return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
						typed, ok := req.(*Event)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Notify(ctx, typed)
					})
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/ui-plugin-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl UIPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterUIPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewUIPluginClient(conn), nil
}

func PluginMap(impl UIPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
