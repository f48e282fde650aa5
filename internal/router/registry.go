package router

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joshp123/dfuhost/internal/core"
)

const (
	RegistryServiceName  = "dfuhost.registry.v1.Registry"
	ListPluginsMethod    = "/" + RegistryServiceName + "/ListPlugins"
	DescribePluginMethod = "/" + RegistryServiceName + "/DescribePlugin"
	InvokeMethodMethod   = "/" + RegistryServiceName + "/InvokeMethod"
)

// RegistryServer exposes the host registry to clients.
type RegistryServer interface {
	ListPlugins(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	DescribePlugin(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InvokeMethod(context.Context, *structpb.Struct) (*structpb.Value, error)
}

// RegistryService serves registered keys and method channel calls.
type RegistryService struct {
	registry *core.Registry
	plugins  map[string]core.Plugin
}

func NewRegistryService(reg *core.Registry, plugins []core.Plugin) *RegistryService {
	byID := make(map[string]core.Plugin, len(plugins))
	for _, p := range plugins {
		byID[p.ID()] = p
	}
	return &RegistryService{registry: reg, plugins: byID}
}

// ListPlugins returns every registered key, with manifest details for plugins.
func (r *RegistryService) ListPlugins(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	_ = ctx

	plugins := []any{}
	for _, key := range r.registry.Keys() {
		entry := map[string]any{"key": key}
		if p, ok := r.plugins[key]; ok {
			manifest := p.Manifest()
			entry["display_name"] = manifest.DisplayName
			entry["version"] = manifest.Version
			entry["channels"] = stringsToAny(manifest.Channels)
			entry["status"] = string(p.Health())
		}
		plugins = append(plugins, entry)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"plugins":  plugins,
		"channels": stringsToAny(r.registry.Channels()),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode plugins: %v", err)
	}
	return resp, nil
}

// DescribePlugin expects {plugin_id} and returns {plugin: {...}}, or an
// empty struct when the id is unknown.
func (r *RegistryService) DescribePlugin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx

	id := req.GetFields()["plugin_id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "plugin_id is required")
	}

	p, ok := r.plugins[id]
	if !ok {
		return &structpb.Struct{}, nil
	}

	manifest := p.Manifest()
	_, published := r.registry.ValuePublishedByPlugin(id)
	resp, err := structpb.NewStruct(map[string]any{
		"plugin": map[string]any{
			"plugin_id":      manifest.PluginID,
			"display_name":   manifest.DisplayName,
			"version":        manifest.Version,
			"channels":       stringsToAny(manifest.Channels),
			"status":         string(p.Health()),
			"health_message": p.HealthMessage(),
			"registered":     r.registry.HasPlugin(id),
			"published":      published,
		},
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode plugin: %v", err)
	}
	return resp, nil
}

// InvokeMethod expects {channel, method, arguments} and returns the handler result.
func (r *RegistryService) InvokeMethod(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	fields := req.GetFields()
	channel := fields["channel"].GetStringValue()
	method := fields["method"].GetStringValue()
	if channel == "" || method == "" {
		return nil, status.Error(codes.InvalidArgument, "channel and method are required")
	}

	var args map[string]any
	if v, ok := fields["arguments"]; ok && v != nil {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StructValue:
			args = kind.StructValue.AsMap()
		case *structpb.Value_NullValue, nil:
		default:
			return nil, status.Errorf(codes.InvalidArgument, "arguments must be an object, got %T", kind)
		}
	}

	result, err := r.registry.Invoke(ctx, channel, method, args)
	if err != nil {
		return nil, toStatus(err)
	}

	value, err := structpb.NewValue(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return value, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, core.ErrNoHandler):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, core.ErrNotImplemented):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// RegisterRegistryServer registers srv under RegistryServiceName.
func RegisterRegistryServer(s grpc.ServiceRegistrar, srv RegistryServer) {
	s.RegisterService(&registryServiceDesc, srv)
}

var registryServiceDesc = grpc.ServiceDesc{
	ServiceName: RegistryServiceName,
	HandlerType: (*RegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPlugins", Handler: listPluginsHandler},
		{MethodName: "DescribePlugin", Handler: describePluginHandler},
		{MethodName: "InvokeMethod", Handler: invokeMethodHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dfuhost/registry/v1/registry.proto",
}

func listPluginsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RegistryServer).ListPlugins(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListPluginsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RegistryServer).ListPlugins(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func describePluginHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RegistryServer).DescribePlugin(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DescribePluginMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RegistryServer).DescribePlugin(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func invokeMethodHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RegistryServer).InvokeMethod(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InvokeMethodMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RegistryServer).InvokeMethod(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// NewDescribeRequest builds the DescribePlugin request payload.
func NewDescribeRequest(pluginID string) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{"plugin_id": pluginID})
	if err != nil {
		return nil, fmt.Errorf("encode describe request: %w", err)
	}
	return req, nil
}

// NewInvokeRequest builds the InvokeMethod request payload.
func NewInvokeRequest(channel, method string, args map[string]any) (*structpb.Struct, error) {
	if args == nil {
		args = map[string]any{}
	}
	req, err := structpb.NewStruct(map[string]any{
		"channel":   channel,
		"method":    method,
		"arguments": args,
	})
	if err != nil {
		return nil, fmt.Errorf("encode invoke request: %w", err)
	}
	return req, nil
}
