package router

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joshp123/dfuhost/internal/core"
)

type echoPlugin struct{}

func (echoPlugin) ID() string { return "com.example.Echo" }

func (echoPlugin) Manifest() core.Manifest {
	return core.Manifest{
		PluginID:    "com.example.Echo",
		DisplayName: "Echo",
		Version:     "1.0.0",
		Channels:    []string{"com.example.echo/method"},
	}
}

func (echoPlugin) Health() core.HealthStatus { return core.HealthDegraded }

func (echoPlugin) HealthMessage() string { return "no speaker" }

func (echoPlugin) RegisterWith(r *core.Registrar) error {
	r.SetMethodHandler("com.example.echo/method", func(_ context.Context, call core.MethodCall) (any, error) {
		if call.Method != "echo" {
			return nil, core.ErrNotImplemented
		}
		return call.Arguments["text"], nil
	})
	return nil
}

func dialRegistry(t *testing.T) *grpc.ClientConn {
	t.Helper()

	plugin := echoPlugin{}
	reg := core.NewRegistry()
	if err := plugin.RegisterWith(reg.RegistrarFor(plugin.ID())); err != nil {
		t.Fatalf("RegisterWith error: %v", err)
	}

	ln := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterPlugins(server, reg, []core.Plugin{plugin})
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return ln.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestListPlugins(t *testing.T) {
	conn := dialRegistry(t)

	resp := &structpb.Struct{}
	if err := conn.Invoke(context.Background(), ListPluginsMethod, &emptypb.Empty{}, resp); err != nil {
		t.Fatalf("ListPlugins error: %v", err)
	}

	plugins := resp.GetFields()["plugins"].GetListValue().GetValues()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}
	got := plugins[0].GetStructValue().AsMap()
	if got["key"] != "com.example.Echo" || got["display_name"] != "Echo" || got["version"] != "1.0.0" || got["status"] != "DEGRADED" {
		t.Fatalf("unexpected plugin entry: %v", got)
	}

	channels := resp.GetFields()["channels"].GetListValue().AsSlice()
	if len(channels) != 1 || channels[0] != "com.example.echo/method" {
		t.Fatalf("unexpected channels: %v", channels)
	}
}

func TestInvokeMethod(t *testing.T) {
	conn := dialRegistry(t)

	req, err := NewInvokeRequest("com.example.echo/method", "echo", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("NewInvokeRequest error: %v", err)
	}
	resp := &structpb.Value{}
	if err := conn.Invoke(context.Background(), InvokeMethodMethod, req, resp); err != nil {
		t.Fatalf("InvokeMethod error: %v", err)
	}
	if resp.GetStringValue() != "hi" {
		t.Fatalf("unexpected result: %v", resp)
	}
}

func TestInvokeMethodStatusCodes(t *testing.T) {
	conn := dialRegistry(t)

	cases := []struct {
		channel string
		method  string
		code    codes.Code
	}{
		{"com.example.missing/method", "echo", codes.NotFound},
		{"com.example.echo/method", "shout", codes.Unimplemented},
		{"", "echo", codes.InvalidArgument},
	}
	for _, tc := range cases {
		req, err := NewInvokeRequest(tc.channel, tc.method, nil)
		if err != nil {
			t.Fatalf("NewInvokeRequest error: %v", err)
		}
		err = conn.Invoke(context.Background(), InvokeMethodMethod, req, &structpb.Value{})
		if status.Code(err) != tc.code {
			t.Fatalf("%s/%s: expected %s, got %v", tc.channel, tc.method, tc.code, err)
		}
	}
}

func TestDescribePlugin(t *testing.T) {
	conn := dialRegistry(t)

	req, err := NewDescribeRequest("com.example.Echo")
	if err != nil {
		t.Fatalf("NewDescribeRequest error: %v", err)
	}
	resp := &structpb.Struct{}
	if err := conn.Invoke(context.Background(), DescribePluginMethod, req, resp); err != nil {
		t.Fatalf("DescribePlugin error: %v", err)
	}

	plugin := resp.GetFields()["plugin"].GetStructValue().AsMap()
	if plugin["plugin_id"] != "com.example.Echo" || plugin["status"] != "DEGRADED" || plugin["health_message"] != "no speaker" {
		t.Fatalf("unexpected descriptor: %v", plugin)
	}
	if plugin["registered"] != true || plugin["published"] != false {
		t.Fatalf("unexpected registration flags: %v", plugin)
	}
}

func TestDescribePluginUnknown(t *testing.T) {
	conn := dialRegistry(t)

	req, err := NewDescribeRequest("com.example.Missing")
	if err != nil {
		t.Fatalf("NewDescribeRequest error: %v", err)
	}
	resp := &structpb.Struct{}
	if err := conn.Invoke(context.Background(), DescribePluginMethod, req, resp); err != nil {
		t.Fatalf("DescribePlugin error: %v", err)
	}
	if _, ok := resp.GetFields()["plugin"]; ok {
		t.Fatalf("expected empty response, got %v", resp)
	}

	err = conn.Invoke(context.Background(), DescribePluginMethod, &structpb.Struct{}, &structpb.Struct{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument without plugin_id, got %v", err)
	}
}

func TestInvokeMethodRejectsNonObjectArguments(t *testing.T) {
	conn := dialRegistry(t)

	for _, args := range []any{[]any{"hi"}, "hi", 3.0} {
		req, err := structpb.NewStruct(map[string]any{
			"channel":   "com.example.echo/method",
			"method":    "echo",
			"arguments": args,
		})
		if err != nil {
			t.Fatalf("NewStruct error: %v", err)
		}
		err = conn.Invoke(context.Background(), InvokeMethodMethod, req, &structpb.Value{})
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("arguments %v: expected InvalidArgument, got %v", args, err)
		}
	}

	req, err := structpb.NewStruct(map[string]any{
		"channel":   "com.example.echo/method",
		"method":    "echo",
		"arguments": nil,
	})
	if err != nil {
		t.Fatalf("NewStruct error: %v", err)
	}
	resp := &structpb.Value{}
	if err := conn.Invoke(context.Background(), InvokeMethodMethod, req, resp); err != nil {
		t.Fatalf("null arguments should be accepted, got %v", err)
	}
}
