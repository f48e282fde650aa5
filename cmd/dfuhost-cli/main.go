package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fullstorydev/grpcurl"
	"github.com/jhump/protoreflect/grpcreflect"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joshp123/dfuhost/internal/config"
	"github.com/joshp123/dfuhost/internal/router"
)

const (
	dialTimeout  = 10 * time.Second
	queryTimeout = 10 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	addr := resolveAddr()
	dialCtx, cancelDial := context.WithTimeout(context.Background(), dialTimeout)
	conn, err := grpcurl.BlockingDial(dialCtx, "tcp", addr, insecure.NewCredentials())
	cancelDial()
	if err != nil {
		fatal("dial", err)
	}
	defer conn.Close()

	switch os.Args[1] {
	case "plugins":
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		pluginsCmd(ctx, conn, os.Args[2:])
	case "invoke":
		invokeCmd(conn, os.Args[2:])
	case "services":
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		servicesCmd(ctx, conn)
	default:
		usage()
		os.Exit(2)
	}
}

func pluginsCmd(ctx context.Context, conn *grpc.ClientConn, args []string) {
	flags := flag.NewFlagSet("plugins", flag.ExitOnError)
	asJSON := flags.Bool("json", false, "print JSON")
	_ = flags.Parse(args)
	remaining := flags.Args()
	if len(remaining) < 1 {
		usage()
		os.Exit(2)
	}

	switch remaining[0] {
	case "list":
		listPlugins(ctx, conn, outputMode{json: *asJSON})
	case "describe":
		if len(remaining) < 2 {
			fatal("describe", fmt.Errorf("missing plugin id"))
		}
		describePlugin(ctx, conn, remaining[1], outputMode{json: *asJSON})
	default:
		usage()
		os.Exit(2)
	}
}

func listPlugins(ctx context.Context, conn *grpc.ClientConn, out outputMode) {
	resp := &structpb.Struct{}
	if err := conn.Invoke(ctx, router.ListPluginsMethod, &emptypb.Empty{}, resp); err != nil {
		fatal("list plugins", err)
	}

	if out.json {
		out.printJSON(resp.AsMap())
		return
	}
	out.table(pluginRows(resp))
}

func describePlugin(ctx context.Context, conn *grpc.ClientConn, id string, out outputMode) {
	req, err := router.NewDescribeRequest(id)
	if err != nil {
		fatal("describe plugin", err)
	}
	resp := &structpb.Struct{}
	if err := conn.Invoke(ctx, router.DescribePluginMethod, req, resp); err != nil {
		fatal("describe plugin", err)
	}

	plugin := resp.GetFields()["plugin"].GetStructValue()
	if plugin == nil {
		fmt.Println("not found")
		return
	}
	if out.json {
		out.printJSON(plugin.AsMap())
		return
	}
	fmt.Print(describeText(plugin))
}

// invokeCmd sets no deadline unless --timeout is given.
func invokeCmd(conn *grpc.ClientConn, args []string) {
	flags := flag.NewFlagSet("invoke", flag.ExitOnError)
	data := flags.String("data", "{}", "JSON arguments object")
	timeout := flags.Duration("timeout", 0, "call deadline (0 waits indefinitely)")
	_ = flags.Parse(args)
	remaining := flags.Args()
	if len(remaining) < 2 {
		fatal("invoke", fmt.Errorf("usage: invoke <channel> <method> --data '{}'"))
	}

	var arguments map[string]any
	if err := json.Unmarshal([]byte(*data), &arguments); err != nil {
		fatal("parse arguments", err)
	}

	req, err := router.NewInvokeRequest(remaining[0], remaining[1], arguments)
	if err != nil {
		fatal("invoke", err)
	}
	ctx, cancel := invokeContext(context.Background(), *timeout)
	defer cancel()

	resp := &structpb.Value{}
	if err := conn.Invoke(ctx, router.InvokeMethodMethod, req, resp); err != nil {
		fatal("invoke", err)
	}
	outputMode{json: true}.printJSON(resp.AsInterface())
}

func invokeContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func servicesCmd(ctx context.Context, conn *grpc.ClientConn) {
	client := grpcreflect.NewClientAuto(ctx, conn)
	defer client.Reset()

	services, err := grpcurl.ListServices(grpcurl.DescriptorSourceFromServer(ctx, client))
	if err != nil {
		fatal("list services", err)
	}

	for _, service := range services {
		fmt.Println(service)
	}
}

func resolveAddr() string {
	if value := os.Getenv("DFUHOST_GRPC_ADDR"); value != "" {
		return value
	}
	for _, path := range configSearchPaths() {
		if addr := addrFromConfig(path); addr != "" {
			return dialable(addr)
		}
	}
	return "localhost:9000"
}

func configSearchPaths() []string {
	paths := []string{config.DefaultPath}
	if value := os.Getenv("DFUHOST_CONFIG"); value != "" {
		paths = append([]string{value}, paths...)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "dfuhost", "config.yaml"))
	}
	return paths
}

func addrFromConfig(path string) string {
	cfg, err := config.Load(path)
	if err != nil || cfg == nil {
		return ""
	}
	return cfg.Core.GRPCAddr
}

// dialable turns a wildcard listen address into one a client can dial.
func dialable(addr string) string {
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func usage() {
	fmt.Println("dfuhost-cli <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  plugins [--json] list")
	fmt.Println("  plugins [--json] describe <plugin_id>")
	fmt.Println("  invoke [--timeout 0s] [--data '{}'] <channel> <method>")
	fmt.Println("  services")
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
	os.Exit(1)
}
