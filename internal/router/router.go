package router

import (
	"google.golang.org/grpc"

	"github.com/joshp123/dfuhost/internal/core"
)

// RegisterPlugins registers the registry service on the gRPC server.
func RegisterPlugins(server *grpc.Server, reg *core.Registry, plugins []core.Plugin) {
	RegisterRegistryServer(server, NewRegistryService(reg, plugins))
}
