package server

import (
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/joshp123/dfuhost/internal/observability"
)

// GRPCServer wraps a gRPC server and listener.
type GRPCServer struct {
	Server   *grpc.Server
	Listener net.Listener
}

// NewGRPCServer listens on addr and logs every unary call through logger.
func NewGRPCServer(addr string, logger *observability.Logger) (*GRPCServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return newGRPCServer(ln, logger), nil
}

func newGRPCServer(ln net.Listener, logger *observability.Logger) *GRPCServer {
	s := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger)))
	reflection.Register(s)
	return &GRPCServer{Server: s, Listener: ln}
}

// Addr reports the bound address, which differs from the configured one for port 0.
func (s *GRPCServer) Addr() string {
	return s.Listener.Addr().String()
}

// Serve returns nil once Stop has been called.
func (s *GRPCServer) Serve() error {
	if err := s.Server.Serve(s.Listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop drains in-flight calls, such as running firmware updates.
func (s *GRPCServer) Stop() {
	s.Server.GracefulStop()
}
