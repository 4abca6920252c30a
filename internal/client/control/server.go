// Package control is the local control API of the device daemon: a gRPC
// service used by the CLI and a websocket feed of progress events.
package control

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/service"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/logging"
	pb "github.com/dmitrijs2005/corral/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Scope is the token scope accepted by the control API.
const Scope = "control"

// Backend is what the control API drives; *service.Service implements it.
type Backend interface {
	Author(ctx context.Context, path, mime string) (*models.Object, error)
	Ingest(ctx context.Context, obj *models.Object) error
	Start(ctx context.Context, objectID string) (*coordinator.Task, error)
	Fetch(ctx context.Context, objectID string) (coordinator.Result, error)
	Task(ctx context.Context, objectID string) (*coordinator.Task, error)
	Cancel(ctx context.Context, objectID string) error
	Tasks() []*coordinator.Task
	Upload(ctx context.Context, objectID string, recipients []identity.Descriptor) (*models.Object, error)
	Delete(ctx context.Context, objectID string) error
}

var _ Backend = (*service.Service)(nil)

var _ pb.ControlServer = (*GRPCServer)(nil)

type GRPCServer struct {
	pb.UnimplementedControlServer
	address   string
	backend   Backend
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(address string, backend Backend, secretKey string, l logging.Logger) *GRPCServer {
	if l == nil {
		l = logging.Nop()
	}
	return &GRPCServer{
		address:   address,
		backend:   backend,
		logger:    l.With("module", "control"),
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with the token interceptors installed.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	pb.RegisterControlServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping control server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting control server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// toStatus maps domain errors to gRPC codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrGone):
		return status.Error(codes.FailedPrecondition, err.Error())
	case common.IsCancelled(err):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, common.ErrTicketDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrAllChannelsFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, service.ErrInvalidObject):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
