package control

import (
	"context"

	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/identity"
	pb "github.com/dmitrijs2005/corral/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func taskEvent(t *coordinator.Task) *pb.TaskEvent {
	return eventToProto(coordinator.NewEvent(t, t.Last()))
}

func (s *GRPCServer) Start(ctx context.Context, req *pb.ObjectRef) (*pb.TaskEvent, error) {
	t, err := s.backend.Start(ctx, req.GetObjectId())
	if err != nil {
		return nil, toStatus(err)
	}
	return taskEvent(t), nil
}

func (s *GRPCServer) Fetch(ctx context.Context, req *pb.ObjectRef) (*pb.FetchResponse, error) {
	res, err := s.backend.Fetch(ctx, req.GetObjectId())
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.FetchResponse{Path: res.Path, Channel: res.Channel.String()}, nil
}

func (s *GRPCServer) Cancel(ctx context.Context, req *pb.ObjectRef) (*pb.Empty, error) {
	if err := s.backend.Cancel(ctx, req.GetObjectId()); err != nil {
		return nil, toStatus(err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) List(ctx context.Context, _ *pb.Empty) (*pb.ListTasksResponse, error) {
	var tasks []*pb.TaskEvent
	for _, t := range s.backend.Tasks() {
		tasks = append(tasks, taskEvent(t))
	}
	return &pb.ListTasksResponse{Tasks: tasks}, nil
}

// Watch streams progress of the object's live task until its terminal
// event.
func (s *GRPCServer) Watch(req *pb.ObjectRef, stream grpc.ServerStreamingServer[pb.TaskEvent]) error {
	ctx := stream.Context()
	t, err := s.backend.Task(ctx, req.GetObjectId())
	if err != nil {
		return toStatus(err)
	}
	for p := range t.Watch(ctx) {
		if err := stream.Send(eventToProto(coordinator.NewEvent(t, p))); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (s *GRPCServer) Author(ctx context.Context, req *pb.AuthorRequest) (*pb.Object, error) {
	if req.GetPath() == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	obj, err := s.backend.Author(ctx, req.GetPath(), req.GetMime())
	if err != nil {
		return nil, toStatus(err)
	}
	return objectToProto(obj), nil
}

func (s *GRPCServer) Ingest(ctx context.Context, req *pb.Object) (*pb.Empty, error) {
	if err := s.backend.Ingest(ctx, objectFromProto(req)); err != nil {
		return nil, toStatus(err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) Upload(ctx context.Context, req *pb.UploadRequest) (*pb.Object, error) {
	if req.GetObjectId() == "" {
		return nil, status.Error(codes.InvalidArgument, "object_id is required")
	}
	recipients := make([]identity.Descriptor, 0, len(req.GetRecipients()))
	for _, r := range req.GetRecipients() {
		d, err := identity.ParseDescriptor(r)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		recipients = append(recipients, d)
	}
	obj, err := s.backend.Upload(ctx, req.GetObjectId(), recipients)
	if err != nil {
		return nil, toStatus(err)
	}
	return objectToProto(obj), nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *pb.ObjectRef) (*pb.Empty, error) {
	if err := s.backend.Delete(ctx, req.GetObjectId()); err != nil {
		return nil, toStatus(err)
	}
	return &pb.Empty{}, nil
}
