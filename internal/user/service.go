package user

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName      = "yummigo.user.v1.Directory"
	getProfileMethod = "/" + serviceName + "/GetProfile"
)

// DirectoryServer is the gRPC surface of the user directory. Messages are
// google.protobuf.Struct values: the request carries {"id"} and the reply
// {"id","name","email","phone","created_at"}.
type DirectoryServer interface {
	GetProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var directoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "GetProfile",
		Handler:    getProfileHandler,
	}},
	Streams:  []grpc.StreamDesc{},
	Metadata: "user/directory",
}

func getProfileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectoryServer).GetProfile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getProfileMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DirectoryServer).GetProfile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Register attaches srv to s.
func Register(s *grpc.Server, srv DirectoryServer) {
	s.RegisterService(&directoryServiceDesc, srv)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the profile named by the "id" field of in.
func (s *Service) GetProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id := in.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		return nil, status.Errorf(codes.Internal, "get error: %v", err)
	}
	out, err := structpb.NewStruct(map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"email":      p.Email,
		"phone":      p.Phone,
		"created_at": p.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode error: %v", err)
	}
	return out, nil
}
