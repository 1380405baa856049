package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/spotcast-live/spotcast/internal/application"
)

// SessionInternalService is the service-to-service surface: the media plane
// calls ValidateRoomAccess on every room join, and the scheduler can force a
// reclamation pass with TriggerSweep.
type SessionInternalService interface {
	ValidateRoomAccess(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TriggerSweep(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type SessionInternalServer struct {
	service *application.Service
}

func NewSessionInternalServer(service *application.Service) *SessionInternalServer {
	return &SessionInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc SessionInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "spotcast.session.v1.SessionInternalService",
		HandlerType: (*SessionInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidateRoomAccess",
				Handler:    validateRoomAccessHandler(svc),
			},
			{
				MethodName: "TriggerSweep",
				Handler:    triggerSweepHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "spotcast/proto/session/v1/session_internal.proto",
	}, svc)
}

func (s *SessionInternalServer) ValidateRoomAccess(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	roomName := fields["room_name"].GetStringValue()
	if roomName == "" {
		return nil, status.Error(codes.InvalidArgument, "missing room_name")
	}
	rawIdentity := fields["identity"].GetStringValue()
	identity, err := uuid.Parse(rawIdentity)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid identity")
	}

	access, err := s.service.ValidateRoomAccess(ctx, roomName, identity)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "validate room access: %v", err)
	}
	return buildAccessResponse(access)
}

func (s *SessionInternalServer) TriggerSweep(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	report, err := s.service.SweepIdleSessions(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "sweep: %v", err)
	}
	resp, err := structpb.NewStruct(map[string]any{
		"skipped":   report.Skipped,
		"scanned":   float64(report.Scanned),
		"reclaimed": float64(report.Reclaimed),
		"failed":    float64(report.Failed),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func buildAccessResponse(access application.RoomAccess) (*structpb.Struct, error) {
	payload := map[string]any{
		"allowed":     access.Allowed,
		"role":        string(access.Role),
		"can_publish": access.CanPublish,
	}
	if access.SessionID != uuid.Nil {
		payload["session_id"] = access.SessionID.String()
	}
	resp, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func validateRoomAccessHandler(svc SessionInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ValidateRoomAccess(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/spotcast.session.v1.SessionInternalService/ValidateRoomAccess",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ValidateRoomAccess(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func triggerSweepHandler(svc SessionInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &emptypb.Empty{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.TriggerSweep(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/spotcast.session.v1.SessionInternalService/TriggerSweep",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*emptypb.Empty)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.TriggerSweep(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
