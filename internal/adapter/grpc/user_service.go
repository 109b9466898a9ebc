package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "user-openapi-service/internal/domain/user"
	"user-openapi-service/internal/usecase/user"
	pkgerrors "user-openapi-service/pkg/errors"
	"user-openapi-service/pkg/logger"
	"user-openapi-service/pkg/security"
)

// Service and method names of the user API.
const (
	ServiceName          = "user.v1.UserService"
	GetUserFullMethod    = "/" + ServiceName + "/GetUser"
	CreateUserFullMethod = "/" + ServiceName + "/CreateUser"
)

// Metadata keys read and written by the user service.
const (
	IdempotencyKeyMetadata = "idempotency-key"
	ReplayedMetadata       = "idempotent-replayed"
)

// UserService is the server API of user.v1.UserService.
// Users travel as google.protobuf.Struct keyed by the configured field names.
type UserService interface {
	GetUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// UserServiceDesc describes user.v1.UserService for grpc.Server registration.
var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetUser", Handler: getUserHandler},
		{MethodName: "CreateUser", Handler: createUserHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterUserServiceServer registers srv on s.
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserService) {
	s.RegisterService(&UserServiceDesc, srv)
}

func getUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserService).GetUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetUserFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UserService).GetUser(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func createUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserService).CreateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateUserFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UserService).CreateUser(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// UserServiceServer implements the gRPC user service
type UserServiceServer struct {
	uc    user.Usecase
	names domain.FieldNames
	log   *zap.Logger
}

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.Usecase, style domain.FieldStyle, log *zap.Logger) *UserServiceServer {
	return &UserServiceServer{
		uc:    uc,
		names: style.Names(),
		log:   log,
	}
}

// GetUser handles gRPC GetUser request
func (s *UserServiceServer) GetUser(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	u, err := s.uc.GetUser(ctx, user.GetUserRequest{ID: req.GetValue()})
	if err != nil {
		return nil, pkgerrors.ToGRPC(err)
	}
	return s.toStruct(u), nil
}

// CreateUser handles gRPC CreateUser request
func (s *UserServiceServer) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := s.fromStruct(req)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("invalid create user payload", zap.Error(err))
		return nil, pkgerrors.ToGRPC(err)
	}
	in.Transport = user.TransportGRPC

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if keys := md.Get(IdempotencyKeyMetadata); len(keys) > 0 {
			key, err := security.ValidateIdempotencyKey(keys[0])
			if err != nil {
				return nil, pkgerrors.ToGRPC(pkgerrors.NewValidationError(IdempotencyKeyMetadata, err.Error()))
			}
			in.IdempotencyKey = key
		}
	}

	u, err := s.uc.CreateUser(ctx, in)
	if err != nil {
		return nil, pkgerrors.ToGRPC(err)
	}

	if u.Replayed {
		if err := grpc.SetHeader(ctx, metadata.Pairs(ReplayedMetadata, "true")); err != nil {
			logger.WithContext(ctx, s.log).Warn("failed to set replayed header", zap.String("id", u.ID), zap.Error(err))
		}
	}
	return s.toStruct(u), nil
}

// fromStruct reads name and age. Absent fields stay nil and are reported by the use case.
func (s *UserServiceServer) fromStruct(st *structpb.Struct) (user.CreateUserRequest, error) {
	var (
		in    user.CreateUserRequest
		verrs pkgerrors.ValidationErrors
	)

	fields := st.GetFields()
	if v, ok := fields[s.names.Name]; ok {
		sv, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			verrs.Fields = append(verrs.Fields, *pkgerrors.NewValidationError(s.names.Name, "must be a string"))
		} else {
			name := sv.StringValue
			in.Name = &name
		}
	}
	if v, ok := fields[s.names.Age]; ok {
		nv, isNumber := v.GetKind().(*structpb.Value_NumberValue)
		if !isNumber {
			verrs.Fields = append(verrs.Fields, *pkgerrors.NewValidationError(s.names.Age, "must be a number"))
		} else {
			age := nv.NumberValue
			in.Age = &age
		}
	}

	if len(verrs.Fields) > 0 {
		return in, &verrs
	}
	return in, nil
}

func (s *UserServiceServer) toStruct(u *user.UserResponse) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			s.names.ID:   structpb.NewStringValue(u.ID),
			s.names.Name: structpb.NewStringValue(u.Name),
			s.names.Age:  structpb.NewNumberValue(u.Age),
		},
	}
}

// UserServiceClient calls user.v1.UserService.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient creates a client on cc.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

// GetUser calls GetUser.
func (c *UserServiceClient) GetUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetUserFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser calls CreateUser.
func (c *UserServiceClient) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CreateUserFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
