package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophauth.AccountService"

const (
	MethodRegister  = "Register"
	MethodLogin     = "Login"
	MethodRefresh   = "Refresh"
	MethodMe        = "Me"
	MethodUpdateMe  = "UpdateMe"
	MethodDeleteMe  = "DeleteMe"
	MethodListUsers = "ListUsers"
)

// FullMethod returns the wire name of a method, e.g. "/gophauth.AccountService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AccountServiceServer is the server API of gophauth.AccountService.
// Requests and responses are google.protobuf.Struct values whose fields
// follow the JSON shapes of package dto.
type AccountServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Me(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateMe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteMe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(AccountServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AccountServiceServer), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AccountServiceDesc describes gophauth.AccountService for grpc.Server.RegisterService.
var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc(MethodRegister, AccountServiceServer.Register),
		methodDesc(MethodLogin, AccountServiceServer.Login),
		methodDesc(MethodRefresh, AccountServiceServer.Refresh),
		methodDesc(MethodMe, AccountServiceServer.Me),
		methodDesc(MethodUpdateMe, AccountServiceServer.UpdateMe),
		methodDesc(MethodDeleteMe, AccountServiceServer.DeleteMe),
		methodDesc(MethodListUsers, AccountServiceServer.ListUsers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/account_service",
}

// Client calls gophauth.AccountService over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with in and returns the decoded response.
func (c *Client) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
