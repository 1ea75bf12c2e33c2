package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const AuthServiceName = "golekaab.Auth"

const (
	Auth_Register_FullMethodName      = "/golekaab.Auth/Register"
	Auth_LoginInitiate_FullMethodName = "/golekaab.Auth/LoginInitiate"
	Auth_LoginComplete_FullMethodName = "/golekaab.Auth/LoginComplete"
	Auth_RefreshToken_FullMethodName  = "/golekaab.Auth/RefreshToken"
	Auth_RevokeToken_FullMethodName   = "/golekaab.Auth/RevokeToken"
)

// AuthServer is the server API of the public authentication service.
type AuthServer interface {
	Register(context.Context, *RegisterRequest) (*User, error)
	LoginInitiate(context.Context, *LoginInitiateRequest) (*LoginInitiateResponse, error)
	LoginComplete(context.Context, *LoginCompleteRequest) (*SessionResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	RevokeToken(context.Context, *RevokeTokenRequest) (*Empty, error)
}

// UnimplementedAuthServer answers every call with codes.Unimplemented.
type UnimplementedAuthServer struct{}

func (UnimplementedAuthServer) Register(context.Context, *RegisterRequest) (*User, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}

func (UnimplementedAuthServer) LoginInitiate(context.Context, *LoginInitiateRequest) (*LoginInitiateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method LoginInitiate not implemented")
}

func (UnimplementedAuthServer) LoginComplete(context.Context, *LoginCompleteRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method LoginComplete not implemented")
}

func (UnimplementedAuthServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}

func (UnimplementedAuthServer) RevokeToken(context.Context, *RevokeTokenRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RevokeToken not implemented")
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&Auth_ServiceDesc, srv)
}

var Auth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler: unaryHandler(Auth_Register_FullMethodName, func(srv any, ctx context.Context, in *RegisterRequest) (*User, error) {
				return srv.(AuthServer).Register(ctx, in)
			}),
		},
		{
			MethodName: "LoginInitiate",
			Handler: unaryHandler(Auth_LoginInitiate_FullMethodName, func(srv any, ctx context.Context, in *LoginInitiateRequest) (*LoginInitiateResponse, error) {
				return srv.(AuthServer).LoginInitiate(ctx, in)
			}),
		},
		{
			MethodName: "LoginComplete",
			Handler: unaryHandler(Auth_LoginComplete_FullMethodName, func(srv any, ctx context.Context, in *LoginCompleteRequest) (*SessionResponse, error) {
				return srv.(AuthServer).LoginComplete(ctx, in)
			}),
		},
		{
			MethodName: "RefreshToken",
			Handler: unaryHandler(Auth_RefreshToken_FullMethodName, func(srv any, ctx context.Context, in *RefreshTokenRequest) (*RefreshTokenResponse, error) {
				return srv.(AuthServer).RefreshToken(ctx, in)
			}),
		},
		{
			MethodName: "RevokeToken",
			Handler: unaryHandler(Auth_RevokeToken_FullMethodName, func(srv any, ctx context.Context, in *RevokeTokenRequest) (*Empty, error) {
				return srv.(AuthServer).RevokeToken(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "golekaab/auth",
}

// AuthClient is the client API of the public authentication service.
type AuthClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*User, error)
	LoginInitiate(ctx context.Context, in *LoginInitiateRequest, opts ...grpc.CallOption) (*LoginInitiateResponse, error)
	LoginComplete(ctx context.Context, in *LoginCompleteRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	RevokeToken(ctx context.Context, in *RevokeTokenRequest, opts ...grpc.CallOption) (*Empty, error)
}

type authClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) AuthClient {
	return &authClient{cc: cc}
}

func (c *authClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, Auth_Register_FullMethodName, in, opts)
}

func (c *authClient) LoginInitiate(ctx context.Context, in *LoginInitiateRequest, opts ...grpc.CallOption) (*LoginInitiateResponse, error) {
	return invoke[LoginInitiateResponse](ctx, c.cc, Auth_LoginInitiate_FullMethodName, in, opts)
}

func (c *authClient) LoginComplete(ctx context.Context, in *LoginCompleteRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, Auth_LoginComplete_FullMethodName, in, opts)
}

func (c *authClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, Auth_RefreshToken_FullMethodName, in, opts)
}

func (c *authClient) RevokeToken(ctx context.Context, in *RevokeTokenRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Auth_RevokeToken_FullMethodName, in, opts)
}
