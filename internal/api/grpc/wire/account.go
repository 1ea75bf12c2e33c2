package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const AccountServiceName = "golekaab.Account"

const (
	Account_Profile_FullMethodName       = "/golekaab.Account/Profile"
	Account_UpdateProfile_FullMethodName = "/golekaab.Account/UpdateProfile"
	Account_SetDisabled_FullMethodName   = "/golekaab.Account/SetDisabled"
	Account_SetRole_FullMethodName       = "/golekaab.Account/SetRole"
)

// AccountServer is the server API of the authenticated account service.
type AccountServer interface {
	Profile(context.Context, *Empty) (*User, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*User, error)
	SetDisabled(context.Context, *SetDisabledRequest) (*User, error)
	SetRole(context.Context, *SetRoleRequest) (*User, error)
}

// UnimplementedAccountServer answers every call with codes.Unimplemented.
type UnimplementedAccountServer struct{}

func (UnimplementedAccountServer) Profile(context.Context, *Empty) (*User, error) {
	return nil, status.Error(codes.Unimplemented, "method Profile not implemented")
}

func (UnimplementedAccountServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*User, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProfile not implemented")
}

func (UnimplementedAccountServer) SetDisabled(context.Context, *SetDisabledRequest) (*User, error) {
	return nil, status.Error(codes.Unimplemented, "method SetDisabled not implemented")
}

func (UnimplementedAccountServer) SetRole(context.Context, *SetRoleRequest) (*User, error) {
	return nil, status.Error(codes.Unimplemented, "method SetRole not implemented")
}

func RegisterAccountServer(s grpc.ServiceRegistrar, srv AccountServer) {
	s.RegisterService(&Account_ServiceDesc, srv)
}

var Account_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AccountServiceName,
	HandlerType: (*AccountServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Profile",
			Handler: unaryHandler(Account_Profile_FullMethodName, func(srv any, ctx context.Context, in *Empty) (*User, error) {
				return srv.(AccountServer).Profile(ctx, in)
			}),
		},
		{
			MethodName: "UpdateProfile",
			Handler: unaryHandler(Account_UpdateProfile_FullMethodName, func(srv any, ctx context.Context, in *UpdateProfileRequest) (*User, error) {
				return srv.(AccountServer).UpdateProfile(ctx, in)
			}),
		},
		{
			MethodName: "SetDisabled",
			Handler: unaryHandler(Account_SetDisabled_FullMethodName, func(srv any, ctx context.Context, in *SetDisabledRequest) (*User, error) {
				return srv.(AccountServer).SetDisabled(ctx, in)
			}),
		},
		{
			MethodName: "SetRole",
			Handler: unaryHandler(Account_SetRole_FullMethodName, func(srv any, ctx context.Context, in *SetRoleRequest) (*User, error) {
				return srv.(AccountServer).SetRole(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "golekaab/account",
}

// AccountClient is the client API of the authenticated account service.
type AccountClient interface {
	Profile(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*User, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*User, error)
	SetDisabled(ctx context.Context, in *SetDisabledRequest, opts ...grpc.CallOption) (*User, error)
	SetRole(ctx context.Context, in *SetRoleRequest, opts ...grpc.CallOption) (*User, error)
}

type accountClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountClient(cc grpc.ClientConnInterface) AccountClient {
	return &accountClient{cc: cc}
}

func (c *accountClient) Profile(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, Account_Profile_FullMethodName, in, opts)
}

func (c *accountClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, Account_UpdateProfile_FullMethodName, in, opts)
}

func (c *accountClient) SetDisabled(ctx context.Context, in *SetDisabledRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, Account_SetDisabled_FullMethodName, in, opts)
}

func (c *accountClient) SetRole(ctx context.Context, in *SetRoleRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, Account_SetRole_FullMethodName, in, opts)
}
