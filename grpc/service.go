package grpc

import (
	"context"

	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "lists.admin.v1.ChannelAdmin"

	methodEnableChannel       = "/" + ServiceName + "/EnableChannel"
	methodDisableChannel      = "/" + ServiceName + "/DisableChannel"
	methodListEnabledChannels = "/" + ServiceName + "/ListEnabledChannels"
)

// Request and response field names.
const (
	fieldGuildID     = "guild_id"
	fieldChannelID   = "channel_id"
	fieldChannelName = "channel_name"
	fieldChanged     = "changed"
	fieldLink        = "memex_social_link"
	fieldChannels    = "channels"
)

// ChannelAdminServer is the server API for the ChannelAdmin service.
type ChannelAdminServer interface {
	EnableChannel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DisableChannel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEnabledChannels(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ChannelAdminServiceDesc describes the ChannelAdmin service. Messages are
// protobuf well-known types so no generated code is needed on either side.
var ChannelAdminServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChannelAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "EnableChannel", Handler: enableChannelHandler},
		{MethodName: "DisableChannel", Handler: disableChannelHandler},
		{MethodName: "ListEnabledChannels", Handler: listEnabledChannelsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lists/admin/v1/channel_admin.proto",
}

func enableChannelHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChannelAdminServer).EnableChannel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodEnableChannel}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChannelAdminServer).EnableChannel(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func disableChannelHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChannelAdminServer).DisableChannel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDisableChannel}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChannelAdminServer).DisableChannel(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listEnabledChannelsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChannelAdminServer).ListEnabledChannels(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListEnabledChannels}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChannelAdminServer).ListEnabledChannels(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
