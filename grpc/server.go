package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"discord-lists/models"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ChannelManager is implemented by *channel.Manager.
type ChannelManager interface {
	EnableChannel(ctx context.Context, guildID, channelID, channelName string) (models.EnableResult, error)
	DisableChannel(ctx context.Context, guildID, channelID string) (models.DisableResult, error)
	ListEnabledChannels(ctx context.Context) ([]models.EnabledChannel, error)
}

// Server exposes the channel manager over gRPC.
type Server struct {
	manager ChannelManager
	logger  *zap.Logger
}

var _ ChannelAdminServer = (*Server)(nil)

func NewServer(manager ChannelManager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{manager: manager, logger: logger.Named("grpc")}
}

// NewGRPCServer returns a grpc.Server with s registered and request logging
// installed.
func NewGRPCServer(s *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.logUnary))
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&ChannelAdminServiceDesc, s)
	return gs
}

// Listen opens a TCP listener on address that accepts at most maxConns
// simultaneous connections. A non-positive maxConns means no limit.
func Listen(address string, maxConns int) (net.Listener, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}
	if maxConns > 0 {
		lis = netutil.LimitListener(lis, maxConns)
	}
	return lis, nil
}

func (s *Server) EnableChannel(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.manager.EnableChannel(ctx,
		stringField(in, fieldGuildID),
		stringField(in, fieldChannelID),
		stringField(in, fieldChannelName),
	)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		fieldChanged: res.Changed,
		fieldLink:    res.MemexSocialLink,
	})
}

func (s *Server) DisableChannel(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.manager.DisableChannel(ctx, stringField(in, fieldGuildID), stringField(in, fieldChannelID))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{fieldChanged: res.Changed})
}

func (s *Server) ListEnabledChannels(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	channels, err := s.manager.ListEnabledChannels(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	rows := lo.Map(channels, func(c models.EnabledChannel, _ int) interface{} {
		return map[string]interface{}{
			fieldGuildID:     c.GuildID,
			fieldChannelID:   c.ChannelID,
			fieldChannelName: c.ChannelName,
			fieldLink:        c.MemexSocialLink,
		}
	})
	return structpb.NewStruct(map[string]interface{}{fieldChannels: rows})
}

func (s *Server) logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	fields := []zap.Field{
		zap.String("method", info.FullMethod),
		zap.Duration("elapsed", time.Since(start)),
		zap.Stringer("code", status.Code(err)),
	}
	switch status.Code(err) {
	case codes.OK:
		s.logger.Info("request handled", fields...)
	case codes.InvalidArgument:
		s.logger.Warn("request rejected", append(fields, zap.Error(err))...)
	default:
		s.logger.Error("request failed", append(fields, zap.Error(err))...)
	}
	return resp, err
}

// toStatus maps manager errors onto gRPC status codes.
func toStatus(err error) error {
	if errors.Is(err, models.ErrInvalidArgument) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Unavailable, err.Error())
}

// stringField returns the string value of key, or "" when it is missing or
// not a string.
func stringField(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}
