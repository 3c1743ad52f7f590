package grpc

import (
	"context"
	"time"

	"discord-lists/models"

	"github.com/samber/lo"
	"github.com/samber/oops"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client wraps a connection to the ChannelAdmin service.
type Client struct {
	conn          *grpc.ClientConn
	serverAddress string
	timeout       time.Duration
}

// NewClient creates a client for serverAddress. Every call is bounded by
// timeout unless the caller's context already has a deadline.
func NewClient(serverAddress string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(serverAddress, opts...)
	if err != nil {
		return nil, oops.In("grpc").With("address", serverAddress).Wrapf(err, "dial channel admin")
	}
	return &Client{conn: conn, serverAddress: serverAddress, timeout: timeout}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// GetServerAddress returns the address the client was created with.
func (c *Client) GetServerAddress() string {
	return c.serverAddress
}

func (c *Client) EnableChannel(ctx context.Context, guildID, channelID, channelName string) (models.EnableResult, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		fieldGuildID:     guildID,
		fieldChannelID:   channelID,
		fieldChannelName: channelName,
	})
	if err != nil {
		return models.EnableResult{}, err
	}
	out := new(structpb.Struct)
	if err := c.invoke(ctx, methodEnableChannel, in, out); err != nil {
		return models.EnableResult{}, err
	}
	return models.EnableResult{
		Changed:         out.GetFields()[fieldChanged].GetBoolValue(),
		MemexSocialLink: out.GetFields()[fieldLink].GetStringValue(),
	}, nil
}

func (c *Client) DisableChannel(ctx context.Context, guildID, channelID string) (models.DisableResult, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		fieldGuildID:   guildID,
		fieldChannelID: channelID,
	})
	if err != nil {
		return models.DisableResult{}, err
	}
	out := new(structpb.Struct)
	if err := c.invoke(ctx, methodDisableChannel, in, out); err != nil {
		return models.DisableResult{}, err
	}
	return models.DisableResult{Changed: out.GetFields()[fieldChanged].GetBoolValue()}, nil
}

func (c *Client) ListEnabledChannels(ctx context.Context) ([]models.EnabledChannel, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, methodListEnabledChannels, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	rows := out.GetFields()[fieldChannels].GetListValue().GetValues()
	return lo.Map(rows, func(v *structpb.Value, _ int) models.EnabledChannel {
		f := v.GetStructValue().GetFields()
		return models.EnabledChannel{
			GuildID:         f[fieldGuildID].GetStringValue(),
			ChannelID:       f[fieldChannelID].GetStringValue(),
			ChannelName:     f[fieldChannelName].GetStringValue(),
			MemexSocialLink: f[fieldLink].GetStringValue(),
		}
	}), nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return fromStatus(err)
	}
	return nil
}

// fromStatus turns an InvalidArgument status back into models.ErrInvalidArgument
// so callers on both sides of the wire can use errors.Is.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if ok && st.Code() == codes.InvalidArgument {
		return oops.In("grpc").Code("invalid_argument").Wrapf(models.ErrInvalidArgument, "%s", st.Message())
	}
	return err
}
