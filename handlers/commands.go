package handlers

import (
	"context"
	"time"

	"discord-lists/command"
	"discord-lists/models"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCommandTimeout = 10 * time.Second

// Session is the part of *discordgo.Session the command handlers use.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// ChannelManager is implemented by *channel.Manager.
type ChannelManager interface {
	EnableChannel(ctx context.Context, guildID, channelID, channelName string) (models.EnableResult, error)
	DisableChannel(ctx context.Context, guildID, channelID string) (models.DisableResult, error)
	ListEnabledChannels(ctx context.Context) ([]models.EnabledChannel, error)
}

// Handler answers slash commands using the channel manager.
type Handler struct {
	manager ChannelManager
	logger  *zap.Logger
	timeout time.Duration
}

func NewHandler(manager ChannelManager, logger *zap.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &Handler{manager: manager, logger: logger.Named("handlers"), timeout: timeout}
}

// CommandDispatcher is the central handler for all application command interactions.
func (h *Handler) CommandDispatcher(s Session, i *discordgo.InteractionCreate) {
	commandName := i.ApplicationCommandData().Name
	log := h.logger.With(
		zap.String("interaction", uuid.NewString()),
		zap.String("command", commandName),
		zap.String("guild_id", i.GuildID),
		zap.String("user_id", interactionUserID(i)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var content string
	switch commandName {
	case command.NameEnableChannel:
		content = h.HandleEnableChannel(ctx, log, s, i)
	case command.NameDisableChannel:
		content = h.HandleDisableChannel(ctx, log, s, i)
	case command.NameListChannels:
		content = h.HandleListChannels(ctx, log, i)
	case command.NamePing:
		content = "Pong!"
	default:
		log.Warn("unknown command")
		content = "🚫 Internal error: unknown command."
	}

	if err := respondEphemeral(s, i, content); err != nil {
		log.Error("failed to respond to interaction", zap.Error(err))
	}
}

func respondEphemeral(s Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return ""
}
