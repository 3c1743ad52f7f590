package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"discord-lists/command"
	"discord-lists/models"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Discord rejects message content longer than this.
const maxMessageLength = 2000

const (
	msgGuildOnly   = "🚫 This command can only be used inside a server."
	msgFailed      = "🚫 Something went wrong, please try again later."
	msgNoChannels  = "No channels in this server are synced to a shared list."
	msgBadArgument = "🚫 Could not determine which channel to use."
)

// HandleEnableChannel handles the logic for the /enable_channel command.
func (h *Handler) HandleEnableChannel(ctx context.Context, log *zap.Logger, s Session, i *discordgo.InteractionCreate) string {
	if i.GuildID == "" {
		return msgGuildOnly
	}
	channelID, channelName, err := targetChannel(s, i)
	if err != nil {
		log.Error("failed to resolve target channel", zap.String("channel_id", channelID), zap.Error(err))
		return msgBadArgument
	}

	result, err := h.manager.EnableChannel(ctx, i.GuildID, channelID, channelName)
	if err != nil {
		return failureMessage(log, "enable channel", err)
	}
	if !result.Changed {
		return fmt.Sprintf("<#%s> is already synced to %s", channelID, result.MemexSocialLink)
	}
	return fmt.Sprintf("✅ <#%s> is now synced to %s", channelID, result.MemexSocialLink)
}

// HandleDisableChannel handles the logic for the /disable_channel command.
func (h *Handler) HandleDisableChannel(ctx context.Context, log *zap.Logger, s Session, i *discordgo.InteractionCreate) string {
	if i.GuildID == "" {
		return msgGuildOnly
	}
	channelID := optionChannelID(i)

	result, err := h.manager.DisableChannel(ctx, i.GuildID, channelID)
	if err != nil {
		return failureMessage(log, "disable channel", err)
	}
	if !result.Changed {
		return fmt.Sprintf("<#%s> was not being synced.", channelID)
	}
	return fmt.Sprintf("⏸️ <#%s> is no longer synced.", channelID)
}

// HandleListChannels handles the logic for the /list_channels command. Only
// channels of the invoking server are shown.
func (h *Handler) HandleListChannels(ctx context.Context, log *zap.Logger, i *discordgo.InteractionCreate) string {
	if i.GuildID == "" {
		return msgGuildOnly
	}
	channels, err := h.manager.ListEnabledChannels(ctx)
	if err != nil {
		return failureMessage(log, "list channels", err)
	}
	channels = lo.Filter(channels, func(c models.EnabledChannel, _ int) bool {
		return c.GuildID == i.GuildID
	})
	if len(channels) == 0 {
		return msgNoChannels
	}

	var sb strings.Builder
	sb.WriteString("**Synced channels**\n")
	for n, c := range channels {
		line := fmt.Sprintf("<#%s> → %s\n", c.ChannelID, c.MemexSocialLink)
		more := fmt.Sprintf("…and %d more", len(channels)-n)
		if sb.Len()+len(line)+len(more) > maxMessageLength {
			sb.WriteString(more)
			break
		}
		sb.WriteString(line)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// optionChannelID returns the channel picked in the command options, or the
// channel the command was used in.
func optionChannelID(i *discordgo.InteractionCreate) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name != command.OptionChannel {
			continue
		}
		if id, ok := opt.Value.(string); ok && id != "" {
			return id
		}
	}
	return i.ChannelID
}

// targetChannel resolves the id and display name of the channel a command
// acts on, falling back to the API when the interaction carries no resolved
// data for it.
func targetChannel(s Session, i *discordgo.InteractionCreate) (string, string, error) {
	channelID := optionChannelID(i)
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if ch, ok := resolved.Channels[channelID]; ok && ch != nil && ch.Name != "" {
			return channelID, ch.Name, nil
		}
	}
	ch, err := s.Channel(channelID)
	if err != nil {
		return channelID, "", fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return channelID, ch.Name, nil
}

func failureMessage(log *zap.Logger, action string, err error) string {
	if errors.Is(err, models.ErrInvalidArgument) {
		log.Warn("rejected "+action, zap.Error(err))
		return msgBadArgument
	}
	log.Error("failed to "+action, zap.Error(err))
	return msgFailed
}
