package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ChannelDelete disables the binding of a channel that was deleted in
// Discord. The shared list and the binding row are kept.
func ChannelDelete(h *Handler) func(s *discordgo.Session, c *discordgo.ChannelDelete) {
	return func(_ *discordgo.Session, c *discordgo.ChannelDelete) {
		h.handleChannelDelete(c)
	}
}

func (h *Handler) handleChannelDelete(c *discordgo.ChannelDelete) {
	if c.Channel == nil || c.GuildID == "" {
		return
	}
	log := h.logger.With(zap.String("guild_id", c.GuildID), zap.String("channel_id", c.ID))

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	res, err := h.manager.DisableChannel(ctx, c.GuildID, c.ID)
	if err != nil {
		log.Error("failed to disable deleted channel", zap.Error(err))
		return
	}
	if res.Changed {
		log.Info("disabled binding of deleted channel")
	}
}
