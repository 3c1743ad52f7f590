package handlers

import (
	"discord-lists/bot"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Register all handlers to the bot.
func Register(h *Handler) func(b *bot.Bot) {
	return func(b *bot.Bot) {
		b.Session.AddHandler(InteractionCreate(h))
		b.Session.AddHandler(ChannelDelete(h))

		// Add a ready handler to log when the bot is connected.
		b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			h.logger.Info("logged in",
				zap.String("username", s.State.User.Username),
				zap.Int("guilds", len(r.Guilds)),
			)
		})
	}
}
