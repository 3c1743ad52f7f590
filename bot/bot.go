package bot

import (
	"fmt"

	"discord-lists/command"
	"discord-lists/models"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session  *discordgo.Session
	Commands map[string]command.Command

	guildID    string
	logger     *zap.Logger
	scheduler  *Scheduler
	registered []*discordgo.ApplicationCommand
}

// NewBot creates and initializes a new Bot instance. The gateway is not
// opened until Start.
func NewBot(cfg models.BotConfig, logger *zap.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	// Slash commands only need guild events; message content is never read.
	dg.Identify.Intents = discordgo.IntentsGuilds

	return &Bot{
		Session:  dg,
		Commands: make(map[string]command.Command),
		guildID:  cfg.GuildID,
		logger:   logger.Named("bot"),
	}, nil
}

// RegisterCommands registers the provided commands.
func (b *Bot) RegisterCommands(commands []command.Command) {
	for _, cmd := range commands {
		b.Commands[cmd.Definition().Name] = cmd
	}
}

// UseScheduler attaches a scheduler that runs while the bot is connected.
func (b *Bot) UseScheduler(s *Scheduler) {
	b.scheduler = s
}

// Start opens the bot's session and registers handlers.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	// Commands are scoped to one guild when configured, which makes updates
	// show up immediately instead of after the global cache expires.
	appID := b.Session.State.User.ID
	for _, cmd := range b.Commands {
		created, err := b.Session.ApplicationCommandCreate(appID, b.guildID, cmd.Definition())
		if err != nil {
			b.logger.Error("cannot create command",
				zap.String("command", cmd.Definition().Name), zap.Error(err))
			continue
		}
		b.registered = append(b.registered, created)
	}

	if b.scheduler != nil {
		b.scheduler.Start()
	}

	b.logger.Info("bot is now running", zap.Int("commands", len(b.registered)), zap.String("guild_id", b.guildID))
	return nil
}

// Stop gracefully closes the bot's session. Guild-scoped commands are removed
// again so a stale bot does not leave dead commands behind.
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.Session == nil {
		return
	}
	if b.guildID != "" && b.Session.State != nil && b.Session.State.User != nil {
		for _, cmd := range b.registered {
			if err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, b.guildID, cmd.ID); err != nil {
				b.logger.Warn("cannot delete command", zap.String("command", cmd.Name), zap.Error(err))
			}
		}
	}
	if err := b.Session.Close(); err != nil {
		b.logger.Warn("error closing session", zap.Error(err))
	}
	b.logger.Info("bot stopped gracefully")
}
