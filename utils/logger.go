package utils

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

var (
	ProductionMode  = "production"
	DevelopmentMode = "development"
)

// NewLogger builds the base zap logger for the given mode.
func NewLogger(mode string) (*zap.Logger, error) {
	var config zap.Config
	if mode == ProductionMode {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return config.Build()
}

// EmbedSender is the part of *discordgo.Session used to post log embeds.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordCore is a zapcore.Core that posts entries to an admin channel as
// colored embeds.
type DiscordCore struct {
	zapcore.LevelEnabler
	sender    EmbedSender
	channelID string
	fields    []zapcore.Field
}

// NewDiscordCore returns a core posting entries at or above level to
// channelID.
func NewDiscordCore(sender EmbedSender, channelID string, level zapcore.LevelEnabler) *DiscordCore {
	return &DiscordCore{LevelEnabler: level, sender: sender, channelID: channelID}
}

// WithAdminChannel tees logger into the admin channel for WARN and above. It
// returns logger unchanged when no channel is configured.
func WithAdminChannel(logger *zap.Logger, sender EmbedSender, channelID string) *zap.Logger {
	if sender == nil || channelID == "" {
		logger.Warn("admin channel not configured, logging to channel disabled")
		return logger
	}
	core := NewDiscordCore(sender, channelID, zapcore.WarnLevel)
	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, core)
	}))
}

func (c *DiscordCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *DiscordCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *DiscordCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	_, err := c.sender.ChannelMessageSendEmbed(c.channelID, buildEmbed(ent, enc.Fields))
	if err != nil {
		return fmt.Errorf("send log embed to discord: %w", err)
	}
	return nil
}

func (c *DiscordCore) Sync() error { return nil }

func buildEmbed(ent zapcore.Entry, fields map[string]interface{}) *discordgo.MessageEmbed {
	color := ColorInfo
	switch {
	case ent.Level >= zapcore.ErrorLevel:
		color = ColorError
	case ent.Level == zapcore.WarnLevel:
		color = ColorWarn
	}

	module := ent.LoggerName
	if module == "" {
		module = "-"
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var details strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&details, "%s: %v\n", k, fields[k])
	}
	detail := details.String()
	if detail == "" {
		detail = "-"
	}
	// Embed field values are capped at 1024 characters.
	if len(detail) > 1024 {
		detail = detail[:1021] + "..."
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Log Level: %s", ent.Level.CapitalString()),
		Description: ent.Message,
		Color:       color,
		Timestamp:   ent.Time.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module, Inline: true},
			{Name: "Details", Value: detail},
		},
	}
}
