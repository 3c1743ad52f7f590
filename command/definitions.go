package command

import "github.com/bwmarrin/discordgo"

const (
	NameEnableChannel  = "enable_channel"
	NameDisableChannel = "disable_channel"
	NameListChannels   = "list_channels"
	NamePing           = "ping"

	OptionChannel = "channel"
)

// Only members who can manage channels see the binding commands by default.
var manageChannels int64 = discordgo.PermissionManageChannels

func channelOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:         OptionChannel,
		Description:  description,
		Type:         discordgo.ApplicationCommandOptionChannel,
		Required:     false,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildForum},
	}
}

// EnableChannelCommand defines the structure for the /enable_channel command.
type EnableChannelCommand struct{}

// Definition returns the application command definition.
func (c *EnableChannelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     NameEnableChannel,
		Description:              "Sync a channel to a shared Memex list",
		DefaultMemberPermissions: &manageChannels,
		Options: []*discordgo.ApplicationCommandOption{
			channelOption("The channel to enable (defaults to this channel)"),
		},
	}
}

// DisableChannelCommand defines the structure for the /disable_channel command.
type DisableChannelCommand struct{}

// Definition returns the application command definition.
func (c *DisableChannelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     NameDisableChannel,
		Description:              "Stop syncing a channel to its shared Memex list",
		DefaultMemberPermissions: &manageChannels,
		Options: []*discordgo.ApplicationCommandOption{
			channelOption("The channel to disable (defaults to this channel)"),
		},
	}
}

// ListChannelsCommand defines the structure for the /list_channels command.
type ListChannelsCommand struct{}

// Definition returns the application command definition.
func (c *ListChannelsCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     NameListChannels,
		Description:              "List channels currently synced to shared lists",
		DefaultMemberPermissions: &manageChannels,
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        NamePing,
		Description: "Responds with Pong!",
	}
}
