package models

import "time"

// DiscordListUserID is the creator recorded on every shared list that was
// created on behalf of a Discord channel rather than a human user.
const DiscordListUserID = "discord-list-user"

// SharedList is an internally-owned collection exposed under a public link.
type SharedList struct {
	ID          int64     `db:"id" json:"id"`
	Creator     string    `db:"creator" json:"creator"`
	CreatedWhen time.Time `db:"created_when" json:"created_when"`
	UpdatedWhen time.Time `db:"updated_when" json:"updated_when"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
}

// ChannelBinding links one Discord channel to the SharedList it owns.
// (GuildID, ChannelID) is unique and SharedList never changes once set.
type ChannelBinding struct {
	ID          int64  `db:"id" json:"id"`
	GuildID     string `db:"guild_id" json:"guild_id"`
	ChannelID   string `db:"channel_id" json:"channel_id"`
	ChannelName string `db:"channel_name" json:"channel_name"`
	SharedList  int64  `db:"shared_list" json:"shared_list"`
	Enabled     bool   `db:"enabled" json:"enabled"`
}

// EnableResult is returned by an enable request.
type EnableResult struct {
	Changed         bool   `json:"changed"`
	MemexSocialLink string `json:"memex_social_link"`
}

// DisableResult is returned by a disable request.
type DisableResult struct {
	Changed bool `json:"changed"`
}

// EnabledChannel is one row of the enabled channel listing.
type EnabledChannel struct {
	GuildID         string `json:"guild_id"`
	ChannelID       string `json:"channel_id"`
	ChannelName     string `json:"channel_name"`
	MemexSocialLink string `json:"memex_social_link"`
}
