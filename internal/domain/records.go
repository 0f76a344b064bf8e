package domain

import "time"

// User is an account as returned by the API.
type User struct {
	ID            UserID  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	GlobalName    *string `json:"global_name,omitempty"`
	Email         string  `json:"email,omitempty"`
	Bot           bool    `json:"bot,omitempty"`
}

// DisplayName prefers the global display name over the username.
func (u User) DisplayName() string {
	if u.GlobalName != nil && *u.GlobalName != "" {
		return *u.GlobalName
	}
	return u.Username
}

// ChannelType is the kind of a channel (text, voice, category, ...).
type ChannelType int

const (
	ChannelTypeGuildText     ChannelType = 0
	ChannelTypeDM            ChannelType = 1
	ChannelTypeGuildVoice    ChannelType = 2
	ChannelTypeGroupDM       ChannelType = 3
	ChannelTypeGuildCategory ChannelType = 4
)

// Channel is a guild channel or a direct-message channel.
type Channel struct {
	ID      ChannelID   `json:"id"`
	Type    ChannelType `json:"type"`
	GuildID GuildID     `json:"guild_id,omitempty"`
	Name    string      `json:"name"`
}

// Guild is a server. Guilds delivered in READY are usually unavailable and
// carry only their id.
type Guild struct {
	ID          GuildID `json:"id"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

// Message is a chat message.
type Message struct {
	ID        MessageID `json:"id"`
	ChannelID ChannelID `json:"channel_id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
