package rest

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/ovasconcelos/discline/internal/domain"
)

// MaxContentLength is the largest message the API accepts, in characters.
const MaxContentLength = 2000

// GetChannels lists the channels of a guild.
func (c *Client) GetChannels(ctx context.Context, guildID domain.GuildID) ([]domain.Channel, error) {
	channels, err := Request[[]domain.Channel](ctx, c, http.MethodGet, "guilds/"+guildID.String()+"/channels", nil, nil)
	if err != nil {
		return nil, resourceNotFound(err, "guild", guildID.String())
	}
	return channels, nil
}

// GetMessages returns a page of a channel's history, newest first.
func (c *Client) GetMessages(ctx context.Context, channelID domain.ChannelID, q GetMessagesQuery) ([]domain.Message, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	messages, err := Request[[]domain.Message](ctx, c, http.MethodGet, "channels/"+channelID.String()+"/messages", nil, q.Values())
	if err != nil {
		return nil, resourceNotFound(err, "channel", channelID.String())
	}
	return messages, nil
}

type createMessage struct {
	Content string `json:"content"`
}

// SendMessage posts content to a channel. Content longer than
// MaxContentLength characters is rejected without contacting the server.
func (c *Client) SendMessage(ctx context.Context, channelID domain.ChannelID, content string) (domain.Message, error) {
	if n := utf8.RuneCountInString(content); n > MaxContentLength {
		return domain.Message{}, &domain.ContentTooLongError{Length: n, Limit: MaxContentLength}
	}
	msg, err := Request[domain.Message](ctx, c, http.MethodPost, "channels/"+channelID.String()+"/messages", createMessage{Content: content}, nil)
	if err != nil {
		return domain.Message{}, resourceNotFound(err, "channel", channelID.String())
	}
	return msg, nil
}

// GetCurrentUser returns the account the token belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (domain.User, error) {
	return Request[domain.User](ctx, c, http.MethodGet, "users/@me", nil, nil)
}

// GetCurrentUserGuilds lists the guilds the account is a member of.
func (c *Client) GetCurrentUserGuilds(ctx context.Context) ([]domain.Guild, error) {
	return Request[[]domain.Guild](ctx, c, http.MethodGet, "users/@me/guilds", nil, nil)
}

// resourceNotFound names the resource in a 404.
func resourceNotFound(err error, kind, id string) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return &domain.NotFoundError{ResourceType: kind, ResourceID: id}
	}
	return err
}
