package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovasconcelos/discline/internal/app"
	"github.com/ovasconcelos/discline/internal/domain"
	"github.com/ovasconcelos/discline/internal/gateway"
	"github.com/ovasconcelos/discline/internal/rest"
	"github.com/ovasconcelos/discline/plugins/configwatcher"
)

func (c *cli) restClient() *rest.Client {
	return rest.New(c.cfg.Token,
		rest.WithBaseURL(c.cfg.APIBaseURL),
		rest.WithTimeout(c.cfg.HTTPTimeout),
		rest.WithLogger(c.logger),
	)
}

func newListenCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Stay connected to the gateway and print incoming messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			handler := app.EventHandlerFunc(func(ctx context.Context, ev gateway.Event) {
				switch e := ev.(type) {
				case *gateway.ReadyEvent:
					fmt.Fprintf(out, "connected as %s (%d guilds)\n", e.User.DisplayName(), len(e.Guilds))
				case *gateway.MessageCreateEvent:
					printMessage(out, e.Message)
				}
			})

			session, err := app.NewSession(app.SessionConfig{
				Token:      c.cfg.Token,
				GatewayURL: c.cfg.GatewayURL,
				Intents:    gateway.Intents(c.cfg.Intents),
				ConfigPath: c.watchPath,
			}, handler,
				app.WithLogger(c.logger),
				configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
			)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			if err := session.Start(ctx); err != nil {
				return fmt.Errorf("start session: %w", err)
			}

			select {
			case <-sigCh:
				c.logger.Info("received signal, stopping...")
			case <-session.Done():
				if err := session.Err(); err != nil {
					return err
				}
			}

			if err := session.Stop(); err != nil && !errors.Is(err, domain.ErrNotRunning) {
				return fmt.Errorf("stop session: %w", err)
			}
			return nil
		},
	}
}

func newSendCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "send <channel-id> <content...>",
		Short: "Send a message to a channel",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseID(args[0])
			if err != nil {
				return err
			}
			msg, err := c.restClient().SendMessage(cmd.Context(), domain.ChannelID(channelID), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", msg.ID)
			return nil
		},
	}
}

func newChannelsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "channels <guild-id>",
		Short: "List the channels of a guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseID(args[0])
			if err != nil {
				return err
			}
			channels, err := c.restClient().GetChannels(cmd.Context(), domain.GuildID(guildID))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ch := range channels {
				fmt.Fprintf(out, "%s\t%s\t%s\n", ch.ID, channelKind(ch.Type), ch.Name)
			}
			return nil
		},
	}
}

func newMessagesCommand(c *cli) *cobra.Command {
	var (
		limit                 int
		before, after, around string
	)
	cmd := &cobra.Command{
		Use:   "messages <channel-id>",
		Short: "Print recent messages of a channel, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseID(args[0])
			if err != nil {
				return err
			}

			q := rest.WithLimit(limit)
			for _, anchor := range []struct {
				value string
				dst   **domain.MessageID
			}{{before, &q.Before}, {after, &q.After}, {around, &q.Around}} {
				if anchor.value == "" {
					continue
				}
				id, err := parseID(anchor.value)
				if err != nil {
					return err
				}
				mid := domain.MessageID(id)
				*anchor.dst = &mid
			}

			msgs, err := c.restClient().GetMessages(cmd.Context(), domain.ChannelID(channelID), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := len(msgs) - 1; i >= 0; i-- {
				printMessage(out, msgs[i])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "number of messages (1-100)")
	cmd.Flags().StringVar(&before, "before", "", "only messages before this message id")
	cmd.Flags().StringVar(&after, "after", "", "only messages after this message id")
	cmd.Flags().StringVar(&around, "around", "", "only messages around this message id")
	cmd.MarkFlagsMutuallyExclusive("before", "after", "around")
	return cmd
}

func newGuildsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "guilds",
		Short: "List the guilds the account belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guilds, err := c.restClient().GetCurrentUserGuilds(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range guilds {
				fmt.Fprintf(out, "%s\t%s\n", g.ID, g.Name)
			}
			return nil
		},
	}
}

func newWhoamiCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.restClient().GetCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s\n", user.DisplayName(), user.Username, user.ID)
			return nil
		},
	}
}

func parseID(s string) (domain.Snowflake, error) {
	id, err := domain.ParseSnowflake(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return id, nil
}

func printMessage(w io.Writer, m domain.Message) {
	fmt.Fprintf(w, "[%s] #%s %s: %s\n",
		m.Timestamp.Local().Format(time.TimeOnly),
		m.ChannelID,
		m.Author.DisplayName(),
		m.Content,
	)
}

func channelKind(t domain.ChannelType) string {
	switch t {
	case domain.ChannelTypeGuildText:
		return "text"
	case domain.ChannelTypeGuildVoice:
		return "voice"
	case domain.ChannelTypeGuildCategory:
		return "category"
	case domain.ChannelTypeDM, domain.ChannelTypeGroupDM:
		return "dm"
	default:
		return fmt.Sprintf("type-%d", int(t))
	}
}
