package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/ovasconcelos/discline/internal/cliconfig"
	"github.com/ovasconcelos/discline/pkg/log"
)

const helpDescription = `
A terminal client for Discord.

Highlights:
  - Stays connected to the gateway and reconnects on its own.
  - Reads and sends channel messages over the REST API.
  - Configure via file, env, or flags. The token is reloaded when the file changes.

Config: $XDG_CONFIG_HOME/discline/config.toml
`

var exampleUsage = strings.TrimSpace(`
  discline listen --token <bot-token>
  discline messages 123456789012345678 --limit 20
  discline send 123456789012345678 "hello there"
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the resolved configuration from PersistentPreRunE to the
// subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  *log.ZerologAdapter

	// watchPath is the config file when it exists on disk, else "".
	watchPath string
}

func newRootCommand() *cobra.Command {
	c := &cli{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "discline",
		Short:         "A terminal client for Discord",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return c.load(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: <user config dir>/discline/config.toml)")
	flags.StringVar(&c.cfg.Token, "token", "", "bot or user token (falls back to $"+cliconfig.TokenEnv+")")
	flags.StringVar(&c.cfg.APIBaseURL, "api-url", c.cfg.APIBaseURL, "REST API base URL")
	flags.StringVar(&c.cfg.GatewayURL, "gateway-url", c.cfg.GatewayURL, "gateway websocket URL")
	flags.DurationVar(&c.cfg.HTTPTimeout, "timeout", c.cfg.HTTPTimeout, "HTTP timeout")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.Uint32Var(&c.cfg.Intents, "intents", c.cfg.Intents, "gateway intents bitmask")
	for _, name := range []string{"api-url", "gateway-url", "intents"} {
		_ = flags.MarkHidden(name)
	}

	root.AddCommand(
		newListenCommand(c),
		newSendCommand(c),
		newChannelsCommand(c),
		newMessagesCommand(c),
		newGuildsCommand(c),
		newWhoamiCommand(c),
	)
	return root
}

// load resolves the configuration. Precedence, lowest first: defaults,
// config file, DISCLINE_* environment (including ./.env), explicit flags.
// DISCORD_TOKEN only fills a token that is still empty.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
		c.watchPath = cfgFile
	}

	if err := cliconfig.LoadDotEnv(cliconfig.DotEnvFile); err != nil {
		return err
	}
	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	cliconfig.ApplyTokenFallback(&c.cfg)

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	logger, err := cliconfig.NewLogger(os.Stderr, c.cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logger

	logCfg := c.cfg
	logCfg.Token = "*****"
	logger.Debug("configuration", log.Any("config", logCfg))
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "discline:", err)
		os.Exit(1)
	}
}
