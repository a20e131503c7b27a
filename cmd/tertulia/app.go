// ABOUTME: Root command and shared wiring: config, logger, session store, gateway client
// ABOUTME: Every subcommand runs after the same setup step

package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/tertulia/internal/api"
	"github.com/2389/tertulia/internal/chat"
	"github.com/2389/tertulia/internal/config"
	"github.com/2389/tertulia/internal/session"
)

var _ chat.Gateway = (*api.Client)(nil)

// app holds what every command needs once setup has run.
type app struct {
	configPath string

	cfg    *config.Config
	logger *slog.Logger
	tokens *session.Store
	client *api.Client

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}

	root := &cobra.Command{
		Use:   "tertulia",
		Short: "Terminal client for the tertulia chat gateway",
		Long: `tertulia talks to a channel/thread chat gateway from the terminal.

Browse your channels and their threads, create and join channels, and chat
with the Wikipedia and programming bots. Run "tertulia chat" for the
interactive client.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"config file (default $XDG_CONFIG_HOME/tertulia/config.yaml, or "+config.EnvConfigPath+")")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.meCmd(),
		a.profileCmd(),
		a.channelsCmd(),
		a.threadsCmd(),
		a.chatCmd(),
	)
	return root
}

func (a *app) setup() error {
	var (
		cfg  *config.Config
		path = a.configPath
		err  error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.logger = setupLogger(cfg.Logging, a.errOut)

	tokenPath := cfg.Session.TokenPath
	if tokenPath == "" {
		tokenPath = session.DefaultPath(config.Dir())
	}
	a.tokens = session.NewStore(tokenPath, a.logger)

	client, err := api.New(cfg.Gateway.URL, a.tokens, a.logger)
	if err != nil {
		return fmt.Errorf("creating gateway client: %w", err)
	}
	client.SetTimeout(cfg.Gateway.Timeout)
	a.client = client

	a.logger.Debug("configured",
		"config", path,
		"gateway", cfg.Gateway.URL,
		"token_path", tokenPath)
	return nil
}

// newController builds a conversation controller over the gateway client.
// Callers must Close it.
func (a *app) newController() *chat.Controller {
	return chat.NewController(a.client, chat.Options{
		CacheTTL:  a.cfg.Cache.TTL,
		CacheSize: a.cfg.Cache.MaxEntries,
		Logger:    a.logger,
	})
}

// prompt writes label and reads one line of input.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}
