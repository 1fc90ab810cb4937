package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/application"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/config"
)

const (
	flagConfig           = "config"
	flagName             = "name"
	flagLogLevel         = "log-level"
	flagTrustRemoteMoves = "trust-remote-moves"
	flagBind             = "bind"
	flagPort             = "port"
	flagPublicURL        = "public-url"
	flagLedger           = "ledger"
	flagClearScreen      = "clear-screen"
)

// cli - state shared by the commands once flags and config are resolved.
type cli struct {
	v      *viper.Viper
	conf   *config.Config
	logger *slog.Logger
}

func newCmd() *cobra.Command {
	return newCLI().command()
}

func newCLI() *cli {
	v := viper.New()
	v.SetEnvPrefix("TICTACTOE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &cli{v: v}
}

func (c *cli) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Two-player tic-tac-toe played directly between two terminals.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(normalize)

	fs.String(flagConfig, defaultConfigPath(), "path to config.yml (env: TICTACTOE_CONFIG)")
	fs.StringP(flagName, "n", "", "your display name (env: TICTACTOE_NAME)")
	fs.String(flagLogLevel, "", "debug, info, warn or error (env: TICTACTOE_LOG_LEVEL)")
	fs.Bool(flagTrustRemoteMoves, false, "apply rival moves without turn checks (env: TICTACTOE_TRUST_REMOTE_MOVES)")
	fs.String(flagLedger, "", "ranking storage: sqlite, redis or memory (env: TICTACTOE_LEDGER)")
	fs.Bool(flagClearScreen, false, "redraw the board on a clean screen (env: TICTACTOE_CLEAR_SCREEN)")

	cmd.AddCommand(c.hostCmd(), c.joinCmd(), c.rankingCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("tictactoe v{{.Version}}\n")

	return cmd
}

func (c *cli) hostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Open a game and wait for a rival (you play X and move first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.conf.Validate(); err != nil {
				return err
			}

			return application.RunHost(cmd.Context(), c.logger, c.conf, application.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalize)

	fs.StringP(flagBind, "b", "", "address to bind to (env: TICTACTOE_BIND)")
	fs.StringP(flagPort, "p", "", "port to listen on (env: TICTACTOE_PORT)")
	fs.String(flagPublicURL, "", "base URL advertised in the join link (env: TICTACTOE_PUBLIC_URL)")

	return cmd
}

func (c *cli) joinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <link>",
		Short: "Join a game opened with 'tictactoe host' (you play O)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.conf.Validate(); err != nil {
				return err
			}

			return application.RunJoin(cmd.Context(), c.logger, c.conf, args[0], application.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
		},
	}
}

func (c *cli) rankingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranking",
		Short: "Show the top 10 players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.conf.Ledger.Validate(); err != nil {
				return err
			}

			return application.RunRanking(cmd.Context(), c.logger, c.conf, cmd.OutOrStdout())
		},
	}
}

// load - config file first, then TICTACTOE_* variables and explicit flags on top.
func (c *cli) load(cmd *cobra.Command) error {
	fs := cmd.Flags()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = c.v.BindPFlag(f.Name, f)
		_ = c.v.BindEnv(f.Name)
	})

	conf, err := config.Load(c.v.GetString(flagConfig))
	if err != nil {
		return fmt.Errorf("unable to load config file: %w", err)
	}

	override := func(name string, apply func()) {
		if fs.Lookup(name) != nil && c.v.IsSet(name) {
			apply()
		}
	}

	override(flagName, func() { conf.PlayerName = c.v.GetString(flagName) })
	override(flagLogLevel, func() { conf.LogLevel = c.v.GetString(flagLogLevel) })
	override(flagTrustRemoteMoves, func() { conf.TrustRemoteMoves = c.v.GetBool(flagTrustRemoteMoves) })
	override(flagLedger, func() { conf.Ledger.Driver = c.v.GetString(flagLedger) })
	override(flagClearScreen, func() { conf.ClearScreen = c.v.GetBool(flagClearScreen) })
	override(flagBind, func() { conf.Host.Bind = c.v.GetString(flagBind) })
	override(flagPort, func() { conf.Host.Port = c.v.GetString(flagPort) })
	override(flagPublicURL, func() { conf.Host.PublicURL = c.v.GetString(flagPublicURL) })

	c.conf = conf
	c.logger = initLogger(conf.LogLevel)

	return nil
}

func normalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func defaultConfigPath() string {
	baseDir, err := os.Getwd()
	if err != nil {
		return "config.yml"
	}

	return filepath.Join(baseDir, "config.yml")
}
