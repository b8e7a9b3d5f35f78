package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SvenDH/go-card-client/client"
	"github.com/SvenDH/go-card-client/config"
	"github.com/SvenDH/go-card-client/journal"
	"github.com/SvenDH/go-card-client/logging"
)

// commands annotated as terminal UIs never log to stderr
const tuiAnnotation = "tui"

var (
	logLevel  string
	logFormat string
	logFile   string
	logOut    *os.File
)

var rootCmd = &cobra.Command{
	Use:           "munchkin",
	Short:         "Terminal client for the Munchkin card game server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var out io.Writer = os.Stderr
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			logOut = f
			out = f
		} else if cmd.Annotations[tuiAnnotation] != "" {
			out = io.Discard
		}
		logging.Init(logLevel, logFormat, out)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logOut != nil {
			logOut.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "log level (default $LOG_LEVEL or info)")
	flags.StringVar(&logFormat, "log-format", "", "log format, text or json (default $LOG_FORMAT or text)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
}

// addClientFlags binds the connection flags of play and watch onto cfg.
func addClientFlags(cmd *cobra.Command, cfg *config.Client) {
	flags := cmd.Flags()
	flags.StringVar(&cfg.Host, "host", cfg.Host, "game server host:port")
	flags.StringVarP(&cfg.Username, "username", "u", cfg.Username, "player name")
	flags.StringVarP(&cfg.Game, "game", "g", cfg.Game, "game name")
	flags.StringVar(&cfg.Password, "password", cfg.Password, "game password")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "access token, its name claim is used when no username is given")
	flags.BoolVar(&cfg.Secure, "secure", cfg.Secure, "use wss")
	flags.StringVar(&cfg.Journal, "journal", cfg.Journal, "record traffic to this SQLite file")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "dial timeout")
}

// openJournal returns a recorder factory for path, or nothing when path is
// empty.
func openJournal(path string) (client.RecorderFactory, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	repo, err := journal.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return repo.RecorderFactory(), func() { repo.Close() }, nil
}
