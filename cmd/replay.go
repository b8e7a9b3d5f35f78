package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/SvenDH/go-card-client/journal"
	"github.com/SvenDH/go-card-client/replay"
)

var replayArgs struct {
	addr         string
	journal      string
	interval     time.Duration
	gamePassword string
	tokenSecret  string
	tokenTTL     time.Duration
}

var replayCmd = &cobra.Command{
	Use:   "replay <session>",
	Short: "Serve a journaled session to connecting clients",
	Long: `Starts a development server on /socket/{user}/{game}[/{password}] that
sends the frames the server sent in a recorded session, one every interval.
Actions sent back by clients are journaled under a new session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := journal.Open(replayArgs.journal)
		if err != nil {
			return err
		}
		defer repo.Close()

		opts := replay.Options{
			Source:      args[0],
			Interval:    replayArgs.interval,
			TokenSecret: replayArgs.tokenSecret,
		}
		if replayArgs.gamePassword != "" {
			if opts.PasswordHash, err = replay.HashPassword(replayArgs.gamePassword); err != nil {
				return fmt.Errorf("hash game password: %w", err)
			}
		}
		srv, err := replay.NewServer(repo, opts)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return replay.NewRouter(replayArgs.addr, srv).Run(ctx)
	},
}

var replayTokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Print an access token the replay server accepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayArgs.tokenSecret == "" {
			return errors.New("--token-secret is required")
		}
		token, err := replay.CreateToken(args[0], replayArgs.tokenSecret, replayArgs.tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	flags := replayCmd.PersistentFlags()
	flags.StringVar(&replayArgs.tokenSecret, "token-secret", os.Getenv("MUNCHKIN_TOKEN_SECRET"), "HS256 secret tokens must be signed with")

	replayCmd.Flags().StringVar(&replayArgs.addr, "addr", "localhost:800", "listen address")
	replayCmd.Flags().StringVar(&replayArgs.journal, "journal", "munchkin.db", "journal file to replay from")
	replayCmd.Flags().DurationVar(&replayArgs.interval, "interval", 500*time.Millisecond, "pause between frames")
	replayCmd.Flags().StringVar(&replayArgs.gamePassword, "game-password", "", "password clients must give in the socket path")
	replayTokenCmd.Flags().DurationVar(&replayArgs.tokenTTL, "ttl", replay.DefaultTokenTTL, "token lifetime")

	replayCmd.AddCommand(replayTokenCmd)
	rootCmd.AddCommand(replayCmd)
}
