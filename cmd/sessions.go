package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/SvenDH/go-card-client/client"
	"github.com/SvenDH/go-card-client/journal"
)

var sessionsJournal string
var sessionsDirection string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := journal.Open(sessionsJournal)
		if err != nil {
			return err
		}
		defer repo.Close()

		sessions, err := repo.Sessions()
		if err != nil {
			return err
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "USER", "GAME", "STARTED", "FRAMES")
		for _, s := range sessions {
			t.Row(s.Id, s.User, s.Game, s.Started.Local().Format(time.DateTime), strconv.Itoa(s.Frames))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Print the frames of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := journal.Open(sessionsJournal)
		if err != nil {
			return err
		}
		defer repo.Close()

		frames, err := repo.Frames(args[0], client.Direction(sessionsDirection))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, f := range frames {
			fmt.Fprintf(out, "%s %-3s %s\n", f.At.Local().Format(time.TimeOnly), f.Direction, f.Body)
		}
		return nil
	},
}

func init() {
	sessionsCmd.PersistentFlags().StringVar(&sessionsJournal, "journal", "munchkin.db", "journal file")
	sessionsShowCmd.Flags().StringVar(&sessionsDirection, "direction", "", "only frames in this direction, in or out")

	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}
