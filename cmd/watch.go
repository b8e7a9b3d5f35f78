package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/SvenDH/go-card-client/board"
	"github.com/SvenDH/go-card-client/client"
	"github.com/SvenDH/go-card-client/config"
	"github.com/SvenDH/go-card-client/protocol"
)

var watchCfg = config.Default()

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a game and print what happens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := watchCfg.Validate(); err != nil {
			return err
		}
		ep, err := watchCfg.Endpoint()
		if err != nil {
			return err
		}
		recorders, closeJournal, err := openJournal(watchCfg.Journal)
		if err != nil {
			return err
		}
		defer closeJournal()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		dialCtx := ctx
		if watchCfg.Timeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, watchCfg.Timeout)
			defer cancel()
		}
		connector := client.NewConnector(recorders)
		defer connector.Close()
		s, err := connector.Connect(dialCtx, ep)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "watching %s\n", ep)
		if err := watchFrames(ctx, s.Incoming(), board.New(), out); err != nil {
			return err
		}
		if err := s.Err(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("connection closed: %w", err)
		}
		return nil
	},
}

func init() {
	addClientFlags(watchCmd, &watchCfg)
	rootCmd.AddCommand(watchCmd)
}

// watchFrames applies frames to b until frames closes or ctx ends, printing
// roster changes and new console lines.
func watchFrames(ctx context.Context, frames <-chan []byte, b *board.Board, out io.Writer) error {
	seen := len(b.Console())
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			switch b.ApplyFrame(frame).(type) {
			case *protocol.PlayersEvent, *protocol.PlayerEvent, *protocol.DrawEvent:
				printRoster(out, b)
			case *protocol.CombatEvent:
				printCombat(out, b)
			}
			lines := b.Console()
			for _, l := range lines[seen:] {
				if l.Kind == board.LineError {
					fmt.Fprintf(out, "! %s\n", l.Text)
				} else {
					fmt.Fprintf(out, "> %s\n", l.Text)
				}
			}
			seen = len(lines)
		}
	}
}

func printRoster(out io.Writer, b *board.Board) {
	for _, p := range b.Players() {
		fmt.Fprintf(out, "  %-12s level %d bonus %d total %d, %d in hand, %d carried\n",
			p.Name, p.Level, p.Bonus, p.Total, len(p.Hand), len(p.Carried))
	}
}

func printCombat(out io.Writer, b *board.Board) {
	c := b.Combat()
	var names []string
	for _, id := range c.Players {
		if p := b.Player(id); p != nil {
			names = append(names, p.Name)
		}
	}
	var monsters []string
	for _, m := range c.Monsters {
		monsters = append(monsters, m.Name)
	}
	fmt.Fprintf(out, "  combat: %v vs %v\n", names, monsters)
}
