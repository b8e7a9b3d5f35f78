package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SvenDH/go-card-client/client"
	"github.com/SvenDH/go-card-client/config"
	"github.com/SvenDH/go-card-client/ui"
)

var playCfg = config.Default()

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join a game in the terminal",
	Long: `Opens the table in the terminal. Username and game name can be set
with flags or typed into the form; enter on the form connects, replacing any
open connection.`,
	Annotations: map[string]string{tuiAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := playCfg.Validate(); err != nil {
			return err
		}
		recorders, closeJournal, err := openJournal(playCfg.Journal)
		if err != nil {
			return err
		}
		defer closeJournal()

		connector := client.NewConnector(recorders)
		defer connector.Close()

		m := ui.New(playCfg, ui.ConnectorDial(connector))
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	addClientFlags(playCmd, &playCfg)
	rootCmd.AddCommand(playCmd)
}
