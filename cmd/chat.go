package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bindulearn/bindu/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive tutoring session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

func runChat(cmd *cobra.Command) error {
	a, closer, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	return tui.Run(a.Dispatcher, a.UserID)
}
