package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Long:  "Sends a single message through the tutoring pipeline and prints the reply. State persists, so consecutive asks continue the same conversation.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closer, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closer()

		st, err := a.Dispatcher.Dispatch(cmd.Context(), a.UserID, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		fmt.Println(st.Reply)
		return nil
	},
}
