package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bindulearn/bindu/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the learner's conversation history",
	Long:  "Deletes the conversation log for the learner, which resets onboarding, pending quizzes, and the current topic. Courses and quiz results are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete without --yes")
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		userID := resolveUserID(cmd)
		n, err := s.ConversationRepo().DeleteByUser(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("delete conversations: %w", err)
		}
		fmt.Printf("Deleted %d turn(s) for %s.\n", n, userID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
