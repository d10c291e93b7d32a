package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/rag"
	"github.com/bindulearn/bindu/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Add study material to the retrieval corpus",
	Long:  "Splits each file into chunks and stores them so answers and lessons can draw on your own material.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ingester := rag.NewIngester(s.DocumentRepo(), zap.NewNop())
		ctx := cmd.Context()

		total := 0
		for _, path := range args {
			n, err := ingester.IngestFile(ctx, path)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			fmt.Printf("%s: %d chunk(s)\n", path, n)
			total += n
		}

		count, err := s.DocumentRepo().Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunk(s); corpus now holds %d document(s).\n", total, count)
		return nil
	},
}
