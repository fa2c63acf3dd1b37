package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [doc-id]",
	Short: "Send a document's chunks to the vector store",
	Long: `Embeds the chunk set and writes it to the vector store. The document
must be in the completed state. Connectivity to the embedding service and
vector store is probed first; an unreachable collaborator fails fast
without touching the document.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collaborator connectivity",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	ctx := cmd.Context()
	if err := pipeline.Index(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to index: %w", err)
	}

	doc, err := pipeline.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Indexed %s\n", doc.ID)
	if doc.IndexingStats != nil {
		cmd.Printf("  Chunks: %d  Tokens: %d\n", doc.IndexingStats.ChunksCount, doc.IndexingStats.TotalTokens)
	}
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	status := pipeline.Collaborators(cmd.Context())
	cmd.Printf("Embedding service: %s\n", status.Embedder)
	cmd.Printf("Vector store: %s\n", status.VectorStore)
	return nil
}
