package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document",
	Long: `Register a file with the pipeline. The document enters the uploaded
state; text extraction happens when processing starts.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes the document, its chunks and any indexed vectors.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// uploadAndProcess queues processing right after upload.
var uploadAndProcess bool

func init() {
	uploadCmd.Flags().BoolVar(&uploadAndProcess, "process", false, "Queue processing with default settings after upload")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx := cmd.Context()
	doc, err := pipeline.Upload(ctx, filepath.Base(path), data)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) && registry != nil {
			return fmt.Errorf("%w: supported types are %s", err, strings.Join(registry.List(), ", "))
		}
		return fmt.Errorf("failed to upload: %w", err)
	}

	cmd.Printf("Uploaded %s (%d bytes)\n", doc.Filename, doc.FileSize)
	cmd.Printf("Document ID: %s\n", doc.ID)

	if !uploadAndProcess {
		return nil
	}
	cfg, err := storeDefaults()
	if err != nil {
		return err
	}
	if err := pipeline.Process(ctx, doc.ID, cfg); err != nil {
		return fmt.Errorf("failed to queue processing: %w", err)
	}
	cmd.Println("Processing queued")
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	docs, err := pipeline.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents")
		return nil
	}

	for i := range docs {
		doc := &docs[i]
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    File: %s  Status: %s  Chunks: %d\n", doc.Filename, doc.Status, len(doc.Chunks))
		if doc.LastError != nil {
			cmd.Printf("    Error: [%s] %s\n", doc.LastError.Kind, doc.LastError.Message)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	doc, err := pipeline.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n", doc.ID)
	cmd.Printf("  File: %s (%s, %d bytes)\n", doc.Filename, doc.FileType, doc.FileSize)
	cmd.Printf("  Status: %s\n", doc.Status)
	cmd.Printf("  Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	if doc.LastError != nil {
		cmd.Printf("  Last error: [%s] %s\n", doc.LastError.Kind, doc.LastError.Message)
	}

	if doc.CleanedText != "" {
		stats := doc.CleaningStats
		cmd.Println("\nCleaning:")
		cmd.Printf("  %d -> %d characters (%.2f%% removed)\n",
			stats.OriginalLength, stats.CleanedLength, stats.ReductionPercentage)
		if len(stats.RemovedElements) > 0 {
			cmd.Printf("  Removed: %s\n", strings.Join(stats.RemovedElements, ", "))
		}
	}

	if len(doc.Chunks) > 0 {
		cmd.Println("\nChunks:")
		cmd.Printf("  Count: %d  Strategy: %s  Size: %d  Overlap: %d\n",
			len(doc.Chunks), doc.Config.Chunking.Strategy,
			doc.Config.Chunking.ChunkSize, doc.Config.Chunking.OverlapSize)
	}

	printMetadata(cmd, doc.Metadata)

	if doc.IndexingStats != nil {
		s := doc.IndexingStats
		cmd.Println("\nIndexing:")
		cmd.Printf("  Chunks: %d  Tokens: %d\n", s.ChunksCount, s.TotalTokens)
		cmd.Printf("  Indexed at: %s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printMetadata(cmd *cobra.Command, meta domain.DocumentMetadata) {
	if meta.Language == "" && len(meta.Concepts) == 0 && len(meta.Authors) == 0 && meta.Structure == nil {
		return
	}
	cmd.Println("\nMetadata:")
	if meta.Language != "" {
		cmd.Printf("  Language: %s\n", meta.Language)
	}
	if len(meta.Authors) > 0 {
		cmd.Printf("  Authors: %s\n", strings.Join(meta.Authors, ", "))
	}
	if len(meta.Concepts) > 0 {
		cmd.Printf("  Concepts: %s\n", strings.Join(meta.Concepts, ", "))
	}
	if meta.Structure != nil {
		cmd.Printf("  Structure: %d chapters, %d sections", len(meta.Structure.Chapters), len(meta.Structure.Sections))
		if meta.Structure.HasTOC {
			cmd.Printf(", table of contents")
		}
		cmd.Println()
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	if err := pipeline.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
