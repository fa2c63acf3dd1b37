package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/core/domain"
)

var processCmd = &cobra.Command{
	Use:   "process [doc-id]",
	Short: "Run the preparation pipeline on an uploaded document",
	Long: `Extracts text, cleans it, splits it into chunks and extracts metadata.
Flags override the stored defaults for this run only.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [doc-id]",
	Short: "Re-run the pipeline with new settings",
	Long: `Replays cleaning, chunking and metadata extraction from the stored raw
text. Any in-flight run for the document is superseded and previous
indexing results are invalidated.`,
	Args: cobra.ExactArgs(1),
	RunE: runReprocess,
}

var retryCmd = &cobra.Command{
	Use:   "retry [doc-id]",
	Short: "Retry a failed document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetry,
}

// Chunking flag values, applied over the stored defaults when set.
var (
	flagStrategy          string
	flagChunkSize         int
	flagOverlapSize       int
	flagMinChunkSize      int
	flagRespectBoundaries bool
	flagNoCleaning        bool
)

func addChunkingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Chunking strategy: fixed, paragraph or semantic")
	cmd.Flags().IntVar(&flagChunkSize, "chunk-size", 0, "Target chunk size in characters")
	cmd.Flags().IntVar(&flagOverlapSize, "overlap-size", 0, "Characters repeated between consecutive chunks")
	cmd.Flags().IntVar(&flagMinChunkSize, "min-chunk-size", 0, "Smallest chunk the splitter may emit")
	cmd.Flags().BoolVar(&flagRespectBoundaries, "respect-boundaries", true, "Keep overlap cuts on natural boundaries")
	cmd.Flags().BoolVar(&flagNoCleaning, "no-cleaning", false, "Skip all text cleaning stages")
}

func init() {
	addChunkingFlags(processCmd)
	addChunkingFlags(reprocessCmd)

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(reprocessCmd)
	rootCmd.AddCommand(retryCmd)
}

// storeDefaults loads the stored default config, falling back to the
// domain defaults when no config store is wired.
func storeDefaults() (domain.ProcessConfig, error) {
	if configStore == nil {
		return domain.DefaultProcessConfig(), nil
	}
	cfg, err := configStore.Defaults()
	if err != nil {
		return domain.ProcessConfig{}, fmt.Errorf("failed to load defaults: %w", err)
	}
	return cfg, nil
}

// configFromFlags layers the chunking flags over the stored defaults.
// Only flags the user actually set are applied.
func configFromFlags(cmd *cobra.Command) (domain.ProcessConfig, error) {
	cfg, err := storeDefaults()
	if err != nil {
		return domain.ProcessConfig{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Chunking.Strategy = domain.ChunkStrategy(flagStrategy)
	}
	if flags.Changed("chunk-size") {
		cfg.Chunking.ChunkSize = flagChunkSize
	}
	if flags.Changed("overlap-size") {
		cfg.Chunking.OverlapSize = flagOverlapSize
	}
	if flags.Changed("min-chunk-size") {
		cfg.Chunking.MinChunkSize = flagMinChunkSize
	}
	if flags.Changed("respect-boundaries") {
		cfg.Chunking.RespectBoundaries = flagRespectBoundaries
	}
	if flagNoCleaning {
		cfg.Cleaning = domain.CleaningConfig{}
	}
	return cfg, nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := pipeline.Process(cmd.Context(), args[0], cfg); err != nil {
		return fmt.Errorf("failed to queue processing: %w", err)
	}
	cmd.Printf("Processing queued for %s (strategy %s, chunk size %d)\n",
		args[0], cfg.Chunking.Strategy, cfg.Chunking.ChunkSize)
	return nil
}

func runReprocess(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := pipeline.Reprocess(cmd.Context(), args[0], cfg); err != nil {
		return fmt.Errorf("failed to queue reprocessing: %w", err)
	}
	cmd.Printf("Reprocessing queued for %s (strategy %s, chunk size %d)\n",
		args[0], cfg.Chunking.Strategy, cfg.Chunking.ChunkSize)
	return nil
}

func runRetry(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	if err := pipeline.Retry(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to retry: %w", err)
	}
	cmd.Printf("Retry queued for %s\n", args[0])
	return nil
}
