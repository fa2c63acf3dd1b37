package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage default processing settings",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the stored defaults",
	Long: `Persists new default processing settings. Flags not given keep their
current value. The configuration is validated before anything is written.`,
	Args: cobra.NoArgs,
	RunE: runConfigSet,
}

// Cleaning stage toggles for config set.
var (
	flagRemoveHeaders     bool
	flagRemoveFooters     bool
	flagRemovePageNumbers bool
	flagRemoveWhitespace  bool
	flagNormalizeQuotes   bool
	flagFixHyphenation    bool
)

func init() {
	addChunkingFlags(configSetCmd)
	configSetCmd.Flags().BoolVar(&flagRemoveHeaders, "remove-headers", true, "Strip repeated page headers")
	configSetCmd.Flags().BoolVar(&flagRemoveFooters, "remove-footers", true, "Strip repeated page footers")
	configSetCmd.Flags().BoolVar(&flagRemovePageNumbers, "remove-page-numbers", true, "Strip standalone page numbers")
	configSetCmd.Flags().BoolVar(&flagRemoveWhitespace, "remove-extra-whitespace", true, "Collapse runs of whitespace")
	configSetCmd.Flags().BoolVar(&flagNormalizeQuotes, "normalize-quotes", true, "Replace typographic quotes with ASCII")
	configSetCmd.Flags().BoolVar(&flagFixHyphenation, "fix-hyphenation", true, "Rejoin words split across line breaks")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cfg, err := configStore.Defaults()
	if err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())
	printConfig(cmd, cfg)
	return nil
}

func runConfigSet(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("remove-headers") {
		cfg.Cleaning.RemoveHeaders = flagRemoveHeaders
	}
	if flags.Changed("remove-footers") {
		cfg.Cleaning.RemoveFooters = flagRemoveFooters
	}
	if flags.Changed("remove-page-numbers") {
		cfg.Cleaning.RemovePageNumbers = flagRemovePageNumbers
	}
	if flags.Changed("remove-extra-whitespace") {
		cfg.Cleaning.RemoveExtraWhitespace = flagRemoveWhitespace
	}
	if flags.Changed("normalize-quotes") {
		cfg.Cleaning.NormalizeQuotes = flagNormalizeQuotes
	}
	if flags.Changed("fix-hyphenation") {
		cfg.Cleaning.FixHyphenation = flagFixHyphenation
	}

	if err := configStore.SaveDefaults(cfg); err != nil {
		return fmt.Errorf("failed to save defaults: %w", err)
	}

	cmd.Printf("Saved defaults to %s\n\n", configStore.Path())
	printConfig(cmd, cfg)
	return nil
}

func printConfig(cmd *cobra.Command, cfg domain.ProcessConfig) {
	cmd.Println("[Chunking]")
	cmd.Printf("  Strategy: %s\n", cfg.Chunking.Strategy)
	cmd.Printf("  Chunk size: %d\n", cfg.Chunking.ChunkSize)
	cmd.Printf("  Overlap size: %d\n", cfg.Chunking.OverlapSize)
	cmd.Printf("  Min chunk size: %d\n", cfg.Chunking.MinChunkSize)
	cmd.Printf("  Respect boundaries: %t\n", cfg.Chunking.RespectBoundaries)
	cmd.Println()
	cmd.Println("[Cleaning]")
	cmd.Printf("  Remove headers: %t\n", cfg.Cleaning.RemoveHeaders)
	cmd.Printf("  Remove footers: %t\n", cfg.Cleaning.RemoveFooters)
	cmd.Printf("  Remove page numbers: %t\n", cfg.Cleaning.RemovePageNumbers)
	cmd.Printf("  Remove extra whitespace: %t\n", cfg.Cleaning.RemoveExtraWhitespace)
	cmd.Printf("  Normalize quotes: %t\n", cfg.Cleaning.NormalizeQuotes)
	cmd.Printf("  Fix hyphenation: %t\n", cfg.Cleaning.FixHyphenation)
}
