// Package cli implements the docforge command-line interface. Commands are
// thin adapters over the document pipeline; all state lives behind the
// driving ports.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/core/ports/driven"
	"github.com/docforge/docforge/internal/core/ports/driving"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Set before Execute via SetServices.
var (
	pipeline    driving.DocumentPipeline
	configStore driven.ConfigStore
	registry    driven.ExtractorRegistry
)

var rootCmd = &cobra.Command{
	Use:   "docforge",
	Short: "Prepare documents for vector search",
	Long: `Docforge turns raw documents into cleaned, chunked, metadata-enriched
text ready for embedding and vector search.

Upload a file, process it with a chunking strategy, then index the chunks
into the vector store. Use "docforge watch" to mirror a folder into the
pipeline automatically.`,
	SilenceUsage: true,
}

// Services bundles the collaborators the commands need.
type Services struct {
	Pipeline    driving.DocumentPipeline
	ConfigStore driven.ConfigStore
	Registry    driven.ExtractorRegistry
}

// SetServices injects the collaborators before Execute runs.
func SetServices(s Services) {
	pipeline = s.Pipeline
	configStore = s.ConfigStore
	registry = s.Registry
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. The context cancels long-running
// commands such as watch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
