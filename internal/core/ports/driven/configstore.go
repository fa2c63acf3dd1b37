package driven

import "github.com/docforge/docforge/internal/core/domain"

// ConfigStore provides the default run parameters handed to the pipeline
// at construction time. Implementations handle persistence (e.g., TOML
// files); defaults are an explicit value, never shared mutable state.
type ConfigStore interface {
	// Defaults returns the stored default configuration, falling back to
	// domain defaults for missing fields.
	Defaults() (domain.ProcessConfig, error)

	// SaveDefaults persists a new default configuration.
	SaveDefaults(cfg domain.ProcessConfig) error

	// Path returns the configuration file path.
	Path() string
}
