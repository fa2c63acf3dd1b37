package driven

import "context"

// ConceptScorer ranks the key phrases of a text by salience.
// The metadata extractor treats it as a pluggable capability: a scorer
// failure omits the concepts field instead of aborting the run.
type ConceptScorer interface {
	// Score returns phrases ranked most-salient first. The limit caps the
	// result; implementations may return fewer.
	Score(ctx context.Context, text string, limit int) ([]string, error)
}
