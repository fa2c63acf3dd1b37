package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/core/domain"
)

func TestAggregateFoldsRunParameters(t *testing.T) {
	agg := NewStatsAggregator()

	cfg := domain.DefaultProcessConfig()
	cfg.Chunking.ChunkSize = 300
	cfg.Chunking.OverlapSize = 60
	cfg.Chunking.Strategy = domain.StrategyFixed

	doc := &domain.Document{
		Chunks: []domain.Chunk{
			{Content: "hello world foo"},
			{Content: "bar baz"},
		},
		Config: cfg,
		CleaningStats: domain.CleaningStats{
			ReductionPercentage: 12.5,
		},
	}

	before := time.Now().UTC()
	stats := agg.Aggregate(doc)

	assert.Equal(t, 2, stats.ChunksCount)
	assert.GreaterOrEqual(t, stats.TotalTokens, 5)
	assert.Equal(t, domain.StrategyFixed, stats.ChunkingStrategy)
	assert.Equal(t, 300, stats.ChunkSize)
	assert.Equal(t, 60, stats.ChunkOverlap)
	assert.True(t, stats.CleaningApplied)
	assert.InDelta(t, 12.5, stats.CleanedPercentage, 0.001)
	assert.False(t, stats.Timestamp.Before(before))
}

func TestAggregateWithCleaningDisabled(t *testing.T) {
	agg := NewStatsAggregator()
	doc := &domain.Document{
		Config: domain.ProcessConfig{Chunking: domain.DefaultChunkConfig()},
	}

	stats := agg.Aggregate(doc)
	assert.False(t, stats.CleaningApplied)
	assert.Zero(t, stats.ChunksCount)
	assert.Zero(t, stats.TotalTokens)
}

func TestCountTokensNeverZeroForWords(t *testing.T) {
	agg := NewStatsAggregator()
	require.Greater(t, agg.CountTokens("one two three"), 0)
	assert.Zero(t, agg.CountTokens(""))
}
