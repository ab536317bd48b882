package repository

import (
	"context"
)

// VectorRepository persists chunk vectors (Qdrant).
type VectorRepository interface {
	UpsertChunks(ctx context.Context, opt UpsertChunksOptions) error
	Search(ctx context.Context, opt SearchOptions) ([]SearchResult, error)
	DeleteByRepo(ctx context.Context, repoKey string) error
}

// ChunkRecord is one chunk ready to be embedded.
type ChunkRecord struct {
	ID      string
	RepoKey string
	Path    string
	Index   int
	Content string
}

type UpsertChunksOptions struct {
	Chunks []ChunkRecord
}

// SearchOptions defines search parameters.
type SearchOptions struct {
	RepoKey string
	Query   string
	Limit   int
}

// SearchResult represents a semantic search result.
type SearchResult struct {
	Path    string
	Content string
	Score   float64
}
