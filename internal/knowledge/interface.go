package knowledge

import "context"

// Store is the per-repository knowledge base used for retrieval.
type Store interface {
	// Upsert chunks and stores docs under repoKey and returns the chunk count.
	Upsert(ctx context.Context, repoKey string, docs []Document) (int, error)
	// Query returns up to limit chunks of repoKey most similar to text.
	Query(ctx context.Context, repoKey, text string, limit int) ([]Result, error)
	// DeleteRepository removes everything stored under repoKey.
	DeleteRepository(ctx context.Context, repoKey string) error
}
