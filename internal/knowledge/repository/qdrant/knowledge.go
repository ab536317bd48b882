package qdrant

import (
	"context"
	"fmt"
	"sync"

	"repo-autobot/internal/knowledge/repository"
	pkgLog "repo-autobot/pkg/log"
	pkgQdrant "repo-autobot/pkg/qdrant"
	"repo-autobot/pkg/voyage"
)

const (
	payloadRepoKey = "repo_key"
	payloadPath    = "path"
	payloadIndex   = "chunk_index"
	payloadContent = "content"

	embedBatchSize = 64
	distanceCosine = "Cosine"
)

type implRepository struct {
	client         *pkgQdrant.Client
	embedder       voyage.IVoyage
	collectionName string
	vectorSize     int
	l              pkgLog.Logger

	mu    sync.Mutex
	ready bool
}

// New creates a new Qdrant repository. The collection is created on first
// write when it does not exist.
func New(client *pkgQdrant.Client, embedder voyage.IVoyage, collectionName string, vectorSize int, l pkgLog.Logger) repository.VectorRepository {
	return &implRepository{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		l:              l,
	}
}

// UpsertChunks embeds chunks in batches and stores them.
func (r *implRepository) UpsertChunks(ctx context.Context, opt repository.UpsertChunksOptions) error {
	if len(opt.Chunks) == 0 {
		return nil
	}
	if err := r.ensureCollection(ctx); err != nil {
		return err
	}

	for start := 0; start < len(opt.Chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(opt.Chunks))
		batch := opt.Chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Path + "\n" + c.Content
		}
		vectors, err := r.embedder.EmbedAs(ctx, texts, voyage.InputTypeDocument)
		if err != nil {
			r.l.Errorf(ctx, "knowledge.qdrant.UpsertChunks: failed to embed batch %d-%d: %v", start, end, err)
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}

		points := make([]pkgQdrant.Point, len(batch))
		for i, c := range batch {
			points[i] = pkgQdrant.Point{
				ID:     c.ID,
				Vector: vectors[i],
				Payload: map[string]any{
					payloadRepoKey: c.RepoKey,
					payloadPath:    c.Path,
					payloadIndex:   c.Index,
					payloadContent: c.Content,
				},
			}
		}

		if err := r.client.UpsertPoints(ctx, r.collectionName, pkgQdrant.UpsertPointsRequest{Points: points}); err != nil {
			r.l.Errorf(ctx, "knowledge.qdrant.UpsertChunks: failed to upsert points: %v", err)
			return fmt.Errorf("failed to upsert points: %w", err)
		}
	}

	r.l.Infof(ctx, "knowledge.qdrant.UpsertChunks: stored %d chunks", len(opt.Chunks))
	return nil
}

// Search performs semantic search restricted to one repository.
func (r *implRepository) Search(ctx context.Context, opt repository.SearchOptions) ([]repository.SearchResult, error) {
	vectors, err := r.embedder.EmbedAs(ctx, []string{opt.Query}, voyage.InputTypeQuery)
	if err != nil || len(vectors) == 0 {
		r.l.Errorf(ctx, "knowledge.qdrant.Search: failed to generate query embedding: %v", err)
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	filter := pkgQdrant.MatchField(payloadRepoKey, opt.RepoKey)
	resp, err := r.client.SearchPoints(ctx, r.collectionName, pkgQdrant.SearchRequest{
		Vector:      vectors[0],
		Limit:       opt.Limit,
		WithPayload: true,
		Filter:      &filter,
	})
	if err != nil {
		r.l.Errorf(ctx, "knowledge.qdrant.Search: failed to search: %v", err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]repository.SearchResult, 0, len(resp.Result))
	for _, scored := range resp.Result {
		path, ok := scored.Payload[payloadPath].(string)
		if !ok {
			r.l.Warnf(ctx, "knowledge.qdrant.Search: point %v has no path in payload", scored.ID)
			continue
		}
		content, _ := scored.Payload[payloadContent].(string)
		results = append(results, repository.SearchResult{
			Path:    path,
			Content: content,
			Score:   scored.Score,
		})
	}

	r.l.Infof(ctx, "knowledge.qdrant.Search: found %d results in %s", len(results), opt.RepoKey)
	return results, nil
}

// DeleteByRepo removes every point of repoKey.
func (r *implRepository) DeleteByRepo(ctx context.Context, repoKey string) error {
	if err := r.ensureCollection(ctx); err != nil {
		return err
	}
	if err := r.client.DeleteByFilter(ctx, r.collectionName, pkgQdrant.MatchField(payloadRepoKey, repoKey)); err != nil {
		r.l.Errorf(ctx, "knowledge.qdrant.DeleteByRepo: failed to delete %s: %v", repoKey, err)
		return fmt.Errorf("failed to delete points: %w", err)
	}
	r.l.Infof(ctx, "knowledge.qdrant.DeleteByRepo: deleted points of %s", repoKey)
	return nil
}

func (r *implRepository) ensureCollection(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}
	err := r.client.EnsureCollection(ctx, pkgQdrant.CreateCollectionRequest{
		Name:    r.collectionName,
		Vectors: pkgQdrant.VectorConfig{Size: r.vectorSize, Distance: distanceCosine},
	})
	if err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", r.collectionName, err)
	}
	r.ready = true
	return nil
}
