package knowledge

import (
	"context"
	"strings"

	"repo-autobot/internal/knowledge/repository"
)

func (s *implStore) Upsert(ctx context.Context, repoKey string, docs []Document) (int, error) {
	if repoKey == "" {
		return 0, ErrEmptyRepoKey
	}

	var records []repository.ChunkRecord
	for _, doc := range docs {
		for _, c := range Split(repoKey, doc, s.cfg.ChunkSize) {
			records = append(records, repository.ChunkRecord{
				ID:      c.ID,
				RepoKey: c.RepoKey,
				Path:    c.Path,
				Index:   c.Index,
				Content: c.Content,
			})
		}
	}
	if err := s.repo.UpsertChunks(ctx, repository.UpsertChunksOptions{Chunks: records}); err != nil {
		return 0, err
	}
	s.l.Infof(ctx, "knowledge.Upsert: %s: %d documents, %d chunks", repoKey, len(docs), len(records))
	return len(records), nil
}

func (s *implStore) Query(ctx context.Context, repoKey, text string, limit int) ([]Result, error) {
	if repoKey == "" {
		return nil, ErrEmptyRepoKey
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	found, err := s.repo.Search(ctx, repository.SearchOptions{RepoKey: repoKey, Query: text, Limit: limit})
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(found))
	for i, f := range found {
		results[i] = Result{Path: f.Path, Content: f.Content, Score: f.Score}
	}
	return results, nil
}

func (s *implStore) DeleteRepository(ctx context.Context, repoKey string) error {
	if repoKey == "" {
		return ErrEmptyRepoKey
	}
	return s.repo.DeleteByRepo(ctx, repoKey)
}

// Format renders results as a context block for prompts.
func Format(results []Result) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString("### ")
		b.WriteString(r.Path)
		b.WriteString("\n")
		b.WriteString(r.Content)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
