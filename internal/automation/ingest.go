package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"repo-autobot/internal/knowledge"
	"repo-autobot/internal/model"
)

// ingestRepository refreshes the knowledge store from the default branch.
// The checkout under RootDir/knowledge is kept between runs and reused.
func (uc *usecase) ingestRepository(ctx context.Context, task model.WorkflowTask) error {
	if uc.deps.Knowledge == nil {
		return ErrKnowledgeDisabled
	}
	key := task.Repo.Key()

	mu := uc.repoLock(key)
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(uc.cfg.RootDir, ingestDir, key)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("ingest %s: %w", key, err)
	}
	if err := uc.deps.Git.Clone(ctx, task.Repo, dir, ""); err != nil {
		return fmt.Errorf("ingest %s: %w", key, err)
	}
	// A reused checkout is only fetched by Clone.
	branch, err := uc.deps.Git.CurrentBranch(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", key, err)
	}
	if err := uc.deps.Git.Checkout(ctx, dir, branch); err != nil {
		return fmt.Errorf("ingest %s: %w", key, err)
	}

	docs, err := knowledge.Collect(dir, uc.cfg.ValidFileTypes, uc.cfg.MaxFileBytes)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", key, err)
	}
	if err := uc.deps.Knowledge.DeleteRepository(ctx, key); err != nil {
		return fmt.Errorf("ingest %s: %w", key, err)
	}
	n, err := uc.deps.Knowledge.Upsert(ctx, key, docs)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", key, err)
	}

	uc.l.Infof(ctx, "%s: %s indexed %d files as %d chunks from %s", LogPrefixIngest, key, len(docs), n, branch)
	return nil
}
