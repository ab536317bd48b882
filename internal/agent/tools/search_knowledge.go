package tools

import (
	"context"
	"fmt"

	"repo-autobot/internal/agent"
	"repo-autobot/internal/knowledge"
)

const defaultSearchLimit = 5

// SearchKnowledgeTool implements semantic search over the indexed repository.
type SearchKnowledgeTool struct {
	store knowledge.Store
}

// NewSearchKnowledgeTool creates a new search knowledge tool.
func NewSearchKnowledgeTool(store knowledge.Store) agent.Tool {
	return &SearchKnowledgeTool{store: store}
}

func (t *SearchKnowledgeTool) Name() agent.Capability { return agent.CapSearchKnowledge }

func (t *SearchKnowledgeTool) Description() string {
	return "Search the indexed source code of this repository using a natural language query. Returns matching code chunks with file paths and similarity scores."
}

func (t *SearchKnowledgeTool) Parameters() map[string]any {
	return schema([]string{"query"}, map[string]any{
		"query": prop("string", "Natural language search query"),
		"limit": prop("integer", "Maximum number of results (default 5)"),
	})
}

func (t *SearchKnowledgeTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if ws == nil {
		return nil, agent.ErrWorkspaceNotReady
	}
	query, err := requiredString(params, "query")
	if err != nil {
		return nil, err
	}
	limit := optionalInt(params, "limit", defaultSearchLimit)

	found, err := t.store.Query(ctx, ws.Repo.Key(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]map[string]any, 0, len(found))
	for _, r := range found {
		results = append(results, map[string]any{
			"path":    r.Path,
			"content": r.Content,
			"score":   r.Score,
		})
	}

	return map[string]any{
		"results": results,
		"count":   len(results),
	}, nil
}
