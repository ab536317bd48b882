package main

import (
	"context"
	"fmt"
	"os"

	"repo-autobot/config"
	"repo-autobot/internal/automation"
	"repo-autobot/internal/knowledge"
	knowledgeQdrant "repo-autobot/internal/knowledge/repository/qdrant"
	"repo-autobot/internal/model"
	"repo-autobot/pkg/git"
	"repo-autobot/pkg/log"
	pkgQdrant "repo-autobot/pkg/qdrant"
	"repo-autobot/pkg/voyage"
)

// index-repo fills the knowledge store for one or more repositories without
// waiting for a push to their default branch.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/index-repo/main.go <path/to/config.yaml> <owner/name>...")
		fmt.Println("Example: go run scripts/index-repo/main.go config/config.yaml octo/hello-world")
		os.Exit(1)
	}
	configPath := os.Args[1]

	os.Setenv("CONFIG_PATH", configPath)
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := log.Init(log.ZapConfig{
		Level:        "info",
		Mode:         "development",
		ColorEnabled: true,
	})

	ctx := context.Background()

	if cfg.Qdrant.URL == "" || cfg.Voyage.APIKey == "" {
		logger.Fatal(ctx, "qdrant.url and voyage.api_key are required to index repositories")
	}

	embedder, err := voyage.New(cfg.Voyage.APIKey)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize Voyage API: %v", err)
	}
	qdrantClient := pkgQdrant.NewClient(cfg.Qdrant.URL).WithAPIKey(cfg.Qdrant.APIKey)
	vectorRepo := knowledgeQdrant.New(qdrantClient, embedder.WithModel(cfg.Voyage.Model), cfg.Qdrant.CollectionName, cfg.Qdrant.VectorSize, logger)
	store := knowledge.New(vectorRepo, knowledge.Config{
		ChunkSize: cfg.Knowledge.ChunkSize,
		Limit:     cfg.Knowledge.Limit,
	}, logger)

	gitClient := git.New(git.Config{
		CloneURL:    cfg.GitHub.CloneURL,
		Token:       cfg.GitHub.Token,
		AuthorName:  cfg.GitHub.AuthorName,
		AuthorEmail: cfg.GitHub.AuthorEmail,
	}, logger)

	uc := automation.New(automation.Deps{
		Git:       gitClient,
		Knowledge: store,
	}, automation.Config{
		RootDir:        cfg.Bot.RootDir,
		ValidFileTypes: cfg.Bot.ValidFileTypes,
	}, logger)

	repos := os.Args[2:]
	successCount := 0
	for i, fullPath := range repos {
		repo, err := model.ParseRepository(fullPath)
		if err != nil {
			logger.Errorf(ctx, "Skipping %q: %v", fullPath, err)
			continue
		}
		task := model.WorkflowTask{Kind: model.WorkflowIngestRepository, Repo: repo}
		if err := uc.Run(ctx, task); err != nil {
			logger.Errorf(ctx, "Failed to index %s: %v", repo.FullPath(), err)
			continue
		}
		logger.Infof(ctx, "Indexed repository %d/%d: %s", i+1, len(repos), repo.FullPath())
		successCount++
	}

	logger.Infof(ctx, "Indexing complete! %d/%d repositories indexed.", successCount, len(repos))
}
