package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repo-autobot/config"
	"repo-autobot/internal/agent/orchestrator"
	"repo-autobot/internal/agent/tools"
	"repo-autobot/internal/automation"
	"repo-autobot/internal/classifier"
	"repo-autobot/internal/httpserver"
	"repo-autobot/internal/knowledge"
	knowledgeQdrant "repo-autobot/internal/knowledge/repository/qdrant"
	"repo-autobot/internal/ledger/repository/sqlite"
	"repo-autobot/internal/webhook"
	"repo-autobot/pkg/git"
	"repo-autobot/pkg/github"
	"repo-autobot/pkg/llmprovider"
	"repo-autobot/pkg/log"
	pkgQdrant "repo-autobot/pkg/qdrant"
	"repo-autobot/pkg/voyage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting repo-autobot...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "Bot login: %s", cfg.GitHub.BotLogin)

	// 3. GitHub and git clients
	githubClient, err := github.NewClient(github.Config{
		Token:    cfg.GitHub.Token,
		APIURL:   cfg.GitHub.APIURL,
		BotLogin: cfg.GitHub.BotLogin,
	}, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize GitHub client: ", err)
		return
	}

	gitClient := git.New(git.Config{
		CloneURL:    cfg.GitHub.CloneURL,
		Token:       cfg.GitHub.Token,
		AuthorName:  cfg.GitHub.AuthorName,
		AuthorEmail: cfg.GitHub.AuthorEmail,
		Formatter:   cfg.Bot.Formatter,
	}, logger)

	// 4. LLM providers
	providers, warnings, err := llmprovider.InitializeProviders(&cfg.LLM)
	if err != nil {
		logger.Error(ctx, "Failed to initialize LLM providers: ", err)
		return
	}
	for _, w := range warnings {
		logger.Warnf(ctx, "LLM provider skipped: %s", w)
	}
	llmManager := llmprovider.NewManager(providers, llmprovider.ManagerConfig(&cfg.LLM), logger)
	logger.Infof(ctx, "LLM providers ready: %d", len(providers))

	// 5. Knowledge store (optional)
	var store knowledge.Store
	if cfg.Qdrant.URL != "" && cfg.Voyage.APIKey != "" {
		embedder, vErr := voyage.New(cfg.Voyage.APIKey)
		if vErr != nil {
			logger.Error(ctx, "Failed to initialize Voyage client: ", vErr)
			return
		}
		embedder = embedder.WithModel(cfg.Voyage.Model)

		qdrantClient := pkgQdrant.NewClient(cfg.Qdrant.URL).WithAPIKey(cfg.Qdrant.APIKey)
		repo := knowledgeQdrant.New(qdrantClient, embedder, cfg.Qdrant.CollectionName, cfg.Qdrant.VectorSize, logger)
		store = knowledge.New(repo, knowledge.Config{
			ChunkSize: cfg.Knowledge.ChunkSize,
			Limit:     cfg.Knowledge.Limit,
		}, logger)
		logger.Infof(ctx, "Knowledge store enabled (collection %s)", cfg.Qdrant.CollectionName)
	} else {
		logger.Warn(ctx, "Knowledge store disabled: qdrant.url or voyage.api_key is missing")
	}

	// 6. Delivery ledger
	db, err := sqlite.NewDB(cfg.Ledger.Path)
	if err != nil {
		logger.Error(ctx, "Failed to open ledger: ", err)
		return
	}
	defer db.Close()
	if err := sqlite.RunMigrations(db.Writer); err != nil {
		logger.Error(ctx, "Failed to migrate ledger: ", err)
		return
	}
	deliveries := sqlite.NewDeliveryRepo(db)

	// 7. Agents and workflows
	registry, err := tools.NewRegistry(tools.Deps{
		Git:            gitClient,
		PullRequests:   githubClient,
		Knowledge:      store,
		ValidFileTypes: cfg.Bot.ValidFileTypes,
		Now:            time.Now,
	})
	if err != nil {
		logger.Error(ctx, "Failed to build tool registry: ", err)
		return
	}

	engine := orchestrator.New(orchestrator.Config{
		MaxSteps:      cfg.Orchestrator.MaxSteps,
		MaxToolRounds: cfg.Orchestrator.MaxToolRounds,
	}, logger)

	automationUC := automation.New(automation.Deps{
		Engine:    engine,
		LLM:       llmManager,
		Tools:     registry,
		GitHub:    githubClient,
		Git:       gitClient,
		Knowledge: store,
		Ledger:    deliveries,
		Now:       time.Now,
	}, automation.Config{
		RootDir:        cfg.Bot.RootDir,
		CommentMarker:  cfg.Bot.CommentMarker,
		ValidFileTypes: cfg.Bot.ValidFileTypes,
		RunTimeout:     cfg.Automation.RunTimeout,
		KnowledgeLimit: cfg.Knowledge.Limit,
	}, logger)

	// 8. Webhook delivery
	var webhookHandler *webhook.Handler
	if cfg.Webhook.Enabled {
		cls := classifier.New(classifier.Config{
			BotLogin:     cfg.GitHub.BotLogin,
			TriggerToken: cfg.Bot.TriggerToken,
		}, githubClient, logger)

		webhookHandler = webhook.NewHandler(cls, automationUC, deliveries, webhook.SecurityConfig{
			Secret:          cfg.Webhook.Secret,
			AllowedIPs:      cfg.Webhook.AllowedIPs,
			RateLimitPerMin: cfg.Webhook.RateLimitPerMin,
		}, logger)
		logger.Info(ctx, "GitHub webhook enabled at /webhook/github")

		if cfg.Webhook.TunnelAPI != "" {
			go func() {
				url, tErr := detectTunnelURL(ctx, cfg.Webhook.TunnelAPI)
				if tErr != nil {
					logger.Warnf(ctx, "Could not detect tunnel URL: %v", tErr)
					return
				}
				logger.Infof(ctx, "GitHub webhook payload URL: %s/webhook/github", url)
			}()
		}
	} else {
		logger.Warn(ctx, "GitHub webhook disabled")
	}

	// 9. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:         logger,
		Port:           cfg.HTTPServer.Port,
		Mode:           cfg.HTTPServer.Mode,
		Environment:    cfg.Environment.Name,
		WebhookHandler: webhookHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 10. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := automationUC.Shutdown(shutdownCtx); err != nil {
		logger.Warnf(shutdownCtx, "Workflows still running at shutdown: %v", err)
	}

	logger.Info(ctx, "Server stopped gracefully")
}
