// Command orchestrator runs the code-generation orchestrator: it loads
// configuration, wires every component the pipeline depends on, and serves
// the HTTP/WebSocket API (spec §6) until told to stop.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/api"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/budget"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/bundlestore"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/config"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/eventbus"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/gate"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/orchestrator"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/retry"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/scheduler"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/signer"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/subagent"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/taskstore"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	bus := eventbus.New(cfg.EventBus.HistorySize)
	budgetMgr := budget.NewManager(cfg.Budget.TotalTokens, budget.WithWarnThreshold(cfg.Budget.WarnThreshold))
	store := taskstore.New(getEnv("TASK_STORE_DIR", ""))
	retryHandler := retry.NewHandler(retry.Config{DelaySchedule: retry.DefaultDelaySchedule, MaxRetries: len(retry.DefaultDelaySchedule)})
	g := gate.New(cfg.Gate.CoverageThreshold, cfg.Gate.SkipChecks)

	sgnr := signer.New()
	if err := sgnr.Initialize(cfg.Signer.KeyDir); err != nil {
		log.Fatalf("failed to initialize bundle signer: %v", err)
	}

	llmClient := llm.NewHTTPClient(getEnv("LLM_ENDPOINT", "https://api.openai.com/v1/chat/completions"), os.Getenv("LLM_API_KEY"))

	sched := scheduler.New(buildAgents(cfg, budgetMgr, llmClient))

	var bundles *bundlestore.Store
	if getEnv("ENABLE_BUNDLE_STORE", "false") == "true" {
		dbCfg, err := bundlestore.LoadConfigFromEnv()
		if err != nil {
			log.Fatalf("failed to load bundle store configuration: %v", err)
		}
		bundles, err = bundlestore.NewStore(ctx, dbCfg)
		if err != nil {
			log.Fatalf("failed to connect bundle store: %v", err)
		}
		log.Println("connected to durable bundle store")
	}

	orch := orchestrator.New(orchestrator.Config{
		RequireApproval:   cfg.Orchestrator.RequireApproval,
		ApprovalTimeout:   cfg.Orchestrator.ApprovalTimeout,
		CoverageThreshold: cfg.Gate.CoverageThreshold,
		Model:             cfg.Orchestrator.Model,
		Temperature:       cfg.Orchestrator.Temperature,
		MaxOutputTokens:   cfg.Orchestrator.MaxOutputTokens,
	}, orchestrator.Deps{
		Budget:    budgetMgr,
		Bus:       bus,
		Store:     store,
		Retry:     retryHandler,
		Scheduler: sched,
		Gate:      g,
		Signer:    sgnr,
		LLM:       llmClient,
		Analyzer:  orchestrator.JSONAnalyzer{Model: cfg.Orchestrator.Model},
		Planner:   orchestrator.JSONPlanner{Model: cfg.Orchestrator.Model},
		Bundles:   bundles,
	})

	srv := api.NewServer(orch, store, bus)

	log.Printf("starting codegen orchestrator")
	log.Printf("http addr: %s", cfg.HTTP.Addr)
	log.Printf("config dir: %s", *configDir)
	stats := cfg.Stats()
	log.Printf("sub-agents registered: %d", stats.SubAgents)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(cfg.HTTP.Addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("http server failed: %v", err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
		if bundles != nil {
			if err := bundles.Close(); err != nil {
				log.Printf("error closing bundle store: %v", err)
			}
		}
	}
}

// buildAgents constructs one scheduler.Agent per registered kind, wiring
// each to its own token-budget slice from the sub-agent registry.
func buildAgents(cfg *config.Config, budgetMgr *budget.Manager, llmClient llm.Client) map[scheduler.Kind]scheduler.Agent {
	agents := make(map[scheduler.Kind]scheduler.Agent)

	for _, kind := range []string{"codegen", "testgen", "migration"} {
		names := cfg.SubAgentRegistry.ByKind(kind)
		if len(names) == 0 {
			continue
		}
		sa, err := cfg.GetSubAgent(names[0])
		if err != nil {
			log.Fatalf("failed to resolve sub-agent %s: %v", names[0], err)
		}

		deps := subagent.Deps{
			LLM:             llmClient,
			Budget:          budgetMgr,
			Category:        models.CategoryAgentic,
			Model:           sa.Model,
			Temperature:     sa.Temperature,
			MaxOutputTokens: sa.MaxOutputTokens,
		}

		switch kind {
		case "codegen":
			agents[scheduler.KindCodeGen] = subagent.NewCodeGen(deps, sa.TokenBudget)
		case "testgen":
			agents[scheduler.KindTestGen] = subagent.NewTestGen(deps, sa.TokenBudget)
		case "migration":
			agents[scheduler.KindMigration] = subagent.NewMigration(deps, getEnv("MIGRATION_DATABASE", "postgres"), sa.TokenBudget)
		}
	}

	return agents
}
