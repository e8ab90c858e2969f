package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/scamshield/agent/internal/config"
	"github.com/scamshield/agent/internal/dispatch"
	"github.com/scamshield/agent/internal/ingress"
	"github.com/scamshield/agent/internal/metrics"
	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/orchestrator"
	"github.com/scamshield/agent/internal/progress"
	"github.com/scamshield/agent/internal/reasoner"
	"github.com/scamshield/agent/internal/registry"
	"github.com/scamshield/agent/internal/store"
	"github.com/scamshield/agent/internal/tasktracker"
	"github.com/scamshield/agent/internal/tools/domainrep"
	"github.com/scamshield/agent/internal/tools/phonevalidator"
	"github.com/scamshield/agent/internal/tools/websearch"
)

const retentionSweepInterval = 6 * time.Hour

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	scamRegistry := mustRegistry(ctx, cfg)

	var exaCache *redis.Client
	if cfg.Exa.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Exa.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		exaCache = redis.NewClient(opts)
	}

	searchTool := websearch.New(
		websearch.NewHTTPProvider(cfg.Exa.APIKey, "https://api.exa.ai/search"),
		exaCache,
		websearch.Config{
			CacheTTL:       cfg.Exa.CacheTTL,
			MaxResults:     cfg.Exa.MaxResults,
			DailyBudget:    cfg.Exa.DailyBudget,
			PricePerSearch: cfg.Exa.PricePerSearch,
		},
	)

	domainTool := domainrep.New(domainrep.Config{
		VirusTotalAPIKey:   cfg.DomainRep.VirusTotalAPIKey,
		SafeBrowsingAPIKey: cfg.DomainRep.SafeBrowsingAPIKey,
		CacheTTL:           cfg.DomainRep.CacheTTL,
	})

	phoneTool := phonevalidator.New(defaultRegion)

	progressRedis := exaCache
	hub := progress.NewHub(progressRedis)

	g := mustGenkit(ctx, cfg)
	var rzr *reasoner.Reasoner
	if g != nil {
		rzr = reasoner.New(g, cfg.LLM.LLMModelSmart)
	} else {
		rzr = reasoner.New(nil, "")
	}

	resultStore := mustStore(ctx, cfg)
	if resultStore != nil {
		resultStore.StartRetentionSweep(retentionSweepInterval)
		defer resultStore.Close()
	}

	tracker := tasktracker.New()
	publisher := &dispatch.TrackingPublisher{Hub: hub, Tracker: tracker}

	orch := orchestrator.New(scamRegistry, searchTool, domainTool, phoneTool, nil, rzr, storeAdapter{resultStore}, publisher, defaultRegion)
	disp := dispatch.New(orch, tracker, 10)

	var classifier ingress.FastClassifier
	if g != nil {
		classifier = ingress.NewGenkitClassifier(g, cfg.LLM.LLMModelFast)
	}

	rec := metrics.NewRecorder()
	server := ingress.New(ingress.Config{
		EnableMCPAgent:   cfg.Ingress.EnableMCPAgent,
		WorkerHealthWait: cfg.Ingress.WorkerHealthWait,
		DefaultRegion:    defaultRegion,
		WSBaseURL:        "ws://localhost:" + cfg.Ingress.Port,
	}, disp, disp, tracker, classifier, rec)

	router := server.Router()
	router.GET("/ws/agent-progress/:task_id", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request, c.Param("task_id"))
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Ingress.Port,
		Handler: router,
	}

	go func() {
		log.Printf("agentd listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}
}

const defaultRegion = "US"

func mustRegistry(ctx context.Context, cfg *config.Config) registry.ScamRegistry {
	if cfg.Registry.URL == "" {
		log.Println("no registry database configured, using in-memory registry")
		return registry.NewMemoryRegistry()
	}
	reg, err := registry.NewPostgresRegistry(ctx, cfg.Registry.URL)
	if err != nil {
		log.Fatalf("failed to connect to registry database: %v", err)
	}
	return reg
}

func mustStore(ctx context.Context, cfg *config.Config) *store.Store {
	if cfg.Store.URL == "" {
		log.Println("no results database configured, scan results will not be persisted")
		return nil
	}
	s, err := store.New(ctx, cfg.Store.URL)
	if err != nil {
		log.Fatalf("failed to connect to results database: %v", err)
	}
	return s
}

func mustGenkit(ctx context.Context, cfg *config.Config) *genkit.Genkit {
	if cfg.LLM.APIKey == "" {
		log.Println("no LLM API key configured, reasoner will run in heuristic-only mode")
		return nil
	}
	return genkit.Init(
		ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: cfg.LLM.APIKey}),
		genkit.WithDefaultModel(cfg.LLM.LLMModelSmart),
	)
}

// storeAdapter lets a nil *store.Store satisfy orchestrator.ResultStore
// as a no-op, so the orchestrator works even with no database configured.
type storeAdapter struct{ s *store.Store }

func (a storeAdapter) SaveResult(ctx context.Context, result models.AgentResult) error {
	if a.s == nil {
		return nil
	}
	return a.s.SaveResult(ctx, result)
}
