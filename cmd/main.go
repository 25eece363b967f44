// jobmate-search-service
//
// Candidate search for recruiters.
// Exposes REST and gRPC APIs used by the Gateway to implement:
//   - searchCandidates(term, mode, page, pageSize, sponsorship)
//   - scoringConfig(tenant) / updateScoringConfig(tenant, weights)
//
// Keeps the candidate search index current: candidate-changed events arrive
// on the search:candidate-events stream (or POST /index/events), are
// sanitized and queued on search:index-jobs, and a pool of indexers embeds
// and upserts them. Exhausted jobs publish EVENT_INDEXING_FAILED to Redis.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"jobmate/search-service/internal/api"
	"jobmate/search-service/internal/classifier"
	"jobmate/search-service/internal/config"
	"jobmate/search-service/internal/db"
	"jobmate/search-service/internal/embedding"
	"jobmate/search-service/internal/grpcserver"
	"jobmate/search-service/internal/index"
	"jobmate/search-service/internal/indexing"
	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/queue"
	"jobmate/search-service/internal/sanitize"
	"jobmate/search-service/internal/scheduler"
	"jobmate/search-service/internal/scoring"
	"jobmate/search-service/internal/search"
	"jobmate/search-service/internal/skills"
	"jobmate/search-service/internal/vocabulary"
)

const version = "1.0.0"

const (
	jobStream    = "search:index-jobs"
	jobGroup     = "search-indexers"
	eventStream  = "search:candidate-events"
	eventGroup   = "search-service"
	consumerName = "search-service"
)

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[search-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[search-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("[search-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[search-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[search-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[search-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[search-service] Redis connected ✓")

	// ── Vocabulary ───────────────────────────────────────────────────────────
	vocab, err := vocabulary.Load(cfg.VocabularyPath)
	if err != nil {
		log.Fatalf("[search-service] Vocabulary: %v", err)
	}
	log.Printf("[search-service] Vocabulary v%d loaded (%d keywords)", vocab.Version, len(vocab.Keywords()))

	// ── Embeddings ───────────────────────────────────────────────────────────
	openai, err := embedding.NewOpenAIEmbedder(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("[search-service] Embedder: %v", err)
	}
	docEmbedder := embedding.NewResilient(openai, cfg.EmbeddingRPS)
	queryEmbedder := embedding.NewCached(docEmbedder, embedding.NewRedisCache(rdb), cfg.QueryEmbeddingTTL)

	// ── Search ───────────────────────────────────────────────────────────────
	store := index.NewStore(pool)
	scoringProvider := scoring.NewProvider(scoring.NewPostgresStore(pool))

	registry := search.NewRegistry(
		search.NewNameMatch(store),
		search.NewSemantic(store, queryEmbedder, scoringProvider),
		search.NewHybrid(store, store, queryEmbedder, scoringProvider, search.DefaultCandidateCap),
	)
	for _, st := range registry.Strategies() {
		log.Printf("[search-service] Strategy %s registered (priority %d)", st.Name(), st.Priority())
	}
	dispatcher := search.NewDispatcher(registry, classifier.New(vocab))

	// ── Indexing ─────────────────────────────────────────────────────────────
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = consumerName
	}

	jobs := queue.NewQueue[model.IndexingJob](queue.NewStream(rdb, jobStream, jobGroup, hostname))
	events := queue.NewQueue[model.CandidateRecord](queue.NewStream(rdb, eventStream, eventGroup, hostname))
	for _, q := range []*queue.Stream{jobs.Stream(), events.Stream()} {
		if err := q.EnsureGroup(ctx); err != nil {
			log.Fatalf("[search-service] Stream %s: %v", q.Name(), err)
		}
		log.Printf("[search-service] Stream %s ready (dead letters: %s)", q.Name(), q.DeadLetterName())
	}

	var extractor skills.Extractor = skills.NewVocabularyExtractor(vocab)
	if cfg.SkillsServiceURL != "" {
		extractor = skills.NewHTTPExtractor(cfg.SkillsServiceURL)
		log.Printf("[search-service] Skill extraction via %s", cfg.SkillsServiceURL)
	}

	status := indexing.NewRedisStatusTracker(rdb)
	pipeline := indexing.NewPipeline(extractor, sanitize.New(), jobs, status)

	worker, err := indexing.NewWorker(jobs, store, docEmbedder,
		indexing.WithPoolSize(cfg.IndexWorkers),
		indexing.WithRetry(cfg.IndexMaxAttempts, cfg.IndexRetryBaseDelay),
		indexing.WithReclaimMinIdle(cfg.ReclaimMinIdle),
		indexing.WithAttemptTimeout(cfg.IndexAttemptTimeout),
		indexing.WithStatus(status),
		indexing.WithNotifier(indexing.NewRedisNotifier(rdb)),
	)
	if err != nil {
		log.Fatalf("[search-service] Worker: %v", err)
	}
	defer worker.Release()
	consumer := indexing.NewEventConsumer(events, pipeline, cfg.ReclaimMinIdle)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); worker.Run(ctx) }()
	go func() { defer wg.Done(); consumer.Run(ctx) }()

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(cfg.ReclaimInterval,
		scheduler.Target{Name: "job", Reclaimer: worker},
		scheduler.Target{Name: "event", Reclaimer: consumer},
	)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[search-service] Scheduler: %v", err)
	}
	log.Printf("[search-service] Reclaim sweep scheduled %s", sched.Spec())

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := api.NewHandler(dispatcher, scoringProvider, pipeline, status)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[search-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[search-service] HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[search-service] gRPC listen: %v", err)
	}
	gs := grpc.NewServer()
	healthSrv := grpcserver.Register(gs, grpcserver.NewServer(dispatcher))

	go func() {
		log.Printf("[search-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			log.Fatalf("[search-service] gRPC server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[search-service] Shutting down…")
	healthSrv.Shutdown()
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[search-service] Shutdown error: %v", err)
	}
	gs.GracefulStop()
	wg.Wait()
	log.Println("[search-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "search-service",
		"version": version,
	})
}
