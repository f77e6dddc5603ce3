// Package main provides the scoring API server. It analyzes wallets on
// demand over HTTP, caches hot results in Redis and serves score history
// from the snapshot store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"degenscore-lab/internal/activity"
	"degenscore-lab/internal/cache"
	"degenscore-lab/internal/config"
	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/engine"
	"degenscore-lab/internal/observability"
	"degenscore-lab/internal/storage"
	chstore "degenscore-lab/internal/storage/clickhouse"
	"degenscore-lab/internal/storage/memory"
	"degenscore-lab/internal/storage/migrations"
	pgstore "degenscore-lab/internal/storage/postgres"
	"degenscore-lab/internal/walletid"
)

// Server wires the analysis pipeline behind the HTTP API.
type Server struct {
	source  activity.Source
	engine  *engine.Engine
	metrics storage.WalletMetricsStore
	history storage.ScoreSnapshotStore
	cache   *cache.MetricsCache // nil when Redis is not configured
	logger  *log.Logger

	mu       sync.Mutex
	started  time.Time
	analyses int
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	verbose := flag.Bool("verbose", false, "Verbose pipeline logging")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}
	if cfg.Provider.BaseURL == "" {
		logger.Fatal("provider.base_url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsStore, historyStore, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("Create stores: %v", err)
	}
	defer cleanup()

	eng, err := engine.New(engine.Options{
		Analysis: cfg.AnalysisConfig(),
		Profile:  cfg.Analysis.ScoreProfile,
		Logger:   logger,
		Verbose:  cfg.Verbose,
	})
	if err != nil {
		logger.Fatalf("Create engine: %v", err)
	}

	source := activity.NewClient(cfg.Provider.BaseURL,
		activity.WithAPIKey(cfg.Provider.APIKey),
		activity.WithPageSize(cfg.Provider.PageSize),
		activity.WithTimeout(cfg.Provider.Timeout),
		activity.WithExecutor(activity.NewCircuitBreaker(
			activity.NewRetryExecutor(activity.WithMaxRetries(cfg.Provider.MaxRetries)),
			5, 30*time.Second,
		)),
	)

	server := &Server{
		source:  source,
		engine:  eng,
		metrics: metricsStore,
		history: historyStore,
		logger:  logger,
		started: time.Now(),
	}
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		server.cache = cache.NewMetricsCache(client, cfg.Cache.Prefix, cfg.Cache.TTL)
		logger.Printf("Result cache enabled (redis %s, ttl %v)", cfg.Cache.RedisAddr, cfg.Cache.TTL)
	}

	go startMetricsServer(cfg.Server.MetricsAddr, logger)

	api := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown: %v", err)
		}
	}()

	logger.Printf("Listening on %s", cfg.Server.ListenAddr)
	if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores builds the metrics and history stores for the configured
// backend. The clickhouse backend keeps wallet metrics in Postgres and
// only moves the append-only history to ClickHouse.
func createStores(ctx context.Context, cfg *config.Config) (storage.WalletMetricsStore, storage.ScoreSnapshotStore, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return memory.NewWalletMetricsStore(), memory.NewScoreSnapshotStore(), func() {}, nil

	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return pgstore.NewWalletMetricsStore(pool), pgstore.NewScoreSnapshotStore(pool), pool.Close, nil

	case "clickhouse":
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		cleanup := func() {
			conn.Close()
			pool.Close()
		}
		return pgstore.NewWalletMetricsStore(pool), chstore.NewScoreSnapshotStore(conn), cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /wallets", s.handleWallets)
	mux.HandleFunc("GET /wallet/{address}", s.handleWallet)
	mux.HandleFunc("GET /wallet/{address}/history", s.handleHistory)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Analyses int    `json:"analyses"`
	Cached   bool   `json:"cache_enabled"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:   "running",
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Analyses: s.analyses,
		Cached:   s.cache != nil,
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.metrics.Wallets(r.Context())
	if err != nil {
		s.logger.Printf("List wallets: %v", err)
		writeError(w, http.StatusInternalServerError, "list wallets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallets": wallets})
}

// WalletResponse is the JSON response for the /wallet/{address} endpoint.
type WalletResponse struct {
	Wallet  string                `json:"wallet"`
	Metrics *domain.WalletMetrics `json:"metrics"`
	Cached  bool                  `json:"cached"`
}

// handleWallet analyzes a wallet on demand: cached result if fresh,
// otherwise a full fetch-and-analyze round trip.
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if err := walletid.Validate(address); err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}
	ctx := r.Context()

	if s.cache != nil {
		if m, err := s.cache.Get(ctx, address); err != nil {
			s.logger.Printf("Cache get %s: %v", walletid.Short(address), err)
		} else if m != nil {
			writeJSON(w, http.StatusOK, WalletResponse{Wallet: address, Metrics: m, Cached: true})
			return
		}
	}

	activities, err := s.source.WalletActivities(ctx, address)
	if err != nil {
		s.logger.Printf("Fetch %s: %v", walletid.Short(address), err)
		if errors.Is(err, activity.ErrCircuitOpen) {
			writeError(w, http.StatusServiceUnavailable, "activity provider unavailable")
			return
		}
		writeError(w, http.StatusBadGateway, "fetch wallet activities")
		return
	}

	res, err := s.engine.Analyze(ctx, address, activities)
	if err != nil {
		s.logger.Printf("Analyze %s: %v", walletid.Short(address), err)
		writeError(w, http.StatusInternalServerError, "analyze wallet")
		return
	}

	if err := s.metrics.Upsert(ctx, address, res.Metrics); err != nil {
		s.logger.Printf("Store metrics %s: %v", walletid.Short(address), err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, address, res.Metrics); err != nil {
			s.logger.Printf("Cache set %s: %v", walletid.Short(address), err)
		}
	}

	s.mu.Lock()
	s.analyses++
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, WalletResponse{Wallet: address, Metrics: res.Metrics})
}

// handleHistory serves recorded score snapshots, optionally bounded by
// ?start and ?end (unix seconds, inclusive).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if err := walletid.Validate(address); err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	start, okStart, err := queryInt64(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start")
		return
	}
	end, okEnd, err := queryInt64(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end")
		return
	}

	var snaps []*domain.ScoreSnapshot
	if okStart || okEnd {
		if !okEnd {
			end = time.Now().Unix()
		}
		snaps, err = s.history.GetByTimeRange(r.Context(), address, start, end)
	} else {
		snaps, err = s.history.GetByWallet(r.Context(), address)
	}
	if err != nil {
		s.logger.Printf("History %s: %v", walletid.Short(address), err)
		writeError(w, http.StatusInternalServerError, "load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"wallet": address, "snapshots": snaps})
}

func queryInt64(r *http.Request, key string) (int64, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("Metrics server error: %v", err)
	}
}
