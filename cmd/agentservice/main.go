// Command agentservice is a demonstration binary: it assembles a single
// agent runtime around the bootstrap plugin bundle and an in-memory or
// Postgres storage adapter, and exposes it over HTTP. Grounded on
// cmd/server/main.go's zerolog setup and signal-driven graceful shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/internal/bootstrap"
	"github.com/agentoven/kernel/internal/config"
	"github.com/agentoven/kernel/internal/storage/memstore"
	"github.com/agentoven/kernel/internal/storage/postgres"
	"github.com/agentoven/kernel/internal/telemetry"
	transporthttp "github.com/agentoven/kernel/internal/transport/http"
	"github.com/agentoven/kernel/pkg/agent"
	"github.com/agentoven/kernel/pkg/kernel"
	"github.com/agentoven/kernel/pkg/resilience"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	log.Info().Str("version", cfg.Version).Msg("agent kernel starting")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer shutdownTelemetry(ctx)

	adapter, closeAdapter, err := buildAdapter(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage adapter")
	}
	defer closeAdapter()

	boot, err := bootstrap.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct bootstrap plugin")
	}

	character := agent.Character{
		Name:       "Kernel",
		Bio:        []string{"A demonstration agent assembled from the bootstrap plugin bundle."},
		Lore:       []string{"Runs on the agent kernel's six-phase message cycle."},
		Adjectives: []string{"helpful", "direct"},
		Topics:     []string{"general conversation"},
		Style: agent.CharacterStyle{
			All: []string{"Keep replies concise.", "Be direct and friendly."},
		},
	}

	rt, err := kernel.New(ctx, kernel.RuntimeOpts{
		Character:            character,
		Adapter:              adapter,
		Plugins:              []agent.Plugin{boot},
		StateCacheMaxEntries: cfg.Cache.MaxEntries,
		StateCacheTTL:        cfg.Cache.TTL,
		ModelCircuitBreaker:  breakerConfig(cfg),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct runtime")
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Handlers{Runtime: rt, Version: cfg.Version})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", cfg.Port).Str("agentId", rt.AgentID().String()).Msg("agent kernel ready")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// buildAdapter selects and constructs the storage adapter named by
// cfg.Driver, returning a close function that is always safe to defer.
func buildAdapter(ctx context.Context, cfg config.StorageConfig) (agent.StorageAdapter, func(), error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.New(ctx, cfg.PostgresURL, cfg.EmbeddingDims)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to postgres storage: %w", err)
		}
		closeFn := func() {
			if err := store.Close(context.Background()); err != nil {
				log.Warn().Err(err).Msg("closing postgres storage adapter")
			}
		}
		return store, closeFn, nil
	case "memory", "":
		store := memstore.New(cfg.SnapshotPath)
		closeFn := func() {
			if err := store.Close(context.Background()); err != nil {
				log.Warn().Err(err).Msg("closing memory storage adapter")
			}
		}
		return store, closeFn, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// breakerConfig returns the zero CircuitBreakerConfig (breaker disabled)
// when KERNEL_MODEL_BREAKER_ENABLED is false; the breaker is enabled by
// default.
func breakerConfig(cfg *config.Config) resilience.CircuitBreakerConfig {
	if !cfg.Breaker.Enabled {
		return resilience.CircuitBreakerConfig{}
	}
	return resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
	}
}
