package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"trust-lab/classifier"
	"trust-lab/decision"
	"trust-lab/heuristics"
	"trust-lab/internal"
	"trust-lab/lexicon"
	"trust-lab/moderation"
	"trust-lab/observability"
	"trust-lab/ratelimit"
	"trust-lab/repositories"
	"trust-lab/server"
	"trust-lab/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close, sink
// flush) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.LoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Pipeline components
	matcher, err := lexicon.NewMatcher(log)
	if err != nil {
		return fmt.Errorf("lexicon build failed: %w", err)
	}
	scorer := heuristics.NewScorer(matcher, heuristics.DefaultWeights(), heuristics.DefaultThresholds(), heuristics.DefaultLowTrustTLDs(), log)

	gatewayCfg := classifier.Config{
		WeightsPath:    config.ClassifierWeightsPath,
		RequestTimeout: config.ClassifierTimeout,
		WarmupTimeout:  config.ClassifierWarmupTimeout,
	}
	gateway := classifier.NewGateway(gatewayCfg, log)
	combiner := decision.NewCombiner(gateway, decision.DefaultThresholds(), decision.DefaultBoost(), log)

	commentRepository := repositories.NewCommentRepository(db, config.CommentTTL, log)
	contactRepository := repositories.NewContactRepository(db, config.ContactTTL, log)
	contactSink := sink.NewContactSink(contactRepository, log, config.ContactBufferSize, config.ContactBufferTimeout)

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Window:     config.RateLimitWindow,
		MaxEntries: config.RateLimitEntries,
	}, commentRepository, log)

	stats := observability.NewPipelineStats(log)
	service := moderation.NewService(limiter, scorer, combiner, commentRepository, contactSink, stats, config.CommentTTL, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Classifier warm-up off the request path
	go func() {
		start := time.Now()
		if gateway.WarmUp(ctx) {
			log.Info("classifier warm-up complete", "duration", time.Since(start))
		} else {
			log.Warn("classifier warm-up failed, submissions fall back to heuristics only")
		}
	}()

	// 6. Optional store inspect server
	if config.InspectEnabled {
		internal.StartInspectServer(db, config.InspectPort, internal.CommentMapper, func() map[string]any {
			snap := stats.Snapshot(gateway.State(), limiter.LocalEntries())
			return map[string]any{
				"accepted":         snap.Accepted,
				"shadow_banned":    snap.ShadowBanned,
				"discarded":        snap.Discarded,
				"rate_limited":     snap.RateLimited,
				"contact":          snap.ContactAccepted,
				"classifier_state": snap.ClassifierState,
			}
		})
		log.Info("inspect server enabled", "port", config.InspectPort)
	}

	// 7. HTTP server
	srv := server.New(service, commentRepository, func() any {
		return stats.Snapshot(gateway.State(), limiter.LocalEntries())
	}, log)

	errChan := make(chan error, 1)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.Start(address); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	if err := contactSink.Flush(context.Background()); err != nil {
		log.Warn("contact sink flush", "error", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
