package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pulse/internal/adapters/http/api"
	app "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/internal/config"
	"github.com/okian/pulse/internal/domain/height"
	"github.com/okian/pulse/internal/domain/stats"
	"github.com/okian/pulse/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	clock := height.NewTicker(
		height.WithGenesis(cfg.GenesisHeight),
		height.WithBlockInterval(time.Duration(cfg.BlockIntervalMS)*time.Millisecond),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithClock(clock),
		app.WithMaxKinds(cfg.MaxFeedbackKinds),
		app.WithAggregator(stats.NewInMemoryAggregator(stats.WithMaxBuckets(cfg.MaxHistogramBuckets))),
	)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, api.WithLimits(api.Limits{
		MaxTitleLen:       cfg.MaxTitleLen,
		MaxDescriptionLen: cfg.MaxDescriptionLen,
		MaxFeedbackKinds:  cfg.MaxFeedbackKinds,
		MaxKindLen:        cfg.MaxKindLen,
		MaxReactionLen:    cfg.MaxReactionLen,
		MaxTextLen:        cfg.MaxTextLen,
	}))
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Uint64("genesisHeight", cfg.GenesisHeight),
			logger.Int("blockIntervalMS", cfg.BlockIntervalMS),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
