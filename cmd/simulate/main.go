package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/pulse/internal/simulate"
	"github.com/okian/pulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultEvents       = 20
	defaultParticipants = 50
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9090", "Base URL of the service")
		events       = flag.Int("events", defaultEvents, "Number of events to create")
		participants = flag.Int("participants", defaultParticipants, "Number of participant identities")
		workers      = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:      *baseURL,
		Events:       *events,
		Participants: *participants,
		Workers:      *workers,
		Timeout:      *timeout,
		Verbose:      *verbose,
	}

	if err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
