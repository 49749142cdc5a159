package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/lifescan/aila/internal/smoketest"
	"github.com/lifescan/aila/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumRecords = 200
	defaultChatTurns  = 3
	defaultTimeout    = 30 * time.Second
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9090", "Base URL of the service")
		numRecords = flag.Int("records", defaultNumRecords, "Number of records per assessment domain")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		chatTurns  = flag.Int("chat-turns", defaultChatTurns, "Number of chat turns to exchange")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	config := &smoketest.Config{
		BaseURL:    *baseURL,
		NumRecords: *numRecords,
		Workers:    *workers,
		Timeout:    *timeout,
		ChatTurns:  *chatTurns,
		Verbose:    *verbose,
	}

	ctx := context.Background()
	if err := smoketest.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "smoke test failed", logger.Error(err))
		os.Exit(1)
	}
}
