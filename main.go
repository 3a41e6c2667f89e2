package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"niviskar/internal/config"
	"niviskar/internal/logging"
	"niviskar/internal/metrics"
	"niviskar/internal/pipeline"
	"niviskar/internal/server"
	"niviskar/internal/tokens"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "[!] %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: niviskar --src <dir> [--dst <dir>] [--level student|professor] [--format txt|json|yaml|pdf]")
		fmt.Fprintln(os.Stderr, "       niviskar --mode serve [--addr :7860]")
		os.Exit(1)
	}

	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counter, err := tokens.NewCounter(cfg.Encoding)
	if err != nil {
		log.Warnf("token statistics disabled: %v", err)
	}
	m := metrics.New()

	switch cfg.Mode {
	case config.ModeServe:
		runServer(ctx, cfg, log, counter, m)
	default:
		runBatch(ctx, cfg, log, counter, m)
	}
}

func runBatch(ctx context.Context, cfg *config.Config, log *logrus.Logger, counter *tokens.Counter, m *metrics.Metrics) {
	fmt.Println("=== Nivıskar Summarizer ===")
	fmt.Printf("Source:      %s\n", cfg.SourceDir)
	fmt.Printf("Destination: %s\n", cfg.DestDir)
	fmt.Printf("Level:       %s\n", cfg.Level)
	fmt.Printf("Format:      %s\n", cfg.ExportFormat())
	fmt.Printf("Workers:     %d\n", cfg.Workers)
	fmt.Println("-----------------------------------------")

	p := pipeline.NewPipeline(cfg.SourceDir, cfg.DestDir, cfg.Level, cfg.ExportFormat(), cfg.Workers, log)
	p.Extract = cfg.ExtractOptions()
	p.Timeout = cfg.Timeout
	p.Tokens = counter
	p.Metrics = m

	fmt.Println("[*] Starting processing pipeline...")
	startTime := time.Now()

	if err := p.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\n[!] Pipeline stopped by user (Ctrl+C).")
		} else {
			fmt.Printf("\n[!] Pipeline finished with error: %v\n", err)
		}
	}

	duration := time.Since(startTime)
	fmt.Println("-----------------------------------------")
	fmt.Print(p.GetSummary())
	fmt.Printf("[+] Processing complete in %v\n", duration)
}

func runServer(ctx context.Context, cfg *config.Config, log *logrus.Logger, counter *tokens.Counter, m *metrics.Metrics) {
	h := server.NewHandler(log, counter, m, server.Options{
		Level:     cfg.Level,
		MaxUpload: cfg.MaxUpload,
		Extract:   cfg.ExtractOptions(),
	})

	if err := server.Run(ctx, cfg.Addr, server.NewRouter(h), log); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
