// cmd/nfstraffic/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/FairForge/nfstraffic/internal/api"
	"github.com/FairForge/nfstraffic/internal/app"
	"github.com/FairForge/nfstraffic/internal/cfenv"
	"github.com/FairForge/nfstraffic/internal/config"
	"github.com/FairForge/nfstraffic/internal/health"
	"github.com/FairForge/nfstraffic/internal/logging"
	"github.com/FairForge/nfstraffic/internal/metrics"
	"github.com/FairForge/nfstraffic/internal/traffic"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	once := flag.Bool("once", false, "exit after the run completes and print a summary")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	// Load config
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Create logger
	logCfg := cfg.Logging()
	logger, err := logging.New(&logCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Resolve(); err != nil {
		if errors.Is(err, config.ErrNoDirectory) {
			logger.Fatal(fmt.Sprintf("NFS directory not defined -- is an NFS service named '%s' bound to app?",
				cfg.Traffic.ServiceName), zap.Error(err))
		}
		logger.Fatal("failed to resolve environment", zap.Error(err))
	}

	workload := cfg.Workload()
	if err := workload.Validate(); err != nil {
		logger.Fatal("invalid traffic configuration", zap.Error(err))
	}

	// Wire components
	m := metrics.New()
	ctrl := traffic.NewController(workload, logger, traffic.WithControllerRecorder(m))
	lifecycle := app.New(ctrl, logger)

	checker := health.NewChecker(logger)
	checker.Register("nfs", health.MountCheck(cfenv.CurrentServices))
	checker.Register("directory", health.DirectoryCheck(workload.Directory))

	server := api.NewServer(cfg.Server.Port, logger,
		api.WithHealth(checker),
		api.WithMetrics(m),
		api.WithReadiness(lifecycle.Ready),
		api.WithVersion(version),
	)

	printBanner(cfg, workload)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	lifecycle.OnReady(ctx)

	var runDone <-chan struct{}
	if *once {
		done := make(chan struct{})
		go func() {
			<-lifecycle.Started()
			<-ctrl.Done()
			close(done)
		}()
		runDone = done
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	case <-runDone:
		logger.Info("traffic run complete")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := lifecycle.OnShutdown(shutdownCtx); err != nil {
		logger.Error("traffic shutdown error", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	if *once {
		if err := renderSummary(os.Stdout, ctrl.Wait()); err != nil {
			logger.Error("failed to render summary", zap.Error(err))
		}
	}
}

func printBanner(cfg *config.Config, wl traffic.WorkloadConfig) {
	bold := color.New(color.Bold)
	fmt.Printf("\n")
	_, _ = bold.Printf("╔══════════════════════════════════════╗\n")
	_, _ = bold.Printf("║        NFS Traffic Generator         ║\n")
	_, _ = bold.Printf("╚══════════════════════════════════════╝\n")
	fmt.Printf("  HTTP:      http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("  Directory: %s\n", wl.Directory)
	fmt.Printf("  Read:      %d threads, %d bytes, %s\n", wl.Read.Threads, wl.Read.FileSize, wl.Read.Duration)
	fmt.Printf("  Write:     %d threads, %d bytes, %s\n", wl.Write.Threads, wl.Write.FileSize, wl.Write.Duration)
	fmt.Printf("\n")
}
