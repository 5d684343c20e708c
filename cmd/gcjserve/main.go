package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pspoerri/eviltransform/internal/batch"
	"github.com/pspoerri/eviltransform/internal/config"
	"github.com/pspoerri/eviltransform/internal/server"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		configPath  string
		addr        string
		verbose     bool
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	flag.BoolVar(&verbose, "verbose", false, "Log every request")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("gcjserve %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if verbose {
		cfg.Batch.Verbose = true
	}

	gin.SetMode(gin.ReleaseMode)
	// Request handling never draws a progress bar.
	bc := cfg.BatchConfig()
	bc.Verbose = false
	engine := server.Setup(server.Options{
		Mapper:    batch.New(bc),
		MaxPoints: cfg.Server.MaxPoints,
		Verbose:   cfg.Batch.Verbose,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("Server listening addr=%s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
	log.Println("server stopped")
}
