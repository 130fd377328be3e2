package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MegaGrindStone/doc-web-ui/internal/handlers"
	"gopkg.in/yaml.v3"
)

func main() {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(fmt.Errorf("error getting user config dir: %w", err))
	}
	cfgPath := filepath.Join(cfgDir, "docwebui")
	if err := os.MkdirAll(cfgPath, 0755); err != nil {
		log.Fatal(fmt.Errorf("error creating config directory: %w", err))
	}

	cfgFilePath := filepath.Join(cfgPath, "config.yaml")
	cfgFile, err := os.Open(cfgFilePath)
	if err != nil {
		log.Fatal(fmt.Errorf("error opening config file: %w", err))
	}
	defer cfgFile.Close()

	cfg := config{}
	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil {
		log.Fatal(fmt.Errorf("error decoding config file: %w", err))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	llm, err := cfg.LLM.completer(logger)
	if err != nil {
		log.Fatal(err)
	}

	m := handlers.NewMain(llm, cfg.Stream, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", m.HandleChat)
	mux.HandleFunc("/api/extract", m.HandleExtract)
	mux.HandleFunc("/healthz", m.HandleHealth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt/terminate signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		logger.Error("Server error", slog.String("err", err.Error()))

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", slog.String("err", err.Error()))
			if err := srv.Close(); err != nil {
				logger.Error("Forcing server close", slog.String("err", err.Error()))
			}
		}
	}
}
