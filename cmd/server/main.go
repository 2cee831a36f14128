package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chartsight/chartsight/internal/api"
	"github.com/chartsight/chartsight/internal/config"
	"github.com/chartsight/chartsight/internal/detect"
	"github.com/chartsight/chartsight/internal/insight"
	"github.com/chartsight/chartsight/internal/ocr"
	"github.com/chartsight/chartsight/internal/pipeline"
	"github.com/chartsight/chartsight/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := store.New(cfg.DataDir)
	if err != nil {
		log.Error("failed to open results store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	// Optional capabilities. A missing key or URL disables the stage and the
	// pipeline degrades to its deterministic path.
	var objects detect.ObjectDetector
	var remote *detect.RemoteDetector
	if cfg.DetectorURL != "" {
		remote = detect.NewRemoteDetector(cfg.DetectorURL)
		objects = remote
	}

	var localizer ocr.Localizer
	if cfg.OCREnabled {
		localizer = ocr.NewTesseractLocalizer(strings.Split(cfg.OCRLanguages, ",")...)
	}

	stats := insight.NewModelStats(time.Hour)
	var gemini *insight.GeminiClient
	var generator insight.Generator
	if cfg.GeminiAPIKey != "" {
		gemini = insight.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		generator = gemini
	}

	log.Info("capabilities",
		"object_detection", objects != nil,
		"ocr", localizer != nil,
		"inference", generator != nil,
	)

	detector := detect.NewDetector(objects, cfg.DetectTimeout, log)
	extractor := ocr.NewExtractor(localizer, cfg.OCRTimeout, log)
	engine := insight.NewEngine(generator, cfg.InferTimeout, stats, log)

	worker := pipeline.NewWorker(detector, extractor, engine, results, log)
	if cfg.PDFFallbackPdftotext {
		worker.EnablePDFTextFallback()
	}
	orch := pipeline.NewOrchestrator(cfg, worker, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, results, stats, cfg.GeminiModel, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if gemini != nil {
			gemini.Close()
		}
		if remote != nil {
			remote.Close()
		}
	}()

	log.Info("starting chartsight", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
