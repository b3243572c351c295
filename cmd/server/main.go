package main

import (
	"fmt"
	"log"

	"noiflow/internal/config"
	"noiflow/internal/extract/openai"
	"noiflow/internal/handler"
	"noiflow/internal/router"
	"noiflow/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize the extraction provider
	extractor := openai.NewClient(&cfg.Extractor)

	// Initialize services
	extractionSvc := service.NewExtractionService(extractor, cfg.Extraction)
	batchSvc := service.NewBatchService(extractionSvc, cfg.Batch.Concurrency)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc, batchSvc, cfg.Upload)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(cfg, extractionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
