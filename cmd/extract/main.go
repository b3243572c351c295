// Command extract runs the extraction pipeline over local files and prints
// the results as JSON. All files share the role given by -role.
// Usage: go run ./cmd/extract -role current statement.xlsx [more files...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"noiflow/internal/config"
	"noiflow/internal/domain"
	"noiflow/internal/extract/openai"
	"noiflow/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	role := flag.String("role", "current", "document role: current, prior, budget, prior_year")
	timeout := flag.Duration("timeout", 0, "overall deadline for the run (0 = none)")
	flag.Parse()

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: extract [-role ROLE] FILE [FILE...]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	parsedRole := domain.ParseRole(*role)
	if parsedRole == domain.RoleUnknown {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, *role)
	}

	var docs []domain.RawDocument
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, domain.RawDocument{
			Bytes:    data,
			Filename: path,
			Role:     parsedRole,
		})
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	extractor := openai.NewClient(&cfg.Extractor)
	extractionSvc := service.NewExtractionService(extractor, cfg.Extraction)
	batchSvc := service.NewBatchService(extractionSvc, cfg.Batch.Concurrency)

	batch := batchSvc.ExtractAll(ctx, docs)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}
