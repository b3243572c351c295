package service

import (
	"context"
	"log"
	"sync"

	"noiflow/internal/compare"
	"noiflow/internal/domain"
)

// BatchResult holds the per-document outcomes of a multi-document run plus
// the comparisons derivable from them.
type BatchResult struct {
	// Results are in the same order as the submitted documents.
	Results []*domain.ExtractionResult `json:"results"`
	// Comparisons pair the current-role record against each successfully
	// extracted reference record.
	Comparisons []*compare.Comparison `json:"comparisons,omitempty"`
}

// BatchService extracts a set of role-tagged documents concurrently and
// derives period comparisons from the results.
type BatchService struct {
	extraction  *ExtractionService
	concurrency int
}

// NewBatchService creates a BatchService.
func NewBatchService(extraction *ExtractionService, concurrency int) *BatchService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchService{extraction: extraction, concurrency: concurrency}
}

// ExtractAll runs every document through the pipeline, at most concurrency at
// a time. One document's failure never blocks the others; a document whose
// context ended mid-flight yields a result with its partial audit trail.
func (b *BatchService) ExtractAll(ctx context.Context, docs []domain.RawDocument) *BatchResult {
	results := make([]*domain.ExtractionResult, len(docs))

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for i := range docs {
		doc := docs[i] // copy for goroutine

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			result, err := b.extraction.Extract(ctx, doc)
			if err != nil {
				log.Printf("service.BatchService: document %q aborted: %v", doc.Filename, err)
				if result == nil {
					result = &domain.ExtractionResult{
						Role:       doc.Role,
						Status:     domain.StatusUnsupportedFormat,
						Method:     domain.MethodNone,
						Confidence: domain.ConfidenceUncertain,
						Diagnostic: err.Error(),
					}
				} else if result.Diagnostic == "" {
					result.Diagnostic = err.Error()
				}
			}
			results[idx] = result
		}(i)
	}
	wg.Wait()

	return &BatchResult{
		Results:     results,
		Comparisons: b.comparisons(results),
	}
}

// comparisons pairs the first successful current-role record against every
// successful reference record.
func (b *BatchService) comparisons(results []*domain.ExtractionResult) []*compare.Comparison {
	var current *domain.ExtractionResult
	for _, r := range results {
		if r != nil && r.Role == domain.RoleCurrent && r.Status == domain.StatusOK {
			current = r
			break
		}
	}
	if current == nil {
		return nil
	}

	var out []*compare.Comparison
	for _, r := range results {
		if r == nil || r.Status != domain.StatusOK || r.Record == nil {
			continue
		}
		kind, ok := compare.KindForRole(r.Role)
		if !ok {
			continue
		}
		out = append(out, compare.Records(kind, current.Record, r.Record, current.Provenance, r.Provenance))
	}
	return out
}
