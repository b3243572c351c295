// Package service orchestrates the extraction pipeline: preprocessing, the
// content gate, the extraction engine, consistency repair, and confidence
// scoring, with every step recorded on the document's audit trail.
package service

import (
	"context"
	"log"
	"time"

	"noiflow/internal/audit"
	"noiflow/internal/config"
	"noiflow/internal/domain"
	"noiflow/internal/extract"
	"noiflow/internal/port"
	"noiflow/internal/preprocess"
	"noiflow/internal/validator"
)

// ExtractionService runs one document through the full pipeline.
type ExtractionService struct {
	preprocessor *preprocess.Preprocessor
	gate         *preprocess.ContentValidator
	engine       *extract.Engine
	consistency  *validator.ConsistencyValidator
	scorer       *validator.ConfidenceScorer
}

// NewExtractionService wires the pipeline from configuration.
func NewExtractionService(extractor port.SemanticExtractor, cfg config.ExtractionConfig) *ExtractionService {
	return &ExtractionService{
		preprocessor: preprocess.NewPreprocessor(),
		gate:         preprocess.NewContentValidator(cfg.MaterialityThreshold, cfg.MinMaterialValues),
		engine:       extract.NewEngine(extractor, cfg),
		consistency:  validator.NewConsistencyValidator(cfg.ConsistencyTolerance),
		scorer:       validator.NewConfidenceScorer(),
	}
}

// Extract runs the pipeline for a single document. Unsupported formats and
// documents without financial content come back as statuses with an intact
// audit trail, not as errors; an error return means the context ended first.
func (s *ExtractionService) Extract(ctx context.Context, doc domain.RawDocument) (*domain.ExtractionResult, error) {
	started := time.Now()
	trail := audit.NewTrail(doc.Filename)
	trail.Record("received", "role=%s hint=%q size=%d", doc.Role, doc.FormatHint, len(doc.Bytes))

	result := &domain.ExtractionResult{
		Role:       doc.Role,
		Method:     domain.MethodNone,
		Confidence: domain.ConfidenceUncertain,
	}

	content, err := s.preprocessor.Preprocess(doc)
	if err != nil {
		trail.Record("preprocess", "rejected: %v", err)
		result.Status = domain.StatusUnsupportedFormat
		result.Diagnostic = err.Error()
		return s.finish(result, trail, started), nil
	}
	trail.Record("preprocess", "format=%s sheets=%d pages=%d line_items=%d statement=%t",
		content.Format, content.Sheets, content.Pages, len(content.LineItems), content.IsFinancialStatement)

	verdict := s.gate.Check(content)
	trail.Record("content_gate", "pass=%t %s", verdict.HasFinancialContent, verdict.Reason)
	if !verdict.HasFinancialContent {
		result.Status = domain.StatusNoFinancialContent
		result.Diagnostic = verdict.Reason
		return s.finish(result, trail, started), nil
	}

	engineResult, err := s.engine.Run(ctx, content, doc.Role, trail)
	if err != nil {
		// Only context termination reaches here; attach the trail so
		// the caller can see how far the document got.
		result.AuditTrail = trail.Snapshot()
		result.ProcessingTime = time.Since(started)
		return result, err
	}
	result.Record = engineResult.Record
	result.Provenance = engineResult.Provenance
	result.Method = engineResult.Method
	result.Attempts = engineResult.Attempts

	checks := s.consistency.ValidateAndRepair(result.Record, result.Provenance)
	repaired := 0
	for _, c := range checks {
		if c.Repaired {
			repaired++
		}
	}
	trail.Record("consistency", "%d rules evaluated, %d fields repaired or derived", len(checks), repaired)

	result.FieldConfidence, result.Confidence = s.scorer.Score(result.Provenance, checks)
	trail.Record("confidence", "overall=%s", result.Confidence)

	result.Status = domain.StatusOK
	return s.finish(result, trail, started), nil
}

func (s *ExtractionService) finish(result *domain.ExtractionResult, trail *audit.Trail, started time.Time) *domain.ExtractionResult {
	result.ProcessingTime = time.Since(started)
	trail.Record("done", "status=%s method=%s confidence=%s in %s",
		result.Status, result.Method, result.Confidence, result.ProcessingTime.Round(time.Millisecond))
	result.AuditTrail = trail.Snapshot()
	log.Printf("service.ExtractionService: finished status=%s method=%s confidence=%s",
		result.Status, result.Method, result.Confidence)
	return result
}
