// Package extract houses the retry-driven extraction engine: prompt
// construction, model response parsing, schema validation, and the
// deterministic pattern fallback.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"noiflow/internal/audit"
	"noiflow/internal/config"
	"noiflow/internal/domain"
	"noiflow/internal/port"
)

// Result is the engine's terminal output. The engine always produces a
// record: when every model attempt fails, the pattern fallback fills in what
// it can and the rest stays missing.
type Result struct {
	Record     *domain.FinancialRecord
	Provenance domain.ProvenanceMap
	Method     domain.ExtractionMethod
	Attempts   []domain.ExtractionAttempt
}

// Engine drives the attempt state machine: up to MaxAttempts model calls with
// escalating prompts, then the pattern fallback. A single shared limiter
// paces calls across all concurrent documents.
type Engine struct {
	extractor   port.SemanticExtractor
	prompts     *PromptBuilder
	patterns    *PatternExtractor
	limiter     *rate.Limiter
	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration
}

// NewEngine creates an engine from the extraction configuration.
func NewEngine(extractor port.SemanticExtractor, cfg config.ExtractionConfig) *Engine {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	backoffCap := cfg.BackoffCap
	if backoffCap <= 0 {
		backoffCap = 30 * time.Second
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 2.0
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Engine{
		extractor:   extractor,
		prompts:     NewPromptBuilder(cfg.MaxPromptChars),
		patterns:    NewPatternExtractor(),
		limiter:     rate.NewLimiter(rate.Limit(perSecond), burst),
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		backoffCap:  backoffCap,
	}
}

// Run executes the state machine for one document. It returns an error only
// when the context is done; every other failure mode degrades to the pattern
// fallback.
func (e *Engine) Run(ctx context.Context, content *domain.PreprocessedContent, role domain.DocumentRole, trail *audit.Trail) (*Result, error) {
	var attempts []domain.ExtractionAttempt

	for n := 1; n <= e.maxAttempts; n++ {
		strategy := StrategyForAttempt(n)
		attempt := domain.ExtractionAttempt{N: n, Strategy: strategy}

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, e.ctxErr(err)
		}

		prompt := e.prompts.Build(role, content.Text, strategy)
		out, err := e.extractor.Extract(ctx, port.ExtractInput{
			Prompt: prompt,
			// Later attempts run slightly warmer to escape a
			// degenerate first answer.
			Temperature: 0.1 * float64(n-1),
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, e.ctxErr(ctx.Err())
			}
			attempt.ParseOutcome = fmt.Sprintf("call_failed: %v", err)
			attempts = append(attempts, attempt)
			trail.Record("extraction_attempt", "attempt %d (%s) failed: %v", n, strategy, err)
			if err := e.waitBeforeRetry(ctx, n, err); err != nil {
				return nil, err
			}
			continue
		}

		attempt.RawResponse = out.RawText
		parsed, err := ParseResponse(out.RawText)
		if err != nil {
			attempt.ParseOutcome = fmt.Sprintf("unparseable: %v", err)
			attempts = append(attempts, attempt)
			trail.Record("extraction_attempt", "attempt %d (%s) returned unusable output: %v", n, strategy, err)
			if err := e.waitBeforeRetry(ctx, n, nil); err != nil {
				return nil, err
			}
			continue
		}

		if allZeroPrimaries(parsed.Record, parsed.Provenance) {
			attempt.ParseOutcome = domain.ErrAllZeroPrimaries.Error()
			attempts = append(attempts, attempt)
			trail.Record("extraction_attempt", "attempt %d (%s) rejected: %v", n, strategy, domain.ErrAllZeroPrimaries)
			if err := e.waitBeforeRetry(ctx, n, nil); err != nil {
				return nil, err
			}
			continue
		}

		attempt.ParseOutcome = parsed.Outcome
		attempts = append(attempts, attempt)
		trail.Record("extraction_attempt", "attempt %d (%s) accepted via %s", n, strategy, parsed.Outcome)
		return &Result{
			Record:     parsed.Record,
			Provenance: parsed.Provenance,
			Method:     domain.MethodModel,
			Attempts:   attempts,
		}, nil
	}

	// Terminal fallback: deterministic label matching.
	record, provenance := e.patterns.Extract(content)
	method := domain.MethodNone
	for _, f := range domain.AllFields {
		if provenance.Get(f) == domain.ProvenancePattern {
			method = domain.MethodPattern
			break
		}
	}
	trail.Record("pattern_fallback", "model attempts exhausted, pattern fallback produced method=%s", method)
	log.Printf("extract.Engine: %d attempts exhausted, fell back to %s", e.maxAttempts, method)
	return &Result{
		Record:     record,
		Provenance: provenance,
		Method:     method,
		Attempts:   attempts,
	}, nil
}

// waitBeforeRetry sleeps the bounded exponential backoff, stretching to honor
// a provider Retry-After when one was given.
func (e *Engine) waitBeforeRetry(ctx context.Context, attempt int, cause error) error {
	if attempt >= e.maxAttempts {
		// No model attempt follows; the pattern fallback needs no pacing.
		return nil
	}
	delay := e.backoffBase << (attempt - 1)
	var rlErr *RateLimitError
	if errors.As(cause, &rlErr) && rlErr.RetryAfter > delay {
		delay = rlErr.RetryAfter
	}
	if delay > e.backoffCap {
		delay = e.backoffCap
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return e.ctxErr(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (e *Engine) ctxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, err)
	}
	return err
}

// allZeroPrimaries reports whether every primary metric is zero or missing.
// A statement with no income and no expenses is not a statement; this output
// shape is the classic degenerate model answer.
func allZeroPrimaries(record *domain.FinancialRecord, provenance domain.ProvenanceMap) bool {
	for _, f := range domain.PrimaryMetrics {
		if provenance.Get(f) == domain.ProvenanceMissing {
			continue
		}
		if v, _ := record.Value(f); v != 0 {
			return false
		}
	}
	return true
}
