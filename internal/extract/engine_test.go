package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"noiflow/internal/audit"
	"noiflow/internal/config"
	"noiflow/internal/domain"
	"noiflow/internal/port"
	"noiflow/mocks"
)

func testEngineConfig() config.ExtractionConfig {
	return config.ExtractionConfig{
		MaxAttempts:   3,
		BackoffBase:   time.Millisecond,
		BackoffCap:    5 * time.Millisecond,
		RatePerSecond: 10000,
		RateBurst:     100,
	}
}

func allZeroResponse() string {
	parts := make([]string, len(domain.AllFields))
	for i, f := range domain.AllFields {
		parts[i] = fmt.Sprintf("%q: 0", f)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func output(raw string) *port.ExtractOutput {
	return &port.ExtractOutput{RawText: raw, ModelUsed: "gpt-4o"}
}

func TestEngine_FirstAttemptAccepted(t *testing.T) {
	extractor := new(mocks.MockSemanticExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(output(goodResponse), nil).Once()

	engine := NewEngine(extractor, testEngineConfig())
	content := &domain.PreprocessedContent{Text: "Gross Potential Rent: 50,000"}

	result, err := engine.Run(context.Background(), content, domain.RoleCurrent, audit.NewTrail("test.csv"))
	require.NoError(t, err)

	assert.Equal(t, domain.MethodModel, result.Method)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, StrategyStandard, result.Attempts[0].Strategy)
	assert.InDelta(t, 50000, result.Record.GrossPotentialRent, 1e-9)
	extractor.AssertExpectations(t)
}

func TestEngine_AllZeroThenGarbageFallsBackToPatterns(t *testing.T) {
	extractor := new(mocks.MockSemanticExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(output(allZeroResponse()), nil).Once()
	extractor.On("Extract", mock.Anything, mock.Anything).Return(output("I see no data"), nil).Once()
	extractor.On("Extract", mock.Anything, mock.Anything).Return(output("still nothing"), nil).Once()

	engine := NewEngine(extractor, testEngineConfig())
	content := &domain.PreprocessedContent{
		LineItems: []domain.LineItem{
			{Category: "Gross Potential Rent", Value: 50000},
			{Category: "Total Expenses", Value: 18000},
		},
	}

	result, err := engine.Run(context.Background(), content, domain.RoleCurrent, audit.NewTrail("test.csv"))
	require.NoError(t, err)

	assert.Equal(t, domain.MethodPattern, result.Method)
	require.Len(t, result.Attempts, 3)
	assert.Equal(t, domain.ErrAllZeroPrimaries.Error(), result.Attempts[0].ParseOutcome)
	assert.Equal(t, StrategyExplicit, result.Attempts[1].Strategy)
	assert.Equal(t, StrategyWorkedExample, result.Attempts[2].Strategy)

	assert.InDelta(t, 50000, result.Record.GrossPotentialRent, 1e-9)
	assert.Equal(t, domain.ProvenancePattern, result.Provenance.Get(domain.FieldGrossPotentialRent))
	extractor.AssertExpectations(t)
}

func TestEngine_NothingRecoverableEndsWithMethodNone(t *testing.T) {
	extractor := new(mocks.MockSemanticExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("provider down")).Times(3)

	engine := NewEngine(extractor, testEngineConfig())
	content := &domain.PreprocessedContent{Text: "inspection notes without amounts"}

	result, err := engine.Run(context.Background(), content, domain.RoleCurrent, audit.NewTrail("notes.txt"))
	require.NoError(t, err)

	assert.Equal(t, domain.MethodNone, result.Method)
	require.Len(t, result.Attempts, 3)
	assert.Contains(t, result.Attempts[0].ParseOutcome, "call_failed")
	for _, f := range domain.AllFields {
		assert.Equal(t, domain.ProvenanceMissing, result.Provenance.Get(f))
	}
}

func TestEngine_RetriesStretchForRetryAfter(t *testing.T) {
	extractor := new(mocks.MockSemanticExtractor)
	rlErr := &RateLimitError{Provider: "openai", RetryAfter: time.Second, Err: fmt.Errorf("429")}
	extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, rlErr).Once()
	extractor.On("Extract", mock.Anything, mock.Anything).Return(output(goodResponse), nil).Once()

	engine := NewEngine(extractor, testEngineConfig())
	content := &domain.PreprocessedContent{Text: "Gross Potential Rent: 50,000"}

	start := time.Now()
	result, err := engine.Run(context.Background(), content, domain.RoleCurrent, audit.NewTrail("test.csv"))
	require.NoError(t, err)

	// Retry-After of 1s is clamped to the 5ms backoff cap.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, domain.MethodModel, result.Method)
	require.Len(t, result.Attempts, 2)
}

func TestEngine_NoBackoffAfterFinalAttempt(t *testing.T) {
	extractor := new(mocks.MockSemanticExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("provider down")).Once()

	cfg := testEngineConfig()
	cfg.MaxAttempts = 1
	cfg.BackoffBase = 400 * time.Millisecond
	cfg.BackoffCap = 400 * time.Millisecond

	engine := NewEngine(extractor, cfg)
	content := &domain.PreprocessedContent{
		LineItems: []domain.LineItem{{Category: "Gross Potential Rent", Value: 50000}},
	}

	start := time.Now()
	result, err := engine.Run(context.Background(), content, domain.RoleCurrent, audit.NewTrail("test.csv"))
	require.NoError(t, err)

	// The pattern fallback is synchronous; nothing should sleep once the
	// final model attempt has failed.
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.Equal(t, domain.MethodPattern, result.Method)
	extractor.AssertExpectations(t)
}

func TestEngine_ContextCancellation(t *testing.T) {
	extractor := new(mocks.MockSemanticExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(extractor, testEngineConfig())
	_, err := engine.Run(ctx, &domain.PreprocessedContent{Text: "x"}, domain.RoleCurrent, audit.NewTrail("test.csv"))
	assert.Error(t, err)
}
