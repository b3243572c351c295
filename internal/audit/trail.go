// Package audit provides the append-only per-document trail used for
// diagnostics. A Trail belongs to a single pipeline invocation and is never
// shared across documents.
package audit

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"noiflow/internal/domain"
)

// Trail accumulates ordered step records for one document.
type Trail struct {
	id      uuid.UUID
	doc     string
	entries []domain.AuditEntry
}

// NewTrail creates a trail for the named document.
func NewTrail(docName string) *Trail {
	return &Trail{id: uuid.New(), doc: docName}
}

// ID returns the trail's unique identifier.
func (t *Trail) ID() uuid.UUID { return t.id }

// Record appends a step to the trail and mirrors it to the process log.
func (t *Trail) Record(step, format string, args ...interface{}) {
	detail := fmt.Sprintf(format, args...)
	t.entries = append(t.entries, domain.AuditEntry{
		At:     time.Now().UTC(),
		Step:   step,
		Detail: detail,
	})
	log.Printf("audit.Trail[%s] %s: %s — %s", shortID(t.id), t.doc, step, detail)
}

// Snapshot returns a copy of the entries accumulated so far. The copy is safe
// to return to a caller that abandoned the pipeline mid-flight.
func (t *Trail) Snapshot() []domain.AuditEntry {
	out := make([]domain.AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded entries.
func (t *Trail) Len() int { return len(t.entries) }

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}
