// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"alphaquant-console/internal/models"
)

// DataStore defines the interface for local persistence: the snapshot
// cache backing cold starts, the submission journal, and small
// key-value settings.
type DataStore interface {
	// Snapshot cache. Snapshots are keyed by the subscription they were
	// fetched for; a newer write for the same key replaces the old one.
	SaveSnapshot(ctx context.Context, key string, payload []byte) error
	GetSnapshot(ctx context.Context, key string) (*CachedSnapshot, error)
	PruneSnapshots(ctx context.Context, olderThan time.Duration) (int64, error)

	// Submission journal. Every settled order submission is recorded,
	// blocked and failed ones included.
	JournalOutcome(ctx context.Context, req models.OrderRequest, outcome models.OrderOutcome) error
	GetJournal(ctx context.Context, filter JournalFilter) ([]JournalEntry, error)

	// Settings
	SetSetting(ctx context.Context, key, value string) error
	GetSetting(ctx context.Context, key string) (string, error)

	// Lifecycle
	Close() error
}

// CachedSnapshot is one cached resource payload with its write time.
type CachedSnapshot struct {
	Key       string
	Payload   []byte
	FetchedAt time.Time
}

// JournalEntry is one recorded order submission.
type JournalEntry struct {
	ID                 int64
	Symbol             string
	Side               models.OrderSide
	Quantity           float64
	Type               models.OrderType
	LimitPrice         *float64
	Outcome            models.OutcomeKind
	Reason             string
	RiskScore          float64
	CompatibilityScore float64
	Message            string
	OverrideRisk       bool
	OverrideStrategy   bool
	SettledAt          time.Time
}

// JournalFilter represents filters for querying the submission journal.
type JournalFilter struct {
	Symbol    string
	Outcome   models.OutcomeKind
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
