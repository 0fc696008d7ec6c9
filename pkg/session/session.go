// Package session manages the lifecycle of parsed reports.
//
// Every ingested report becomes an immutable [Snapshot]: the chunk sequence,
// the coordinate cache, the circular edge set and a query index over them.
// A [Manager] publishes snapshots under a single-writer lock and keeps a
// reference to the latest one; readers never observe a half-replaced
// snapshot because a new one is only published after it is fully built.
//
// Snapshots are persisted through a [Store]:
//   - memory: bounded LRU for the API server and tests
//   - file: JSON files for the CLI
//   - redis: shared storage for multi-instance deployments
//   - mongo: document storage with a TTL index
//
// # Usage
//
//	store := session.NewMemoryStore(64)
//	mgr := session.NewManager(store, logger)
//
//	snap, err := session.NewSnapshot("deps.txt", rep, circular)
//	if err != nil {
//	    return err
//	}
//	if err := mgr.Publish(ctx, snap); err != nil {
//	    return err
//	}
//
//	// Empty ID selects the latest snapshot.
//	snap, err = mgr.Get(ctx, "")
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/depscope/pkg/cycles"
	pkgio "github.com/matzehuels/depscope/pkg/io"
	"github.com/matzehuels/depscope/pkg/query"
	"github.com/matzehuels/depscope/pkg/report"
)

// DefaultTTL is how long persisted snapshots are kept.
const DefaultTTL = 24 * time.Hour

// Snapshot is one parsed report. It is never modified after creation and
// is safe for concurrent readers.
type Snapshot struct {
	ID        string
	Source    string
	CreatedAt time.Time

	Report   *report.Report
	Circular *cycles.EdgeSet
	Index    *query.Index
}

// NewID returns a random session identifier.
func NewID() string {
	return uuid.NewString()
}

// NewSnapshot wraps a finished parse in a snapshot with a fresh ID.
func NewSnapshot(source string, rep *report.Report, circular *cycles.EdgeSet) (*Snapshot, error) {
	if rep == nil {
		return nil, fmt.Errorf("nil report")
	}
	return build(NewID(), source, time.Now(), rep, circular), nil
}

func build(id, source string, created time.Time, rep *report.Report, circular *cycles.EdgeSet) *Snapshot {
	if circular == nil {
		circular = cycles.NewEdgeSet()
	}
	return &Snapshot{
		ID:        id,
		Source:    source,
		CreatedAt: created,
		Report:    rep,
		Circular:  circular,
		Index:     query.New(rep.Chunks, rep.Coordinates, circular),
	}
}

// Parsed returns the serializable view of the snapshot.
func (s *Snapshot) Parsed() pkgio.Parsed {
	return pkgio.Parsed{Source: s.Source, Report: s.Report, Circular: s.Circular}
}

// Store persists snapshots.
type Store interface {
	// Get retrieves a snapshot by ID.
	// Returns nil, nil if the snapshot doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Set stores a snapshot.
	Set(ctx context.Context, snap *Snapshot) error

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// envelope is the persisted form shared by the file, redis and mongo stores.
type envelope struct {
	ID        string          `json:"id"`
	Source    string          `json:"source,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
	Document  json.RawMessage `json:"document"`
}

func (e envelope) expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

func encode(s *Snapshot, ttl time.Duration) ([]byte, error) {
	doc, err := pkgio.Marshal(s.Parsed())
	if err != nil {
		return nil, err
	}
	env := envelope{ID: s.ID, Source: s.Source, CreatedAt: s.CreatedAt, Document: doc}
	if ttl > 0 {
		env.ExpiresAt = time.Now().Add(ttl)
	}
	return json.Marshal(env)
}

func decode(data []byte) (*Snapshot, envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, env, fmt.Errorf("parse snapshot: %w", err)
	}
	p, err := pkgio.Unmarshal(env.Document)
	if err != nil {
		return nil, env, fmt.Errorf("parse snapshot document: %w", err)
	}
	return build(env.ID, env.Source, env.CreatedAt, p.Report, p.Circular), env, nil
}
