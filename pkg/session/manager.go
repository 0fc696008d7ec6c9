package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/errors"
)

// Manager serializes publication of snapshots against reads.
//
// Publish holds the write lock while the store is updated and the latest
// reference is swapped; Get and Latest take the read lock. A snapshot is
// complete before it is published, so readers see either the old or the
// new snapshot and never a mixture.
type Manager struct {
	mu     sync.RWMutex
	store  Store
	latest *Snapshot
	logger *log.Logger
}

// NewManager returns a manager backed by store. A nil store keeps only the
// latest snapshot in memory.
func NewManager(store Store, logger *log.Logger) *Manager {
	if store == nil {
		store = NewMemoryStore(1)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{store: store, logger: logger}
}

// Publish stores snap and makes it the latest snapshot.
func (m *Manager) Publish(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, snap); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store session %s", snap.ID)
	}
	m.latest = snap
	m.logger.Debug("published session", "id", snap.ID, "source", snap.Source,
		"titles", snap.Report.Stats.Titles, "circular", snap.Circular.Len())
	return nil
}

// Latest returns the most recently published snapshot, or nil.
func (m *Manager) Latest() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// Get returns the snapshot with the given ID. An empty ID selects the
// latest snapshot. A missing snapshot is a SESSION_NOT_FOUND error.
func (m *Manager) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	latest := m.latest
	m.mu.RUnlock()

	if id == "" {
		if latest == nil {
			return nil, errors.New(errors.ErrCodeSessionNotFound, "no report has been parsed yet")
		}
		return latest, nil
	}
	if latest != nil && latest.ID == id {
		return latest, nil
	}

	snap, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session %s", id)
	}
	if snap == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return snap, nil
}

// Delete removes a snapshot. Deleting the latest snapshot clears it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete session %s", id)
	}
	if m.latest != nil && m.latest.ID == id {
		m.latest = nil
	}
	return nil
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
