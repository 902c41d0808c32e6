package snapshot

import (
	"context"
	"sort"
	"sync"

	"github.com/vango-dev/vtree/internal/errors"
)

// ErrNotFound matches, via errors.Is, the error returned by Load for an
// application without a snapshot.
var ErrNotFound = errors.New("E220")

// Store persists snapshots keyed by application ID.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, appID string) (*Snapshot, error)
	Delete(ctx context.Context, appID string) error
	Close() error
}

// Option configures a Store.
type Option func(*options)

type options struct {
	resolve HandlerResolver
}

// WithResolver binds handler names of loaded snapshots with resolve.
func WithResolver(resolve HandlerResolver) Option {
	return func(o *options) {
		o.resolve = resolve
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func notFound(appID string) error {
	return errors.Errorf("E220", "app %s", appID)
}

// MemoryStore keeps encoded snapshots in memory. It is safe for concurrent
// use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	opts options
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
		opts: buildOptions(opts),
	}
}

// Save stores s, replacing any previous snapshot of the same application.
func (m *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[s.AppID] = data
	m.mu.Unlock()
	return nil
}

// Load returns the snapshot of appID.
func (m *MemoryStore) Load(ctx context.Context, appID string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.data[appID]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(appID)
	}
	return Unmarshal(data, m.opts.resolve)
}

// Delete removes the snapshot of appID. Deleting a missing snapshot is not
// an error.
func (m *MemoryStore) Delete(ctx context.Context, appID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, appID)
	m.mu.Unlock()
	return nil
}

// IDs returns the stored application IDs in order.
func (m *MemoryStore) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
