package realtime

import (
	"context"
	"sort"
	"sync"
)

// Presence records which users hold open realtime connections. Connection
// ids are unique per process, so a shared backend can track several
// instances at once.
type Presence interface {
	Register(ctx context.Context, userID, connID string) error
	Unregister(ctx context.Context, userID, connID string) error
	Lookup(ctx context.Context, userID string) ([]string, error)
	Online(ctx context.Context) ([]string, error)
}

// MemoryPresence keeps presence in process memory; it is lost on restart.
type MemoryPresence struct {
	mu    sync.RWMutex
	conns map[string]map[string]struct{}
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{conns: make(map[string]map[string]struct{})}
}

func (p *MemoryPresence) Register(_ context.Context, userID, connID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[userID]
	if !ok {
		set = make(map[string]struct{})
		p.conns[userID] = set
	}
	set[connID] = struct{}{}
	return nil
}

func (p *MemoryPresence) Unregister(_ context.Context, userID, connID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if set, ok := p.conns[userID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(p.conns, userID)
		}
	}
	return nil
}

func (p *MemoryPresence) Lookup(_ context.Context, userID string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.conns[userID]))
	for id := range p.conns[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *MemoryPresence) Online(_ context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]string, 0, len(p.conns))
	for id := range p.conns {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}
