package session

import (
	"sync"
	"time"

	"github.com/RishitTandon7/CineVerse/internal/domain"
)

// Sender is the outbound port for one connection. Send must not block; a
// sender that cannot accept the event reports an error and the event is
// dropped for that member only. Close tears the transport down.
type Sender interface {
	Send(event *Event) error
	Close() error
}

type registryEntry struct {
	conn   *domain.Connection
	sender Sender
}

// Registry tracks every live connection and its current room membership.
// It is the single source of truth for the Connection→Room direction of the
// membership relation.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
	}
}

func (r *Registry) Register(id, label string, sender Sender) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return nil, domain.ErrDuplicateConnection
	}

	conn := domain.NewConnection(id, label)
	r.entries[conn.ID] = &registryEntry{conn: conn, sender: sender}

	return conn, nil
}

// Unregister removes the connection and reports the room it held, if any.
// Unregistering an unknown id is a no-op, not an error.
func (r *Registry) Unregister(id string) (roomID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return "", false
	}

	delete(r.entries, id)
	return entry.conn.RoomID, true
}

// SetRoom updates the tracked room; an empty roomID clears membership.
func (r *Registry) SetRoom(id, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return domain.ErrUnknownConnection
	}

	entry.conn.RoomID = roomID
	return nil
}

// Get returns a copy of the connection record.
func (r *Registry) Get(id string) (domain.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return domain.Connection{}, domain.ErrUnknownConnection
	}

	return *entry.conn, nil
}

// Touch refreshes the liveness timestamp; unknown ids are ignored.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, exists := r.entries[id]; exists {
		entry.conn.LastSeen = time.Now()
	}
}

func (r *Registry) Sender(id string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, false
	}
	return entry.sender, true
}

// Stale returns ids of connections not seen within ttl.
func (r *Registry) Stale(ttl time.Duration) []string {
	cutoff := time.Now().Add(-ttl)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []string
	for id, entry := range r.entries {
		if entry.conn.LastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
