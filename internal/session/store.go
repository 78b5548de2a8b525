package session

import (
	"sync"

	"github.com/RishitTandon7/CineVerse/internal/domain"
)

// RoomView is a value snapshot of a room handed out by the store. No mutable
// Room ever escapes; every view is detached from store state.
type RoomView struct {
	ID          string
	Mode        domain.RoomMode
	MemberIDs   []string
	MemberCount int
	Playback    domain.Snapshot
}

// Store owns all Room instances. Every mutation runs under one mutex so
// membership and playback changes are linearizable per room.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*domain.Room),
	}
}

func (s *Store) view(room *domain.Room) RoomView {
	return RoomView{
		ID:          room.ID,
		Mode:        room.Mode,
		MemberIDs:   room.MemberIDs(),
		MemberCount: len(room.Members),
		Playback:    room.Playback,
	}
}

// GetOrCreate returns the existing room or creates one with an empty member
// set and a default snapshot. Mode is fixed at creation; later calls with a
// different mode do not change it (first-writer-wins).
func (s *Store) GetOrCreate(roomID string, mode domain.RoomMode) (RoomView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[roomID]
	if !exists {
		room = domain.NewRoom(roomID, mode)
		s.rooms[roomID] = room
	}

	return s.view(room), !exists
}

func (s *Store) Get(roomID string) (RoomView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[roomID]
	if !exists {
		return RoomView{}, domain.ErrRoomNotFound
	}

	return s.view(room), nil
}

// Describe reports what a room looks like, or would look like, without
// mutating the store. The page-serving boundary uses it to pick a template;
// creating rooms on a read path would leak empty rooms.
func (s *Store) Describe(roomID string, fallbackMode domain.RoomMode) (RoomView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if room, exists := s.rooms[roomID]; exists {
		return s.view(room), true
	}

	return RoomView{
		ID:       roomID,
		Mode:     fallbackMode,
		Playback: domain.Snapshot{Paused: true},
	}, false
}

// AddMember adds the connection to the room's member set, creating the room
// with the public default mode when absent. Re-adding is a no-op.
func (s *Store) AddMember(roomID, connID string) RoomView {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[roomID]
	if !exists {
		room = domain.NewRoom(roomID, domain.RoomModePublic)
		s.rooms[roomID] = room
	}

	room.AddMember(connID)
	return s.view(room)
}

// RemoveMember removes the connection; when the member set empties the room
// is deleted and deleted=true is reported. Rooms must not leak.
func (s *Store) RemoveMember(roomID, connID string) (view RoomView, deleted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[roomID]
	if !exists {
		return RoomView{}, false, domain.ErrRoomNotFound
	}

	if empty := room.RemoveMember(connID); empty {
		delete(s.rooms, roomID)
		return s.view(room), true, nil
	}

	return s.view(room), false, nil
}

// ApplyPlayback validates the event against the room's snapshot and applies
// it, returning the canonical snapshot all members should converge on.
func (s *Store) ApplyPlayback(roomID string, event domain.PlaybackEvent) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[roomID]
	if !exists {
		return domain.Snapshot{}, domain.ErrRoomNotFound
	}

	if err := room.Playback.Apply(event); err != nil {
		return room.Playback, err
	}

	return room.Playback, nil
}

// Members snapshots the current member set for broadcast fan-out.
func (s *Store) Members(roomID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[roomID]
	if !exists {
		return nil
	}
	return room.MemberIDs()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
