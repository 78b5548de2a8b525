package domain

import (
	"errors"
	"time"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrUnknownConnection   = errors.New("unknown connection")
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrAlreadyInRoom       = errors.New("already in a room")
	ErrNotInRoom           = errors.New("not in a room")
	ErrStaleUpdate         = errors.New("stale playback update")
	ErrInvalidInput        = errors.New("invalid input")
)

type RoomMode string

const (
	RoomModePublic  RoomMode = "public"
	RoomModePrivate RoomMode = "private"
)

// ParseRoomMode falls back to public for anything it doesn't recognize,
// matching the default for unadorned room links.
func ParseRoomMode(raw string) RoomMode {
	if RoomMode(raw) == RoomModePrivate {
		return RoomModePrivate
	}
	return RoomModePublic
}

// Room is a pure data aggregate. All mutation goes through the room store,
// which is its sole owner; nothing outside the store holds a live reference.
type Room struct {
	ID        string              `json:"id"`
	Mode      RoomMode            `json:"mode"`
	Members   map[string]struct{} `json:"-"`
	Playback  Snapshot            `json:"playback"`
	CreatedAt time.Time           `json:"createdAt"`
}

func NewRoom(id string, mode RoomMode) *Room {
	return &Room{
		ID:        id,
		Mode:      mode,
		Members:   make(map[string]struct{}),
		Playback:  Snapshot{Paused: true},
		CreatedAt: time.Now(),
	}
}

// AddMember is idempotent; re-adding an existing member is a no-op.
func (r *Room) AddMember(connID string) {
	r.Members[connID] = struct{}{}
}

// RemoveMember reports whether the member set is empty afterwards, which
// makes the room eligible for deletion.
func (r *Room) RemoveMember(connID string) (empty bool) {
	delete(r.Members, connID)
	return len(r.Members) == 0
}

func (r *Room) HasMember(connID string) bool {
	_, ok := r.Members[connID]
	return ok
}

// MemberIDs returns a copy safe to hand out while the store keeps mutating.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for id := range r.Members {
		ids = append(ids, id)
	}
	return ids
}
