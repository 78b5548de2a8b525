package messaging

import "github.com/RishitTandon7/CineVerse/internal/domain"

const (
	RoomsQueue      = "rooms"
	DeadLetterQueue = "dead_letter_queue"
)

// Routing keys - using consistent event patterns
const (
	EventRoomCreated    = "room.created"
	EventRoomDeleted    = "room.deleted"
	EventMemberJoined   = "member.joined"
	EventMemberLeft     = "member.left"
	EventPlaybackSynced = "playback.synced"
)

// RoomEventData is the payload carried on every room routing key.
type RoomEventData struct {
	RoomID       string          `json:"roomId"`
	Mode         domain.RoomMode `json:"mode,omitempty"`
	ConnectionID string          `json:"connectionId,omitempty"`
	MemberCount  int             `json:"memberCount"`
	Playback     domain.Snapshot `json:"playback"`
}
