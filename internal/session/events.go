package session

import (
	"time"

	"github.com/RishitTandon7/CineVerse/internal/domain"
)

const (
	UserJoined   = "user_joined"
	UserLeft     = "user_left"
	MemberList   = "member_list"
	PlaybackSync = "playback_sync"
	ChatMessage  = "chat_message"

	ErrorEvent = "error"
)

// Event is the unit of delivery: one envelope fanned out to room members and
// serialized as-is onto the wire.
type Event struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Payload structs
type UserJoinedPayload struct {
	Message      string          `json:"message"`
	Username     string          `json:"username"`
	ConnectionID string          `json:"connectionId"`
	Playback     domain.Snapshot `json:"playback"`
}

type UserLeftPayload struct {
	Username     string `json:"username"`
	ConnectionID string `json:"connectionId"`
}

type MemberPayload struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username"`
}

type MemberListPayload struct {
	Members []MemberPayload `json:"members"`
}

type PlaybackSyncPayload struct {
	Position float64 `json:"position"`
	Paused   bool    `json:"paused"`
}

type ChatMessagePayload struct {
	Content      string `json:"content"`
	Username     string `json:"username"`
	ConnectionID string `json:"connectionId"`
	Timestamp    string `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func NewUserJoined(roomID, username, connID string, snapshot domain.Snapshot) *Event {
	return &Event{
		Type:   UserJoined,
		RoomID: roomID,
		Data: UserJoinedPayload{
			Message:      username + " joined " + roomID,
			Username:     username,
			ConnectionID: connID,
			Playback:     snapshot,
		},
	}
}

func NewUserLeft(roomID, username, connID string) *Event {
	return &Event{
		Type:   UserLeft,
		RoomID: roomID,
		Data: UserLeftPayload{
			Username:     username,
			ConnectionID: connID,
		},
	}
}

func NewMemberList(roomID string, members []MemberPayload) *Event {
	return &Event{
		Type:   MemberList,
		RoomID: roomID,
		Data:   MemberListPayload{Members: members},
	}
}

func NewPlaybackSync(roomID string, snapshot domain.Snapshot) *Event {
	return &Event{
		Type:   PlaybackSync,
		RoomID: roomID,
		Data: PlaybackSyncPayload{
			Position: snapshot.Position,
			Paused:   snapshot.Paused,
		},
	}
}

func NewChatMessage(roomID, content, username, connID string) *Event {
	return &Event{
		Type:   ChatMessage,
		RoomID: roomID,
		Data: ChatMessagePayload{
			Content:      content,
			Username:     username,
			ConnectionID: connID,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func NewError(roomID, code, message string) *Event {
	return &Event{
		Type:   ErrorEvent,
		RoomID: roomID,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
