package domain

import (
	"strings"
	"time"

	"github.com/RishitTandon7/CineVerse/internal/infrastructure/validate"
	"github.com/google/uuid"
)

// Connection is the registry's record of one live transport session. RoomID
// is empty while the connection is unjoined; a connection belongs to at most
// one room at a time.
type Connection struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	RoomID   string    `json:"roomId,omitempty"`
	Joined   time.Time `json:"joined"`
	LastSeen time.Time `json:"-"`
}

func NewConnection(id, label string) *Connection {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &Connection{
		ID:       id,
		Label:    label,
		Joined:   now,
		LastSeen: now,
	}
}

// NormalizeLabel validates and canonicalizes a client-supplied display label.
func NormalizeLabel(raw string) (string, error) {
	validateLabel := validate.Compose(
		validate.Required(),
		validate.MinLength(2),
		validate.MaxLength(32),
		validate.Matches(`^[a-zA-Z0-9][a-zA-Z0-9 _-]*[a-zA-Z0-9]$`,
			"label can only contain letters, numbers, spaces, underscores, and hyphens"),
	)

	if err := validateLabel(raw); err != nil {
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

// NormalizeRoomID validates a caller-supplied room identifier.
func NormalizeRoomID(raw string) (string, error) {
	validateRoom := validate.Compose(
		validate.Required(),
		validate.MaxLength(64),
		validate.Matches(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`,
			"room id can only contain letters, numbers, underscores, and hyphens"),
	)

	if err := validateRoom(raw); err != nil {
		return "", err
	}

	return strings.TrimSpace(raw), nil
}
