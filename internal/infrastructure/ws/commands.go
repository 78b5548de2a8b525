package ws

import (
	"encoding/json"
	"fmt"

	"github.com/RishitTandon7/CineVerse/internal/domain"
)

const (
	CommandJoin           = "join"
	CommandLeave          = "leave"
	CommandPlaybackUpdate = "playback_update"
	CommandChat           = "chat"
)

// Command is the inbound envelope. Data stays raw until the type is known.
type Command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type JoinPayload struct {
	Room string `json:"room"`
	Mode string `json:"mode,omitempty"`
}

type ChatPayload struct {
	Content string `json:"content"`
}

func ParseCommand(raw []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return nil, fmt.Errorf("malformed command: %w", err)
	}

	switch cmd.Type {
	case CommandJoin, CommandLeave, CommandPlaybackUpdate, CommandChat:
		return &cmd, nil
	}

	return nil, fmt.Errorf("unknown command type %q: %w", cmd.Type, domain.ErrInvalidInput)
}

func (c *Command) JoinPayload() (JoinPayload, error) {
	var p JoinPayload
	if err := json.Unmarshal(c.Data, &p); err != nil {
		return p, fmt.Errorf("malformed join payload: %w", err)
	}
	return p, nil
}

func (c *Command) PlaybackPayload() (domain.PlaybackEvent, error) {
	var p domain.PlaybackEvent
	if err := json.Unmarshal(c.Data, &p); err != nil {
		return p, fmt.Errorf("malformed playback payload: %w", err)
	}
	return p, nil
}

func (c *Command) ChatPayload() (ChatPayload, error) {
	var p ChatPayload
	if err := json.Unmarshal(c.Data, &p); err != nil {
		return p, fmt.Errorf("malformed chat payload: %w", err)
	}
	return p, nil
}
