package ws

import (
	"errors"
	"testing"

	"github.com/RishitTandon7/CineVerse/internal/domain"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
		wantErr  bool
	}{
		{
			name:     "join",
			raw:      `{"type":"join","data":{"room":"movie-night","mode":"private"}}`,
			wantType: CommandJoin,
		},
		{
			name:     "leave without data",
			raw:      `{"type":"leave"}`,
			wantType: CommandLeave,
		},
		{
			name:     "playback update",
			raw:      `{"type":"playback_update","data":{"type":"play","position":12.5,"clientTimestamp":1700000000000}}`,
			wantType: CommandPlaybackUpdate,
		},
		{
			name:     "chat",
			raw:      `{"type":"chat","data":{"content":"hello"}}`,
			wantType: CommandChat,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"dance"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `join movie-night`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cmd.Type != tt.wantType {
				t.Fatalf("type = %q, want %q", cmd.Type, tt.wantType)
			}
		})
	}
}

func TestParseCommandUnknownTypeError(t *testing.T) {
	_, err := ParseCommand([]byte(`{"type":"dance"}`))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCommandPayloads(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"type":"join","data":{"room":"r1","mode":"private"}}`))
	if err != nil {
		t.Fatal(err)
	}
	join, err := cmd.JoinPayload()
	if err != nil {
		t.Fatal(err)
	}
	if join.Room != "r1" || join.Mode != "private" {
		t.Fatalf("join payload = %+v", join)
	}

	cmd, err = ParseCommand([]byte(`{"type":"playback_update","data":{"type":"seek","position":90}}`))
	if err != nil {
		t.Fatal(err)
	}
	event, err := cmd.PlaybackPayload()
	if err != nil {
		t.Fatal(err)
	}
	if event.Type != domain.PlaybackSeek || event.Position != 90 {
		t.Fatalf("playback payload = %+v", event)
	}

	cmd, err = ParseCommand([]byte(`{"type":"chat","data":"not an object"}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cmd.ChatPayload(); err == nil {
		t.Fatal("expected malformed chat payload error")
	}
}
