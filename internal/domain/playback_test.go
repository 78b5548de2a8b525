package domain

import (
	"errors"
	"testing"
)

func TestSnapshotApply(t *testing.T) {
	tests := []struct {
		name         string
		start        Snapshot
		event        PlaybackEvent
		wantErr      error
		wantPosition float64
		wantPaused   bool
		wantClock    int64
	}{
		{
			name:         "play advances position and clock",
			start:        Snapshot{Position: 0, Paused: true, Clock: 100},
			event:        PlaybackEvent{Type: PlaybackPlay, Position: 12.5, ClientTimestamp: 200},
			wantPosition: 12.5,
			wantPaused:   false,
			wantClock:    200,
		},
		{
			name:         "pause records paused state",
			start:        Snapshot{Position: 30, Paused: false, Clock: 100},
			event:        PlaybackEvent{Type: PlaybackPause, Position: 31, ClientTimestamp: 150},
			wantPosition: 31,
			wantPaused:   true,
			wantClock:    150,
		},
		{
			name:         "stale play is rejected",
			start:        Snapshot{Position: 50, Paused: false, Clock: 300},
			event:        PlaybackEvent{Type: PlaybackPlay, Position: 10, ClientTimestamp: 300},
			wantErr:      ErrStaleUpdate,
			wantPosition: 50,
			wantPaused:   false,
			wantClock:    300,
		},
		{
			name:         "stale pause is rejected",
			start:        Snapshot{Position: 50, Paused: false, Clock: 300},
			event:        PlaybackEvent{Type: PlaybackPause, Position: 10, ClientTimestamp: 250},
			wantErr:      ErrStaleUpdate,
			wantPosition: 50,
			wantPaused:   false,
			wantClock:    300,
		},
		{
			name:         "seek overrides even with an older timestamp",
			start:        Snapshot{Position: 90, Paused: false, Clock: 500},
			event:        PlaybackEvent{Type: PlaybackSeek, Position: 5, ClientTimestamp: 100},
			wantPosition: 5,
			wantPaused:   false,
			wantClock:    100,
		},
		{
			name:         "seek keeps the paused state",
			start:        Snapshot{Position: 90, Paused: true, Clock: 500},
			event:        PlaybackEvent{Type: PlaybackSeek, Position: 42, ClientTimestamp: 600},
			wantPosition: 42,
			wantPaused:   true,
			wantClock:    600,
		},
		{
			name:         "negative position is invalid",
			start:        Snapshot{Position: 10, Paused: false, Clock: 100},
			event:        PlaybackEvent{Type: PlaybackPlay, Position: -1, ClientTimestamp: 200},
			wantErr:      ErrInvalidInput,
			wantPosition: 10,
			wantPaused:   false,
			wantClock:    100,
		},
		{
			name:         "unknown event type is invalid",
			start:        Snapshot{Position: 10, Paused: false, Clock: 100},
			event:        PlaybackEvent{Type: "rewind", Position: 5, ClientTimestamp: 200},
			wantErr:      ErrInvalidInput,
			wantPosition: 10,
			wantPaused:   false,
			wantClock:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := tt.start

			err := snapshot.Apply(tt.event)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Apply() error = %v, want %v", err, tt.wantErr)
			}

			if snapshot.Position != tt.wantPosition {
				t.Errorf("Position = %v, want %v", snapshot.Position, tt.wantPosition)
			}
			if snapshot.Paused != tt.wantPaused {
				t.Errorf("Paused = %v, want %v", snapshot.Paused, tt.wantPaused)
			}
			if snapshot.Clock != tt.wantClock {
				t.Errorf("Clock = %v, want %v", snapshot.Clock, tt.wantClock)
			}
		})
	}
}

func TestRoomMembership(t *testing.T) {
	room := NewRoom("r1", RoomModePublic)

	if !room.Playback.Paused || room.Playback.Position != 0 {
		t.Fatalf("new room snapshot = %+v, want paused at position 0", room.Playback)
	}

	room.AddMember("a")
	room.AddMember("a")
	room.AddMember("b")

	if len(room.Members) != 2 {
		t.Fatalf("member count = %d, want 2", len(room.Members))
	}
	if !room.HasMember("a") || !room.HasMember("b") {
		t.Fatal("expected both members present")
	}

	if empty := room.RemoveMember("a"); empty {
		t.Fatal("room reported empty with one member remaining")
	}
	if empty := room.RemoveMember("b"); !empty {
		t.Fatal("room did not report empty after last member left")
	}
}

func TestParseRoomMode(t *testing.T) {
	if got := ParseRoomMode("private"); got != RoomModePrivate {
		t.Errorf("ParseRoomMode(private) = %v", got)
	}
	if got := ParseRoomMode("public"); got != RoomModePublic {
		t.Errorf("ParseRoomMode(public) = %v", got)
	}
	if got := ParseRoomMode("vip"); got != RoomModePublic {
		t.Errorf("ParseRoomMode(vip) = %v, want public fallback", got)
	}
}
