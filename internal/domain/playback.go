package domain

type PlaybackEventType string

const (
	PlaybackPlay  PlaybackEventType = "play"
	PlaybackPause PlaybackEventType = "pause"
	PlaybackSeek  PlaybackEventType = "seek"
)

// PlaybackEvent is a client-submitted playback change. ClientTimestamp is the
// sender's logical clock in unix milliseconds; it orders play/pause updates
// from racing members.
type PlaybackEvent struct {
	Type            PlaybackEventType `json:"type"`
	Position        float64           `json:"position"`
	ClientTimestamp int64             `json:"clientTimestamp"`
}

func (e PlaybackEvent) Valid() bool {
	switch e.Type {
	case PlaybackPlay, PlaybackPause, PlaybackSeek:
		return e.Position >= 0
	}
	return false
}

// Snapshot is the authoritative (position, paused) pair a room agrees on.
// Clock is the logical timestamp of the last applied event.
type Snapshot struct {
	Position float64 `json:"position"`
	Paused   bool    `json:"paused"`
	Clock    int64   `json:"-"`
}

// Apply folds a playback event into the snapshot. Play/pause events carrying a
// timestamp at or before the recorded clock are stale and rejected, so a late
// arrival cannot silently regress the visible position. Seek always wins and
// resets the clock.
func (s *Snapshot) Apply(e PlaybackEvent) error {
	if !e.Valid() {
		return ErrInvalidInput
	}

	if e.Type == PlaybackSeek {
		s.Position = e.Position
		s.Clock = e.ClientTimestamp
		return nil
	}

	if e.ClientTimestamp <= s.Clock {
		return ErrStaleUpdate
	}

	s.Position = e.Position
	s.Paused = e.Type == PlaybackPause
	s.Clock = e.ClientTimestamp
	return nil
}
