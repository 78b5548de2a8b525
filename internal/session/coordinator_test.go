package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RishitTandon7/CineVerse/internal/domain"
)

type fakeSender struct {
	mu     sync.Mutex
	events []*Event
	fail   bool
	closed bool
}

func (f *fakeSender) Send(event *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("send buffer full")
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSender) received(eventType string) []*Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestCoordinator() *Coordinator {
	registry := NewRegistry()
	store := NewStore()
	broadcaster := NewBroadcaster(store, registry, nil, nil)
	return NewCoordinator(registry, store, broadcaster, nil, nil, nil)
}

func mustConnect(t *testing.T, c *Coordinator, id, label string) *fakeSender {
	t.Helper()

	sender := &fakeSender{}
	if _, err := c.Connect(id, label, sender); err != nil {
		t.Fatal(err)
	}
	return sender
}

func TestCoordinatorJoinNotifiesRoom(t *testing.T) {
	c := newTestCoordinator()

	alice := mustConnect(t, c, "a", "alice")
	bob := mustConnect(t, c, "b", "bob")

	if _, err := c.Join("a", "r1", domain.RoomModePublic); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Join("b", "r1", domain.RoomModePublic); err != nil {
		t.Fatal(err)
	}

	// Alice sees bob arrive; bob sees his own join plus the member list.
	joins := alice.received(UserJoined)
	if len(joins) != 2 {
		t.Fatalf("alice saw %d join events, want 2 (her own and bob's)", len(joins))
	}
	payload, ok := joins[1].Data.(UserJoinedPayload)
	if !ok {
		t.Fatalf("join payload type %T", joins[1].Data)
	}
	if payload.Username != "bob" || payload.ConnectionID != "b" {
		t.Fatalf("join payload = %+v", payload)
	}

	lists := bob.received(MemberList)
	if len(lists) != 1 {
		t.Fatalf("bob got %d member lists, want 1", len(lists))
	}
	members := lists[0].Data.(MemberListPayload).Members
	if len(members) != 2 {
		t.Fatalf("member list holds %d entries, want 2", len(members))
	}
}

func TestCoordinatorJoinWhileJoined(t *testing.T) {
	c := newTestCoordinator()
	mustConnect(t, c, "a", "alice")

	if _, err := c.Join("a", "r1", domain.RoomModePublic); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Join("a", "r2", domain.RoomModePublic); !errors.Is(err, domain.ErrAlreadyInRoom) {
		t.Fatalf("err = %v, want ErrAlreadyInRoom", err)
	}

	// The first membership is untouched.
	if members := c.Store().Members("r1"); len(members) != 1 {
		t.Fatalf("r1 members = %v", members)
	}
	if _, err := c.Store().Get("r2"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("r2 = %v, want not found", err)
	}
}

func TestCoordinatorLeave(t *testing.T) {
	c := newTestCoordinator()

	alice := mustConnect(t, c, "a", "alice")
	mustConnect(t, c, "b", "bob")

	c.Join("a", "r1", domain.RoomModePublic)
	c.Join("b", "r1", domain.RoomModePublic)

	if err := c.Leave("b"); err != nil {
		t.Fatal(err)
	}

	lefts := alice.received(UserLeft)
	if len(lefts) != 1 {
		t.Fatalf("alice saw %d leave events, want 1", len(lefts))
	}
	if payload := lefts[0].Data.(UserLeftPayload); payload.Username != "bob" {
		t.Fatalf("leave payload = %+v", payload)
	}

	if err := c.Leave("b"); !errors.Is(err, domain.ErrNotInRoom) {
		t.Fatalf("second leave err = %v, want ErrNotInRoom", err)
	}

	// Last member out deletes the room.
	if err := c.Leave("a"); err != nil {
		t.Fatal(err)
	}
	if c.Store().Len() != 0 {
		t.Fatalf("store holds %d rooms, want 0", c.Store().Len())
	}
}

func TestCoordinatorPlaybackUpdate(t *testing.T) {
	c := newTestCoordinator()

	alice := mustConnect(t, c, "a", "alice")
	bob := mustConnect(t, c, "b", "bob")

	c.Join("a", "r1", domain.RoomModePublic)
	c.Join("b", "r1", domain.RoomModePublic)

	snapshot, err := c.PlaybackUpdate("a", domain.PlaybackEvent{
		Type: domain.PlaybackPlay, Position: 42, ClientTimestamp: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.Paused || snapshot.Position != 42 {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	// The sender is excluded from the sync broadcast.
	if got := alice.received(PlaybackSync); len(got) != 0 {
		t.Fatalf("alice received %d sync events, want 0", len(got))
	}
	syncs := bob.received(PlaybackSync)
	if len(syncs) != 1 {
		t.Fatalf("bob received %d sync events, want 1", len(syncs))
	}
	if payload := syncs[0].Data.(PlaybackSyncPayload); payload.Position != 42 || payload.Paused {
		t.Fatalf("sync payload = %+v", payload)
	}

	// A racing stale update is rejected and nothing is broadcast.
	if _, err := c.PlaybackUpdate("b", domain.PlaybackEvent{
		Type: domain.PlaybackPause, Position: 40, ClientTimestamp: 100,
	}); !errors.Is(err, domain.ErrStaleUpdate) {
		t.Fatalf("err = %v, want ErrStaleUpdate", err)
	}
	if got := alice.received(PlaybackSync); len(got) != 0 {
		t.Fatalf("stale update was broadcast to alice")
	}
}

func TestCoordinatorPlaybackUpdateWhileUnjoined(t *testing.T) {
	c := newTestCoordinator()
	mustConnect(t, c, "a", "alice")

	if _, err := c.PlaybackUpdate("a", domain.PlaybackEvent{
		Type: domain.PlaybackPlay, Position: 1, ClientTimestamp: 1,
	}); !errors.Is(err, domain.ErrNotInRoom) {
		t.Fatalf("err = %v, want ErrNotInRoom", err)
	}
}

func TestCoordinatorChat(t *testing.T) {
	c := newTestCoordinator()

	alice := mustConnect(t, c, "a", "alice")
	bob := mustConnect(t, c, "b", "bob")

	c.Join("a", "r1", domain.RoomModePublic)
	c.Join("b", "r1", domain.RoomModePublic)

	if err := c.Chat("a", "hello"); err != nil {
		t.Fatal(err)
	}

	// Chat goes to everyone, sender included.
	for name, sender := range map[string]*fakeSender{"alice": alice, "bob": bob} {
		msgs := sender.received(ChatMessage)
		if len(msgs) != 1 {
			t.Fatalf("%s received %d chat messages, want 1", name, len(msgs))
		}
		payload := msgs[0].Data.(ChatMessagePayload)
		if payload.Content != "hello" || payload.Username != "alice" {
			t.Fatalf("chat payload = %+v", payload)
		}
	}

	if err := c.Chat("b", "anyone?"); err != nil {
		t.Fatal(err)
	}
	if err := c.Leave("b"); err != nil {
		t.Fatal(err)
	}
	if err := c.Chat("b", "too late"); !errors.Is(err, domain.ErrNotInRoom) {
		t.Fatalf("err = %v, want ErrNotInRoom", err)
	}
}

func TestCoordinatorDisconnect(t *testing.T) {
	c := newTestCoordinator()

	alice := mustConnect(t, c, "a", "alice")
	mustConnect(t, c, "b", "bob")

	c.Join("a", "r1", domain.RoomModePublic)
	c.Join("b", "r1", domain.RoomModePublic)

	// Disconnect is an implicit leave and never fails.
	c.Disconnect("b")

	if len(alice.received(UserLeft)) != 1 {
		t.Fatal("alice did not see bob's implicit leave")
	}
	if members := c.Store().Members("r1"); len(members) != 1 {
		t.Fatalf("r1 members = %v", members)
	}

	// Idempotent for unknown connections.
	c.Disconnect("b")
	c.Disconnect("never-registered")

	c.Disconnect("a")
	if c.Store().Len() != 0 {
		t.Fatalf("store holds %d rooms after everyone left", c.Store().Len())
	}
}

func TestCoordinatorBroadcastSurvivesFailedSender(t *testing.T) {
	c := newTestCoordinator()

	alice := mustConnect(t, c, "a", "alice")
	c.Join("a", "r1", domain.RoomModePublic)

	broken := &fakeSender{fail: true}
	if _, err := c.Connect("b", "bob", broken); err != nil {
		t.Fatal(err)
	}
	c.Join("b", "r1", domain.RoomModePublic)

	charlie := mustConnect(t, c, "d", "charlie")
	if _, err := c.Join("d", "r1", domain.RoomModePublic); err != nil {
		t.Fatal(err)
	}

	// One member's full buffer must not stop delivery to the others.
	if len(alice.received(UserJoined)) != 3 {
		t.Fatalf("alice saw %d joins, want 3", len(alice.received(UserJoined)))
	}
	if len(charlie.received(UserJoined)) != 1 {
		t.Fatalf("charlie saw %d joins, want 1", len(charlie.received(UserJoined)))
	}
}

func TestCoordinatorSweepStale(t *testing.T) {
	c := newTestCoordinator()

	alice := mustConnect(t, c, "a", "alice")
	stale := mustConnect(t, c, "b", "bob")

	c.Join("a", "r1", domain.RoomModePublic)
	c.Join("b", "r1", domain.RoomModePublic)

	c.registry.mu.Lock()
	c.registry.entries["b"].conn.LastSeen = time.Now().Add(-time.Hour)
	c.registry.mu.Unlock()

	if n := c.SweepStale(time.Minute); n != 1 {
		t.Fatalf("swept %d connections, want 1", n)
	}

	if !stale.closed {
		t.Fatal("swept sender was not closed")
	}
	if len(alice.received(UserLeft)) != 1 {
		t.Fatal("remaining member did not see the swept member leave")
	}
	if c.registry.Count() != 1 {
		t.Fatalf("registry count = %d, want 1", c.registry.Count())
	}

	if n := c.SweepStale(time.Minute); n != 0 {
		t.Fatalf("second sweep removed %d, want 0", n)
	}
}
