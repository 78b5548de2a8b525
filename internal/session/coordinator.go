package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RishitTandon7/CineVerse/internal/domain"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/logging"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/metrics"
)

// LifecyclePublisher forwards room lifecycle events to the broker. May be nil
// when no broker is configured; failures are logged, never surfaced to the
// triggering command.
type LifecyclePublisher interface {
	PublishRoomCreated(ctx context.Context, roomID string, mode domain.RoomMode) error
	PublishRoomDeleted(ctx context.Context, roomID string) error
	PublishMemberJoined(ctx context.Context, roomID, connID string, memberCount int) error
	PublishMemberLeft(ctx context.Context, roomID, connID string, memberCount int) error
	PublishPlaybackSynced(ctx context.Context, roomID string, snapshot domain.Snapshot) error
}

// Coordinator drives the per-connection state machine
// (Unjoined → Joined → Unjoined) and owns the registry and store it mutates.
// All commands run under one exclusive critical section; fan-out inside a
// command never suspends, so the lock is never held across a wait.
type Coordinator struct {
	registry    *Registry
	store       *Store
	broadcaster *Broadcaster
	publisher   LifecyclePublisher
	logger      logging.Logger
	metrics     *metrics.Metrics

	mu sync.Mutex
}

func NewCoordinator(
	registry *Registry,
	store *Store,
	broadcaster *Broadcaster,
	publisher LifecyclePublisher,
	logger logging.Logger,
	m *metrics.Metrics,
) *Coordinator {
	return &Coordinator{
		registry:    registry,
		store:       store,
		broadcaster: broadcaster,
		publisher:   publisher,
		logger:      logger,
		metrics:     m,
	}
}

// Connect registers a fresh transport connection in the Unjoined state.
func (c *Coordinator) Connect(id, label string, sender Sender) (*domain.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.registry.Register(id, label, sender)
	if err != nil {
		c.countError("connect")
		return nil, err
	}

	c.count("connect")
	c.gauges()
	return conn, nil
}

// Join moves the connection from Unjoined to Joined(roomID). A connection
// already in a room is rejected with ErrAlreadyInRoom; there is no implicit
// leave-then-join.
func (c *Coordinator) Join(connID, roomID string, mode domain.RoomMode) (RoomView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.registry.Get(connID)
	if err != nil {
		c.countError("join")
		return RoomView{}, err
	}
	if conn.RoomID != "" {
		c.countError("join")
		return RoomView{}, domain.ErrAlreadyInRoom
	}

	_, created := c.store.GetOrCreate(roomID, mode)
	view := c.store.AddMember(roomID, connID)

	if err := c.registry.SetRoom(connID, roomID); err != nil {
		// The connection vanished between Get and SetRoom; undo the add.
		c.store.RemoveMember(roomID, connID)
		c.countError("join")
		return RoomView{}, err
	}

	c.count("join")
	c.gauges()

	// Everyone in the room, joiner included, sees the join and the current
	// snapshot so late joiners sync immediately.
	c.broadcaster.NotifyRoom(roomID, NewUserJoined(roomID, conn.Label, connID, view.Playback), "")
	c.sendMemberList(connID, view)

	ctx := context.Background()
	if created {
		c.publish(func(p LifecyclePublisher) error { return p.PublishRoomCreated(ctx, roomID, view.Mode) })
	}
	c.publish(func(p LifecyclePublisher) error {
		return p.PublishMemberJoined(ctx, roomID, connID, view.MemberCount)
	})

	c.logInfo(logging.Join, "connection joined room", connID, roomID)
	return view, nil
}

// Leave moves the connection back to Unjoined and notifies the remaining
// members. Fails with ErrNotInRoom when the connection holds no membership.
func (c *Coordinator) Leave(connID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.leaveLocked(connID, false)
}

// PlaybackUpdate applies a playback event to the connection's room and
// broadcasts the canonical snapshot to all other members, so clients converge
// on one authoritative position instead of relaying divergent local state.
func (c *Coordinator) PlaybackUpdate(connID string, event domain.PlaybackEvent) (domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.registry.Get(connID)
	if err != nil {
		c.countError("playback_update")
		return domain.Snapshot{}, err
	}
	if conn.RoomID == "" {
		c.countError("playback_update")
		return domain.Snapshot{}, domain.ErrNotInRoom
	}

	snapshot, err := c.store.ApplyPlayback(conn.RoomID, event)
	if err != nil {
		c.countError("playback_update")
		return snapshot, err
	}

	c.count("playback_update")
	c.broadcaster.NotifyRoom(conn.RoomID, NewPlaybackSync(conn.RoomID, snapshot), connID)

	c.publish(func(p LifecyclePublisher) error {
		return p.PublishPlaybackSynced(context.Background(), conn.RoomID, snapshot)
	})

	return snapshot, nil
}

// Chat relays a chat line to every member of the connection's room.
func (c *Coordinator) Chat(connID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.registry.Get(connID)
	if err != nil {
		c.countError("chat")
		return err
	}
	if conn.RoomID == "" {
		c.countError("chat")
		return domain.ErrNotInRoom
	}

	c.count("chat")
	c.broadcaster.NotifyRoom(conn.RoomID, NewChatMessage(conn.RoomID, content, conn.Label, connID), "")
	return nil
}

// Disconnect is the implicit leave. It never fails: whatever bookkeeping
// still exists is cleaned up, inconsistencies included.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.leaveLocked(connID, true)

	c.registry.Unregister(connID)
	c.count("disconnect")
	c.gauges()
}

// Touch refreshes the connection's liveness timestamp.
func (c *Coordinator) Touch(connID string) {
	c.registry.Touch(connID)
}

// SweepStale force-disconnects connections that have not been seen within
// ttl, bounding memory growth from transports that vanished without a close.
func (c *Coordinator) SweepStale(ttl time.Duration) int {
	stale := c.registry.Stale(ttl)

	for _, id := range stale {
		sender, ok := c.registry.Sender(id)
		c.Disconnect(id)
		if ok {
			_ = sender.Close()
		}

		if c.metrics != nil {
			c.metrics.StaleSweeps.Inc()
		}
		if c.logger != nil {
			c.logger.Warn(logging.Session, logging.Sweep, "stale connection swept",
				map[logging.ExtraKey]any{logging.ConnectionId: id})
		}
	}

	return len(stale)
}

// RunSweeper ticks SweepStale until ctx is done.
func (c *Coordinator) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.SweepStale(ttl)
		case <-ctx.Done():
			return
		}
	}
}

// Store exposes the read-only surface for the page-serving boundary.
func (c *Coordinator) Store() *Store {
	return c.store
}

func (c *Coordinator) leaveLocked(connID string, implicit bool) error {
	command := "leave"
	if implicit {
		command = "disconnect"
	}

	conn, err := c.registry.Get(connID)
	if err != nil {
		if !implicit {
			c.countError(command)
		}
		return err
	}
	if conn.RoomID == "" {
		if !implicit {
			c.countError(command)
			return domain.ErrNotInRoom
		}
		return nil
	}

	roomID := conn.RoomID
	view, deleted, err := c.store.RemoveMember(roomID, connID)
	if err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		return err
	}

	if setErr := c.registry.SetRoom(connID, ""); setErr != nil && !implicit {
		return setErr
	}

	if !implicit {
		c.count(command)
	}
	c.gauges()

	c.broadcaster.NotifyRoom(roomID, NewUserLeft(roomID, conn.Label, connID), connID)

	ctx := context.Background()
	c.publish(func(p LifecyclePublisher) error {
		return p.PublishMemberLeft(ctx, roomID, connID, view.MemberCount)
	})
	if deleted {
		c.publish(func(p LifecyclePublisher) error { return p.PublishRoomDeleted(ctx, roomID) })
	}

	c.logInfo(logging.Leave, "connection left room", connID, roomID)
	return nil
}

func (c *Coordinator) sendMemberList(connID string, view RoomView) {
	sender, ok := c.registry.Sender(connID)
	if !ok {
		return
	}

	members := make([]MemberPayload, 0, len(view.MemberIDs))
	for _, id := range view.MemberIDs {
		conn, err := c.registry.Get(id)
		if err != nil {
			continue
		}
		members = append(members, MemberPayload{ConnectionID: conn.ID, Username: conn.Label})
	}

	if err := sender.Send(NewMemberList(view.ID, members)); err != nil && c.logger != nil {
		c.logger.Warn(logging.Session, logging.Delivery, "member list delivery failed",
			map[logging.ExtraKey]any{logging.ConnectionId: connID})
	}
}

func (c *Coordinator) publish(fn func(LifecyclePublisher) error) {
	if c.publisher == nil {
		return
	}
	if err := fn(c.publisher); err != nil && c.logger != nil {
		c.logger.Error(logging.RabbitMQ, logging.ExternalService, "lifecycle publish failed",
			map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
	}
}

func (c *Coordinator) count(command string) {
	if c.metrics != nil {
		c.metrics.CommandsTotal.WithLabelValues(command).Inc()
	}
}

func (c *Coordinator) countError(command string) {
	if c.metrics != nil {
		c.metrics.CommandErrors.WithLabelValues(command).Inc()
	}
}

func (c *Coordinator) gauges() {
	if c.metrics != nil {
		c.metrics.ActiveRooms.Set(float64(c.store.Len()))
		c.metrics.ActiveConnections.Set(float64(c.registry.Count()))
	}
}

func (c *Coordinator) logInfo(sub logging.SubCategory, msg, connID, roomID string) {
	if c.logger != nil {
		c.logger.Info(logging.Session, sub, msg, map[logging.ExtraKey]any{
			logging.ConnectionId: connID,
			logging.RoomId:       roomID,
		})
	}
}
