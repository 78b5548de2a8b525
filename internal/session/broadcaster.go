package session

import (
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/logging"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/metrics"
)

// SenderLookup resolves a connection id to its outbound port. The registry
// implements it.
type SenderLookup interface {
	Sender(connID string) (Sender, bool)
}

// Broadcaster fans an event out to the members of a room. The member set is
// snapshotted under the store lock; delivery happens without it, so a member
// leaving mid-broadcast may or may not receive the in-flight event
// (best-effort, not exactly-once).
type Broadcaster struct {
	store   *Store
	senders SenderLookup
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewBroadcaster(store *Store, senders SenderLookup, logger logging.Logger, m *metrics.Metrics) *Broadcaster {
	return &Broadcaster{
		store:   store,
		senders: senders,
		logger:  logger,
		metrics: m,
	}
}

// NotifyRoom delivers event to every current member of roomID except
// excludeConnID (when non-empty) and returns the delivered count. A failed
// delivery to one member is logged and skipped; it never fails the broadcast.
func (b *Broadcaster) NotifyRoom(roomID string, event *Event, excludeConnID string) int {
	members := b.store.Members(roomID)
	if b.metrics != nil {
		b.metrics.BroadcastsTotal.Inc()
	}

	delivered := 0
	for _, id := range members {
		if id == excludeConnID {
			continue
		}

		sender, ok := b.senders.Sender(id)
		if !ok {
			// Disconnected between snapshot and delivery
			b.deliveryFailed(roomID, id, event.Type, "sender gone")
			continue
		}

		if err := sender.Send(event); err != nil {
			b.deliveryFailed(roomID, id, event.Type, err.Error())
			continue
		}

		delivered++
		if b.metrics != nil {
			b.metrics.EventsDelivered.Inc()
		}
	}

	return delivered
}

func (b *Broadcaster) deliveryFailed(roomID, connID, eventType, reason string) {
	if b.metrics != nil {
		b.metrics.DeliveryFailures.Inc()
	}
	if b.logger != nil {
		b.logger.Warn(logging.Broadcast, logging.Delivery, "event delivery failed",
			map[logging.ExtraKey]any{
				logging.RoomId:       roomID,
				logging.ConnectionId: connID,
				"event":              eventType,
				"reason":             reason,
			})
	}
}
