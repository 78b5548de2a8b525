package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/RishitTandon7/CineVerse/internal/domain"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

// roomConsumer drains room lifecycle events off the broker and persists them
// as audit logs. Runs on its own goroutine; exits when the channel closes.
type roomConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.RoomAuditRepository
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ, audit domain.RoomAuditRepository) *roomConsumer {
	return &roomConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
	}
}

func (c *roomConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.RoomsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var payload messaging.RoomEventData
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			log.Printf("failed to unmarshal room event: %v", err)
			return err
		}

		entry := auditLogFor(msg.RoutingKey, payload)
		if entry == nil {
			log.Printf("unknown room event routing key: %s", msg.RoutingKey)
			return nil
		}

		if c.audit == nil {
			log.Printf("room event received: %s room=%s members=%d",
				msg.RoutingKey, payload.RoomID, payload.MemberCount)
			return nil
		}

		return c.audit.Log(ctx, entry)
	})
}

func auditLogFor(routingKey string, payload messaging.RoomEventData) *domain.RoomAuditLog {
	switch routingKey {
	case messaging.EventRoomCreated:
		return domain.NewRoomCreatedLog(payload.RoomID, payload.Mode)
	case messaging.EventRoomDeleted:
		return domain.NewRoomDeletedLog(payload.RoomID)
	case messaging.EventMemberJoined:
		return domain.NewMemberJoinedLog(payload.RoomID, payload.MemberCount)
	case messaging.EventMemberLeft:
		return domain.NewMemberLeftLog(payload.RoomID, payload.MemberCount)
	case messaging.EventPlaybackSynced:
		return domain.NewPlaybackSyncedLog(payload.RoomID, payload.Playback)
	}
	return nil
}
