package events

import (
	"context"
	"encoding/json"

	"github.com/RishitTandon7/CineVerse/internal/domain"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/messaging"
)

// RoomPublisher pushes room lifecycle events onto the broker so downstream
// consumers (audit, analytics) observe membership churn without coupling to
// the session coordinator.
type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RoomPublisher) publish(ctx context.Context, routingKey string, data messaging.RoomEventData) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, body)
}

func (p *RoomPublisher) PublishRoomCreated(ctx context.Context, roomID string, mode domain.RoomMode) error {
	return p.publish(ctx, messaging.EventRoomCreated, messaging.RoomEventData{
		RoomID: roomID,
		Mode:   mode,
	})
}

func (p *RoomPublisher) PublishRoomDeleted(ctx context.Context, roomID string) error {
	return p.publish(ctx, messaging.EventRoomDeleted, messaging.RoomEventData{
		RoomID: roomID,
	})
}

func (p *RoomPublisher) PublishMemberJoined(ctx context.Context, roomID, connID string, memberCount int) error {
	return p.publish(ctx, messaging.EventMemberJoined, messaging.RoomEventData{
		RoomID:       roomID,
		ConnectionID: connID,
		MemberCount:  memberCount,
	})
}

func (p *RoomPublisher) PublishMemberLeft(ctx context.Context, roomID, connID string, memberCount int) error {
	return p.publish(ctx, messaging.EventMemberLeft, messaging.RoomEventData{
		RoomID:       roomID,
		ConnectionID: connID,
		MemberCount:  memberCount,
	})
}

func (p *RoomPublisher) PublishPlaybackSynced(ctx context.Context, roomID string, snapshot domain.Snapshot) error {
	return p.publish(ctx, messaging.EventPlaybackSynced, messaging.RoomEventData{
		RoomID:   roomID,
		Playback: snapshot,
	})
}
