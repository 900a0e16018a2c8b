package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_moderation_console/internal/models"
	"github.com/shenikar/incident_moderation_console/internal/replica"
	"github.com/sirupsen/logrus"
)

const changeQueueKey = "incident_change_events"

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

// ChangeEvent - структура для данных вебхука об изменении реплики
type ChangeEvent struct {
	EventID    uuid.UUID        `json:"event_id"`
	Kind       string           `json:"kind"`
	EntityID   string           `json:"entity_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Incident   *models.Incident `json:"incident,omitempty"`
	Report     *models.Report   `json:"report,omitempty"`
}

// Publisher - интерфейс для публикации событий изменений в очередь доставки
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// RedisPublisher - реализация Publisher, использующая Redis
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish публикует событие изменения в очередь Redis
func (p *RedisPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	// LPUSH добавляет событие в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, changeQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event to Redis: %w", err)
	}
	return nil
}

// Bridge превращает публикацию вебхуков в подписчика движка реплики.
// Ошибки публикации логируются и не влияют на применение изменения.
func Bridge(ctx context.Context, pub Publisher, logger *logrus.Logger) replica.Subscriber {
	return func(ch replica.Change) {
		event := ChangeEvent{
			EventID:    uuid.New(),
			Kind:       ch.Event,
			OccurredAt: time.Now().UTC(),
			Incident:   ch.Incident,
			Report:     ch.Report,
		}
		switch {
		case ch.Incident != nil:
			event.EntityID = ch.Incident.ID
		case ch.Report != nil:
			event.EntityID = ch.Report.ID
		}

		if err := pub.Publish(ctx, event); err != nil {
			logger.WithError(err).WithField("kind", event.Kind).Error("Failed to enqueue change event for webhook delivery")
		}
	}
}
