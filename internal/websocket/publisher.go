package websocket

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/models"
)

// Channel is the Redis pub/sub channel carrying a teacher's events.
func Channel(teacherID string) string {
	return "teacher_updates:" + teacherID
}

// Publisher sends events to a teacher's channel. Delivery is best effort.
type Publisher struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewPublisher(r *redis.Client, l *zap.Logger) *Publisher {
	return &Publisher{redis: r, logger: logger.OrNop(l).Named("publisher")}
}

func (p *Publisher) Publish(ctx context.Context, teacherID string, msg models.WSMessage) {
	if p == nil || teacherID == "" {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to encode event", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if err := p.redis.Publish(ctx, Channel(teacherID), data).Err(); err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("teacher_id", teacherID),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
	}
}
