package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mbeoliero/coursehub/internal/entity"
)

// MessageRepo is the repository for message operations
type MessageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates a new MessageRepo
func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create creates a new message
func (r *MessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *entity.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = entity.Now()
	}
	msg.UpdatedAt = msg.CreatedAt
	return tx.WithContext(ctx).Create(msg).Error
}

// ListBefore returns up to limit live messages of a conversation, newest
// first. When before is set only messages strictly older than it are returned.
func (r *MessageRepo) ListBefore(ctx context.Context, conversationId string, before *time.Time, limit int) ([]*entity.Message, error) {
	q := r.db.WithContext(ctx).
		Where("conversation_id = ? AND is_destroyed = ?", conversationId, false)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}

	var messages []*entity.Message
	err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SoftDelete hides a message from every read path
func (r *MessageRepo) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_destroyed": true,
			"updated_at":   entity.Now(),
		}).Error
}

