package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mbeoliero/coursehub/internal/entity"
)

const notificationBatchSize = 500

// NotificationRepo is the repository for notification operations
type NotificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a new NotificationRepo
func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create creates a notification
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// CreateBatch inserts many notifications in fixed size batches
func (r *NotificationRepo) CreateBatch(ctx context.Context, list []*entity.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(list, notificationBatchSize).Error
}

// Get gets a live notification owned by userId, nil when missing
func (r *NotificationRepo) Get(ctx context.Context, userId, id string) (*entity.Notification, error) {
	var n entity.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_destroyed = ?", id, userId, false).
		First(&n).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &n, nil
}

// List returns one page of a user's live notifications, newest first, and the total
func (r *NotificationRepo) List(ctx context.Context, userId string, unreadOnly bool, offset, limit int) ([]*entity.Notification, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&entity.Notification{}).
			Where("user_id = ? AND is_destroyed = ?", userId, false)
		if unreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []*entity.Notification
	err := base().
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// CountUnread counts a user's unread live notifications
func (r *NotificationRepo) CountUnread(ctx context.Context, userId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ? AND is_destroyed = ?", userId, false, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification read
func (r *NotificationRepo) MarkRead(ctx context.Context, userId, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userId).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": entity.Now(),
		}).Error
}

// MarkAllRead marks every unread notification of a user read and returns how many changed
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ? AND is_destroyed = ?", userId, false, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": entity.Now(),
		})
	return res.RowsAffected, res.Error
}

// SoftDelete hides a notification of a user
func (r *NotificationRepo) SoftDelete(ctx context.Context, userId, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userId).
		Updates(map[string]interface{}{
			"is_destroyed": true,
			"updated_at":   entity.Now(),
		}).Error
}
