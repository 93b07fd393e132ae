package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mbeoliero/coursehub/internal/entity"
)

// ConversationRepo is the repository for conversation operations
type ConversationRepo struct {
	db *gorm.DB
}

// NewConversationRepo creates a new ConversationRepo
func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// withProfiles preloads both participant profiles and the member rows
func withProfiles(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Student").
		Preload("Lecturer").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("role DESC")
		})
}

// GetByPair gets the live conversation of a pair, nil when there is none
func (r *ConversationRepo) GetByPair(ctx context.Context, tx *gorm.DB, pair entity.Pair) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := conn(ctx, r.db, tx).
		Where("student_id = ? AND lecturer_id = ? AND is_destroyed = ?", pair.StudentId, pair.LecturerId, false).
		First(&conv).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &conv, nil
}

// UpsertByPair returns the conversation of a pair, inserting it or reviving a
// soft deleted row for the same pair. created reports whether this call made
// the conversation live; concurrent callers racing on one pair get it at most
// once.
func (r *ConversationRepo) UpsertByPair(ctx context.Context, tx *gorm.DB, pair entity.Pair) (conv *entity.Conversation, created bool, err error) {
	now := entity.Now()

	var stored entity.Conversation
	err = conn(ctx, r.db, tx).
		Where("student_id = ? AND lecturer_id = ?", pair.StudentId, pair.LecturerId).
		First(&stored).Error
	if err = notFoundAsNil(err); err != nil {
		return nil, false, err
	}
	if stored.Id != "" {
		if !stored.IsDestroyed {
			return &stored, false, nil
		}
		res := conn(ctx, r.db, tx).
			Model(&entity.Conversation{}).
			Where("id = ? AND is_destroyed = ?", stored.Id, true).
			Updates(map[string]interface{}{"is_destroyed": false, "updated_at": now})
		if res.Error != nil {
			return nil, false, res.Error
		}
		conv, err = r.GetByPair(ctx, tx, pair)
		return conv, res.RowsAffected == 1 && conv != nil, err
	}

	fresh := &entity.Conversation{
		Id:         entity.NewId(),
		StudentId:  pair.StudentId,
		LecturerId: pair.LecturerId,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = conn(ctx, r.db, tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "lecturer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_destroyed": false,
			"updated_at":   now,
		}),
	}).Create(fresh).Error
	if err != nil {
		return nil, false, err
	}

	// a concurrent insert of the same pair turns ours into an update, so
	// only the row carrying our id was created here
	conv, err = r.GetByPair(ctx, tx, pair)
	if err != nil || conv == nil {
		return conv, false, err
	}
	return conv, conv.Id == fresh.Id, nil
}

// GetById gets a live conversation by Id, nil when missing
func (r *ConversationRepo) GetById(ctx context.Context, tx *gorm.DB, id string) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := conn(ctx, r.db, tx).
		Where("id = ? AND is_destroyed = ?", id, false).
		First(&conv).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &conv, nil
}

// LockById reads a live conversation holding its row lock until tx ends
func (r *ConversationRepo) LockById(ctx context.Context, tx *gorm.DB, id string) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_destroyed = ?", id, false).
		First(&conv).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &conv, nil
}

// GetWithProfiles gets a live conversation with profiles and members loaded
func (r *ConversationRepo) GetWithProfiles(ctx context.Context, tx *gorm.DB, id string) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := withProfiles(conn(ctx, r.db, tx)).
		Where("id = ? AND is_destroyed = ?", id, false).
		First(&conv).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &conv, nil
}

// ListByUser gets every live conversation of a user, most recent activity first
func (r *ConversationRepo) ListByUser(ctx context.Context, userId string) ([]*entity.Conversation, error) {
	var convs []*entity.Conversation
	err := withProfiles(r.db.WithContext(ctx)).
		Where("(student_id = ? OR lecturer_id = ?) AND is_destroyed = ?", userId, userId, false).
		Order("COALESCE(last_message_at, updated_at) DESC").
		Order("id ASC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// IdsByUser returns the ids of every live conversation of a user
func (r *ConversationRepo) IdsByUser(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("(student_id = ? OR lecturer_id = ?) AND is_destroyed = ?", userId, userId, false).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SetLastMessage points the denormalized last message fields at msg
func (r *ConversationRepo) SetLastMessage(ctx context.Context, tx *gorm.DB, msg *entity.Message) error {
	return tx.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("id = ?", msg.ConversationId).
		Updates(map[string]interface{}{
			"last_message_id":        msg.Id,
			"last_message_sender_id": msg.SenderId,
			"last_message_content":   msg.Preview(),
			"last_message_at":        msg.CreatedAt,
			"updated_at":             msg.CreatedAt,
		}).Error
}
