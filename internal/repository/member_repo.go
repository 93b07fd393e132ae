package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mbeoliero/coursehub/internal/entity"
)

// MemberRepo is the repository for conversation member rows
type MemberRepo struct {
	db *gorm.DB
}

// NewMemberRepo creates a new MemberRepo
func NewMemberRepo(db *gorm.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// EnsureMembers creates the two member rows of a conversation, keeping any
// that already exist untouched
func (r *MemberRepo) EnsureMembers(ctx context.Context, tx *gorm.DB, conversationId string, pair entity.Pair) error {
	now := entity.Now()
	participants := pair.Participants()
	members := make([]*entity.ConversationMember, 0, len(participants))
	for _, p := range participants {
		members = append(members, &entity.ConversationMember{
			Id:             entity.NewId(),
			ConversationId: conversationId,
			UserId:         p.UserId(),
			Role:           p.Role(),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return conn(ctx, r.db, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&members).Error
}

// Get gets the member row of a user in a live conversation, nil when the user
// is not a member
func (r *MemberRepo) Get(ctx context.Context, tx *gorm.DB, conversationId, userId string) (*entity.ConversationMember, error) {
	var m entity.ConversationMember
	err := conn(ctx, r.db, tx).
		Joins("JOIN conversations c ON c.id = conversation_members.conversation_id AND c.is_destroyed = ?", false).
		Where("conversation_members.conversation_id = ? AND conversation_members.user_id = ?", conversationId, userId).
		First(&m).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &m, nil
}

// ListByConversation gets every member row of a conversation
func (r *MemberRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationId string) ([]*entity.ConversationMember, error) {
	var members []*entity.ConversationMember
	err := conn(ctx, r.db, tx).
		Where("conversation_id = ?", conversationId).
		Order("role DESC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// IncrementUnread bumps the unread count of every member except senderId
func (r *MemberRepo) IncrementUnread(ctx context.Context, tx *gorm.DB, conversationId, senderId string, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&entity.ConversationMember{}).
		Where("conversation_id = ? AND user_id <> ?", conversationId, senderId).
		Updates(map[string]interface{}{
			"unread_count": gorm.Expr("unread_count + ?", 1),
			"updated_at":   at,
		}).Error
}

// MarkSeen clears the unread count of a member and moves its read pointer to messageId
func (r *MemberRepo) MarkSeen(ctx context.Context, tx *gorm.DB, conversationId, userId, messageId string, at time.Time) error {
	return tx.WithContext(ctx).
		Model(&entity.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		Updates(map[string]interface{}{
			"unread_count":         0,
			"last_read_at":         at,
			"last_seen_message_id": messageId,
			"updated_at":           at,
		}).Error
}

// CountByConversation returns the number of member rows of a conversation
func (r *MemberRepo) CountByConversation(ctx context.Context, conversationId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ConversationMember{}).
		Where("conversation_id = ?", conversationId).
		Count(&count).Error
	return count, err
}
