package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mbeoliero/coursehub/internal/entity"
)

// KeyTokenRepo stores the per-user key record
type KeyTokenRepo struct {
	db *gorm.DB
}

// NewKeyTokenRepo creates a new KeyTokenRepo
func NewKeyTokenRepo(db *gorm.DB) *KeyTokenRepo {
	return &KeyTokenRepo{db: db}
}

// Upsert creates or replaces the key record of a user
func (r *KeyTokenRepo) Upsert(ctx context.Context, kt *entity.KeyToken) error {
	now := entity.Now()
	kt.UpdatedAt = now
	if kt.CreatedAt.IsZero() {
		kt.CreatedAt = now
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"public_key", "private_key", "refresh_token", "updated_at"}),
	}).Create(kt).Error
}

// GetByUserId returns the key record, nil when the user has none
func (r *KeyTokenRepo) GetByUserId(ctx context.Context, userId string) (*entity.KeyToken, error) {
	var kt entity.KeyToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&kt).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &kt, nil
}

// RotateRefreshToken replaces the current refresh token only when it still
// equals expected. It reports false when another refresh got there first.
func (r *KeyTokenRepo) RotateRefreshToken(ctx context.Context, userId, expected, next string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.KeyToken{}).
		Where("user_id = ? AND refresh_token = ?", userId, expected).
		Updates(map[string]interface{}{
			"refresh_token": next,
			"updated_at":    entity.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes the key record of a user
func (r *KeyTokenRepo) Delete(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&entity.KeyToken{}).Error
}
