package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mbeoliero/coursehub/internal/entity"
)

// UserRepo is the repository for user operations
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new UserRepo
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create creates a new user
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetById gets a live user by Id, nil when missing
func (r *UserRepo) GetById(ctx context.Context, tx *gorm.DB, id string) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db, tx).
		Where("id = ? AND is_destroyed = ?", id, false).
		First(&user).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

// GetByEmail gets a live user by email, nil when missing
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_destroyed = ?", email, false).
		First(&user).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &user, nil
}

// GetByIds gets users by Ids
func (r *UserRepo) GetByIds(ctx context.Context, ids []string) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_destroyed = ?", ids, false).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListIds returns ids of live users, restricted to role when not empty
func (r *UserRepo) ListIds(ctx context.Context, role string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&entity.User{}).Where("is_destroyed = ?", false)
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var ids []string
	if err := q.Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Update updates user info
func (r *UserRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(updates).Error
}
