package entity

import (
	"time"

	"github.com/mbeoliero/coursehub/pkg/constant"
)

// User represents a user in the system
type User struct {
	Id          string    `json:"id" gorm:"column:id;primaryKey;size:36"`
	Email       string    `json:"email" gorm:"column:email;size:191;uniqueIndex"`
	Name        string    `json:"name" gorm:"column:name;size:128"`
	Avatar      string    `json:"avatar" gorm:"column:avatar;size:512"`
	Password    string    `json:"-" gorm:"column:password"`
	Role        string    `json:"role" gorm:"column:role;size:16;index"`
	IsDestroyed bool      `json:"-" gorm:"column:is_destroyed;default:false"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may use administrative routes
func (u *User) IsAdmin() bool {
	return u.Role == constant.RoleAdmin
}

// UserInfo represents public user info (without password)
type UserInfo struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserInfo converts User to UserInfo
func (u *User) ToUserInfo() *UserInfo {
	if u == nil {
		return nil
	}
	return &UserInfo{
		Id:        u.Id,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// IsSignupRole reports whether role can be chosen at signup
func IsSignupRole(role string) bool {
	return role == constant.RoleStudent || role == constant.RoleLecturer
}
