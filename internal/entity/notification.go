package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Notification belongs to one user
type Notification struct {
	Id          string         `json:"id" gorm:"column:id;primaryKey;size:36"`
	UserId      string         `json:"userId" gorm:"column:user_id;size:36;index:idx_notification_user,priority:1"`
	Title       string         `json:"title" gorm:"column:title;size:255"`
	Message     string         `json:"message" gorm:"column:message;type:text"`
	Type        string         `json:"type" gorm:"column:type;size:32"`
	IsRead      bool           `json:"isRead" gorm:"column:is_read;default:false;index:idx_notification_user,priority:2"`
	RelatedId   *string        `json:"relatedId" gorm:"column:related_id;size:64"`
	Data        datatypes.JSON `json:"data,omitempty" gorm:"column:data"`
	IsDestroyed bool           `json:"-" gorm:"column:is_destroyed;default:false"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// NotificationPage is one page of a user's notifications
type NotificationPage struct {
	Items       []*Notification `json:"items"`
	Total       int64           `json:"total"`
	UnreadCount int64           `json:"unreadCount"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
}
