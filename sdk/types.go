package sdk

import (
	"encoding/json"
	"time"
)

// Response represents the standard API envelope
type Response struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
	Stack      string          `json:"stack,omitempty"`
}

// UserInfo represents public user info
type UserInfo struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignUpRequest represents user registration request
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is an access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse represents user login response
type LoginResponse struct {
	User   *UserInfo  `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// MemberInfo is one side of a conversation
type MemberInfo struct {
	UserId            string     `json:"userId"`
	Role              string     `json:"role"`
	UnreadCount       int        `json:"unreadCount"`
	LastReadAt        *time.Time `json:"lastReadAt"`
	LastSeenMessageId *string    `json:"lastSeenMessageId"`
}

// ConversationInfo represents a conversation with both profiles
type ConversationInfo struct {
	Id                  string         `json:"id"`
	StudentId           string         `json:"studentId"`
	LecturerId          string         `json:"lecturerId"`
	Student             *UserInfo      `json:"student,omitempty"`
	Lecturer            *UserInfo      `json:"lecturer,omitempty"`
	LastMessageId       *string        `json:"lastMessageId"`
	LastMessageSenderId *string        `json:"lastMessageSenderId"`
	LastMessageContent  *string        `json:"lastMessageContent"`
	LastMessageAt       *time.Time     `json:"lastMessageAt"`
	Members             []*MemberInfo  `json:"members"`
	UnreadCounts        map[string]int `json:"unreadCounts"`
	SeenBy              []string       `json:"seenBy"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// SeenStatus is the result of marking a conversation seen
type SeenStatus struct {
	ConversationId    string     `json:"conversationId"`
	UserId            string     `json:"userId"`
	Message           string     `json:"message,omitempty"`
	SeenBy            []string   `json:"seenBy"`
	UnreadCount       int        `json:"unreadCount"`
	LastReadAt        *time.Time `json:"lastReadAt"`
	LastSeenMessageId *string    `json:"lastSeenMessageId"`
}

// MessageInfo represents a message
type MessageInfo struct {
	Id             string    `json:"id"`
	ConversationId string    `json:"conversationId"`
	SenderId       string    `json:"senderId"`
	Content        *string   `json:"content"`
	ImgUrl         *string   `json:"imgUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MessagePage is one page of history, oldest first
type MessagePage struct {
	Messages   []*MessageInfo `json:"messages"`
	NextCursor *string        `json:"nextCursor"`
}

// SendDirectMessageRequest targets a conversation or a recipient, never both
type SendDirectMessageRequest struct {
	ConversationId string `json:"conversationId,omitempty"`
	RecipientId    string `json:"recipientId,omitempty"`
	Content        string `json:"content,omitempty"`
	ImgUrl         string `json:"imgUrl,omitempty"`
}

// SendResult is returned by SendDirectMessage
type SendResult struct {
	Message      *MessageInfo      `json:"message"`
	Conversation *ConversationInfo `json:"conversation"`
	UnreadCounts map[string]int    `json:"unreadCounts"`
	Created      bool              `json:"created"`
}

// Notification represents a user notification
type Notification struct {
	Id        string          `json:"id"`
	UserId    string          `json:"userId"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Type      string          `json:"type"`
	IsRead    bool            `json:"isRead"`
	RelatedId *string         `json:"relatedId"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NotificationPage is one page of notifications
type NotificationPage struct {
	Items       []*Notification `json:"items"`
	Total       int64           `json:"total"`
	UnreadCount int64           `json:"unreadCount"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
}

// ListNotificationsOptions filters ListNotifications
type ListNotificationsOptions struct {
	Page       int
	Limit      int
	UnreadOnly bool
}

// CreateNotificationRequest is sent by admins to notify one user
type CreateNotificationRequest struct {
	UserId    string                 `json:"userId"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	RelatedId string                 `json:"relatedId,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// BroadcastRequest targets explicit users, else every user of a role, else everybody
type BroadcastRequest struct {
	UserIds []string               `json:"userIds,omitempty"`
	Role    string                 `json:"role,omitempty"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Type    string                 `json:"type,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
