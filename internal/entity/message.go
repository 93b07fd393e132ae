package entity

import (
	"strings"
	"time"
)

// CursorLayout is the wire format of a message page cursor
const CursorLayout = "2006-01-02T15:04:05.000Z07:00"

// Message represents a message in a conversation
type Message struct {
	Id             string    `json:"id" gorm:"column:id;primaryKey;size:32"`
	ConversationId string    `json:"conversationId" gorm:"column:conversation_id;size:36;index:idx_conv_created,priority:1"`
	SenderId       string    `json:"senderId" gorm:"column:sender_id;size:36"`
	Content        *string   `json:"content" gorm:"column:content;type:text"`
	ImgUrl         *string   `json:"imgUrl" gorm:"column:img_url;size:1024"`
	IsDestroyed    bool      `json:"-" gorm:"column:is_destroyed;default:false"`
	CreatedAt      time.Time `json:"createdAt" gorm:"column:created_at;index:idx_conv_created,priority:2"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// MessageBody is the user supplied payload of a message
type MessageBody struct {
	Content string
	ImgUrl  string
}

// Normalize trims both fields and reports whether anything is left
func (b MessageBody) Normalize() (MessageBody, bool) {
	b.Content = strings.TrimSpace(b.Content)
	b.ImgUrl = strings.TrimSpace(b.ImgUrl)
	return b, b.Content != "" || b.ImgUrl != ""
}

// Preview is the text stored as the conversation's last message content
func (m *Message) Preview() *string {
	if m.Content != nil {
		return m.Content
	}
	if m.ImgUrl != nil {
		s := "[image]"
		return &s
	}
	return nil
}

// MessageInfo represents message info for API response
type MessageInfo struct {
	Id             string    `json:"id"`
	ConversationId string    `json:"conversationId"`
	SenderId       string    `json:"senderId"`
	Content        *string   `json:"content"`
	ImgUrl         *string   `json:"imgUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToMessageInfo converts Message to MessageInfo
func (m *Message) ToMessageInfo() *MessageInfo {
	return &MessageInfo{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		SenderId:       m.SenderId,
		Content:        m.Content,
		ImgUrl:         m.ImgUrl,
		CreatedAt:      m.CreatedAt,
	}
}

// MessagePage is one page of a conversation's history, oldest first
type MessagePage struct {
	Messages   []*MessageInfo `json:"messages"`
	NextCursor *string        `json:"nextCursor"`
}

// SendResult is returned after a direct message was stored
type SendResult struct {
	Message      *MessageInfo      `json:"message"`
	Conversation *ConversationInfo `json:"conversation"`
	UnreadCounts map[string]int    `json:"unreadCounts"`
	Created      bool              `json:"created"`
}

// FormatCursor renders t as a page cursor
func FormatCursor(t time.Time) string {
	return t.UTC().Format(CursorLayout)
}

// ParseCursor parses a page cursor. ok is false for empty or malformed input.
func ParseCursor(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
