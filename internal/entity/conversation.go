package entity

import "time"

// Conversation is a direct conversation between one student and one lecturer.
// The last message fields are a denormalized copy of the newest message and
// are only written in the transaction that inserts that message.
type Conversation struct {
	Id                  string                `json:"id" gorm:"column:id;primaryKey;size:36"`
	StudentId           string                `json:"studentId" gorm:"column:student_id;size:36;uniqueIndex:uk_conversation_pair,priority:1"`
	LecturerId          string                `json:"lecturerId" gorm:"column:lecturer_id;size:36;uniqueIndex:uk_conversation_pair,priority:2;index"`
	LastMessageId       *string               `json:"lastMessageId" gorm:"column:last_message_id;size:32"`
	LastMessageSenderId *string               `json:"lastMessageSenderId" gorm:"column:last_message_sender_id;size:36"`
	LastMessageContent  *string               `json:"lastMessageContent" gorm:"column:last_message_content;type:text"`
	LastMessageAt       *time.Time            `json:"lastMessageAt" gorm:"column:last_message_at"`
	IsDestroyed         bool                  `json:"-" gorm:"column:is_destroyed;default:false"`
	CreatedAt           time.Time             `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt           time.Time             `json:"updatedAt" gorm:"column:updated_at"`
	Student             *User                 `json:"-" gorm:"foreignKey:StudentId"`
	Lecturer            *User                 `json:"-" gorm:"foreignKey:LecturerId"`
	Members             []*ConversationMember `json:"-" gorm:"foreignKey:ConversationId"`
}

// TableName returns the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// Pair returns the (student, lecturer) key of the conversation
func (c *Conversation) Pair() Pair {
	return Pair{StudentId: c.StudentId, LecturerId: c.LecturerId}
}

// Member returns the member row of userId, or nil
func (c *Conversation) Member(userId string) *ConversationMember {
	for _, m := range c.Members {
		if m.UserId == userId {
			return m
		}
	}
	return nil
}

// UnreadCounts maps each member to its unread count
func (c *Conversation) UnreadCounts() map[string]int {
	counts := make(map[string]int, len(c.Members))
	for _, m := range c.Members {
		counts[m.UserId] = m.UnreadCount
	}
	return counts
}

// SeenBy lists members whose last seen message is the conversation's last message
func (c *Conversation) SeenBy() []string {
	seen := make([]string, 0, len(c.Members))
	if c.LastMessageId == nil {
		return seen
	}
	for _, m := range c.Members {
		if m.LastSeenMessageId != nil && *m.LastSeenMessageId == *c.LastMessageId {
			seen = append(seen, m.UserId)
		}
	}
	return seen
}

// ConversationMember is one side's bookkeeping row in a conversation
type ConversationMember struct {
	Id                string     `json:"id" gorm:"column:id;primaryKey;size:36"`
	ConversationId    string     `json:"conversationId" gorm:"column:conversation_id;size:36;uniqueIndex:uk_member,priority:1"`
	UserId            string     `json:"userId" gorm:"column:user_id;size:36;uniqueIndex:uk_member,priority:2;index"`
	Role              string     `json:"role" gorm:"column:role;size:16"`
	UnreadCount       int        `json:"unreadCount" gorm:"column:unread_count;default:0"`
	LastReadAt        *time.Time `json:"lastReadAt" gorm:"column:last_read_at"`
	LastSeenMessageId *string    `json:"lastSeenMessageId" gorm:"column:last_seen_message_id;size:32"`
	CreatedAt         time.Time  `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName returns the table name for ConversationMember
func (ConversationMember) TableName() string {
	return "conversation_members"
}

// MemberInfo represents member state for API response
type MemberInfo struct {
	UserId            string     `json:"userId"`
	Role              string     `json:"role"`
	UnreadCount       int        `json:"unreadCount"`
	LastReadAt        *time.Time `json:"lastReadAt"`
	LastSeenMessageId *string    `json:"lastSeenMessageId"`
}

// ToMemberInfo converts ConversationMember to MemberInfo
func (m *ConversationMember) ToMemberInfo() *MemberInfo {
	return &MemberInfo{
		UserId:            m.UserId,
		Role:              m.Role,
		UnreadCount:       m.UnreadCount,
		LastReadAt:        m.LastReadAt,
		LastSeenMessageId: m.LastSeenMessageId,
	}
}

// ConversationInfo represents conversation info for API response
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

// ToConversationInfo converts a conversation with its preloaded associations
func (c *Conversation) ToConversationInfo() *ConversationInfo {
	members := make([]*MemberInfo, 0, len(c.Members))
	for _, m := range c.Members {
		members = append(members, m.ToMemberInfo())
	}
	return &ConversationInfo{
		Id:                  c.Id,
		StudentId:           c.StudentId,
		LecturerId:          c.LecturerId,
		Student:             c.Student.ToUserInfo(),
		Lecturer:            c.Lecturer.ToUserInfo(),
		LastMessageId:       c.LastMessageId,
		LastMessageSenderId: c.LastMessageSenderId,
		LastMessageContent:  c.LastMessageContent,
		LastMessageAt:       c.LastMessageAt,
		Members:             members,
		UnreadCounts:        c.UnreadCounts(),
		SeenBy:              c.SeenBy(),
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// SeenStatus is the result of marking a conversation as seen
type SeenStatus struct {
	ConversationId    string     `json:"conversationId"`
	UserId            string     `json:"userId"`
	Message           string     `json:"message,omitempty"`
	SeenBy            []string   `json:"seenBy"`
	UnreadCount       int        `json:"unreadCount"`
	LastReadAt        *time.Time `json:"lastReadAt"`
	LastSeenMessageId *string    `json:"lastSeenMessageId"`
}
