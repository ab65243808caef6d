package entity

// Conversation is a direct (two member) or group conversation
type Conversation struct {
	Id        ConversationId `json:"id" gorm:"column:id;primaryKey;type:varchar(64)"`
	IsGroup   bool           `json:"is_group" gorm:"column:is_group"`
	Name      *string        `json:"name,omitempty" gorm:"column:name;type:varchar(191)"`
	AdminId   *UserId        `json:"admin_id,omitempty" gorm:"column:admin_id;type:varchar(64)"`
	CreatedAt int64          `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName returns the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// IsAdmin reports whether userId administers this conversation
func (c *Conversation) IsAdmin(userId UserId) bool {
	return c.IsGroup && c.AdminId != nil && *c.AdminId == userId
}

// ConversationMember links a user to a conversation
type ConversationMember struct {
	Id                MemberId       `json:"id" gorm:"column:id;primaryKey;type:varchar(64)"`
	ConversationId    ConversationId `json:"conversation_id" gorm:"column:conversation_id;type:varchar(64);not null;index:idx_members_conversation;uniqueIndex:uk_members_conversation_user,priority:1"`
	UserId            UserId         `json:"user_id" gorm:"column:user_id;type:varchar(64);not null;index:idx_members_user;uniqueIndex:uk_members_conversation_user,priority:2"`
	LastSeenMessageId *MessageId     `json:"last_seen_message_id,omitempty" gorm:"column:last_seen_message_id;type:varchar(64)"`
	JoinedAt          int64          `json:"joined_at" gorm:"column:joined_at"`
}

// TableName returns the table name for ConversationMember
func (ConversationMember) TableName() string {
	return "conversation_members"
}

// ConversationSummary is a conversation as seen by one member
type ConversationSummary struct {
	Id          ConversationId `json:"id"`
	IsGroup     bool           `json:"is_group"`
	Name        *string        `json:"name,omitempty"`
	AdminId     *UserId        `json:"admin_id,omitempty"`
	CreatedAt   int64          `json:"created_at"`
	OtherUser   *UserInfo      `json:"other_user"`
	LastMessage *Message       `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
	MemberCount int64          `json:"member_count"`
}

// ActivityAt is the sort key of a summary: the last message time, or creation time when empty
func (s *ConversationSummary) ActivityAt() int64 {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.CreatedAt
}
