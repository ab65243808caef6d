package entity

// TypingStatus records that a user was typing in a conversation at LastUpdatedAt
type TypingStatus struct {
	Id             TypingStatusId `json:"id" gorm:"column:id;primaryKey;type:varchar(64)"`
	ConversationId ConversationId `json:"conversation_id" gorm:"column:conversation_id;type:varchar(64);not null;uniqueIndex:uk_typing_conversation_user,priority:1"`
	UserId         UserId         `json:"user_id" gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uk_typing_conversation_user,priority:2"`
	LastUpdatedAt  int64          `json:"last_updated_at" gorm:"column:last_updated_at"`
}

// TableName returns the table name for TypingStatus
func (TypingStatus) TableName() string {
	return "typing_statuses"
}
