package entity

// Reaction is one user's emoji on one message
type Reaction struct {
	Id        ReactionId `json:"id" gorm:"column:id;primaryKey;type:varchar(64)"`
	MessageId MessageId  `json:"message_id" gorm:"column:message_id;type:varchar(64);not null;index:idx_reactions_message;uniqueIndex:uk_reactions_message_user_emoji,priority:1"`
	UserId    UserId     `json:"user_id" gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uk_reactions_message_user_emoji,priority:2"`
	Emoji     string     `json:"emoji" gorm:"column:emoji;type:varchar(64);not null;uniqueIndex:uk_reactions_message_user_emoji,priority:3"`
}

// TableName returns the table name for Reaction
func (Reaction) TableName() string {
	return "reactions"
}
