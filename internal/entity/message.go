package entity

import "github.com/mbeoliero/parley/pkg/constant"

// MessageType is the kind of content a message carries
type MessageType string

const (
	MessageTypeText   MessageType = constant.MsgTypeText
	MessageTypeImage  MessageType = constant.MsgTypeImage
	MessageTypeSystem MessageType = constant.MsgTypeSystem
)

// IsUserSendable reports whether clients may send messages of this type
func (t MessageType) IsUserSendable() bool {
	return t == MessageTypeText || t == MessageTypeImage
}

// Message represents a message in a conversation
type Message struct {
	Id             MessageId      `json:"id" gorm:"column:id;primaryKey;type:varchar(64)"`
	ConversationId ConversationId `json:"conversation_id" gorm:"column:conversation_id;type:varchar(64);not null;index:idx_messages_conversation_created,priority:1"`
	SenderId       UserId         `json:"sender_id" gorm:"column:sender_id;type:varchar(64);not null"`
	Content        string         `json:"content" gorm:"column:content;type:text"`
	Type           MessageType    `json:"type" gorm:"column:type;type:varchar(16);not null"`
	IsDeleted      bool           `json:"is_deleted" gorm:"column:is_deleted"`
	EditedAt       *int64         `json:"edited_at,omitempty" gorm:"column:edited_at"`
	IsPinned       bool           `json:"is_pinned" gorm:"column:is_pinned"`
	ReplyToId      *MessageId     `json:"reply_to_id,omitempty" gorm:"column:reply_to_id;type:varchar(64)"`
	CreatedAt      int64          `json:"created_at" gorm:"column:created_at;index:idx_messages_conversation_created,priority:2"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// ReplySummary describes the message a reply points at
type ReplySummary struct {
	Id         MessageId `json:"id"`
	Content    string    `json:"content"`
	IsDeleted  bool      `json:"is_deleted"`
	SenderName string    `json:"sender_name"`
}

// NewReplySummary builds the summary of target. A deleted target never exposes its stored content.
func NewReplySummary(target *Message, sender *User) *ReplySummary {
	summary := &ReplySummary{
		Id:         target.Id,
		Content:    target.Content,
		IsDeleted:  target.IsDeleted,
		SenderName: constant.UnknownSenderName,
	}
	if target.IsDeleted {
		summary.Content = constant.DeletedMessagePlaceholder
	}
	if sender != nil {
		summary.SenderName = sender.Name
	}
	return summary
}

// MessageView is a message enriched for display
type MessageView struct {
	*Message
	Sender    *UserInfo     `json:"sender"`
	Reactions []*Reaction   `json:"reactions"`
	ReplyTo   *ReplySummary `json:"reply_to,omitempty"`
}
