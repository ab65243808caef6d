package sdk

import "encoding/json"

// Response is the envelope of every API response
type Response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types
const (
	MsgTypeText   = "text"
	MsgTypeImage  = "image"
	MsgTypeSystem = "system"
)

// UserInfo is the public view of a user
type UserInfo struct {
	Id             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	AvatarImageUrl string `json:"avatar_image_url,omitempty"`
	IsOnline       bool   `json:"is_online"`
}

// SyncUserRequest pushes the caller's profile after login. Empty fields fall back to the token claims.
type SyncUserRequest struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	AvatarImageUrl string `json:"avatar_image_url,omitempty"`
}

// Message is a stored message
type Message struct {
	Id             string  `json:"id"`
	ConversationId string  `json:"conversation_id"`
	SenderId       string  `json:"sender_id"`
	Content        string  `json:"content"`
	Type           string  `json:"type"`
	IsDeleted      bool    `json:"is_deleted"`
	EditedAt       *int64  `json:"edited_at,omitempty"`
	IsPinned       bool    `json:"is_pinned"`
	ReplyToId      *string `json:"reply_to_id,omitempty"`
	CreatedAt      int64   `json:"created_at"`
}

// Reaction is one user's emoji on one message
type Reaction struct {
	Id        string `json:"id"`
	MessageId string `json:"message_id"`
	UserId    string `json:"user_id"`
	Emoji     string `json:"emoji"`
}

// ReplySummary describes the message a reply points at
type ReplySummary struct {
	Id         string `json:"id"`
	Content    string `json:"content"`
	IsDeleted  bool   `json:"is_deleted"`
	SenderName string `json:"sender_name"`
}

// MessageView is a message with its sender, reactions and reply summary
type MessageView struct {
	Message
	Sender    *UserInfo     `json:"sender"`
	Reactions []*Reaction   `json:"reactions"`
	ReplyTo   *ReplySummary `json:"reply_to,omitempty"`
}

// Conversation is a conversation as seen by the caller
type Conversation struct {
	Id          string    `json:"id"`
	IsGroup     bool      `json:"is_group"`
	Name        *string   `json:"name,omitempty"`
	AdminId     *string   `json:"admin_id,omitempty"`
	CreatedAt   int64     `json:"created_at"`
	OtherUser   *UserInfo `json:"other_user"`
	LastMessage *Message  `json:"last_message"`
	UnreadCount int64     `json:"unread_count"`
	MemberCount int64     `json:"member_count"`
}

// SendMessageRequest represents message send request
type SendMessageRequest struct {
	ConversationId string  `json:"conversation_id"`
	Content        string  `json:"content"`
	Type           string  `json:"type,omitempty"`
	ReplyToId      *string `json:"reply_to_id,omitempty"`
}
