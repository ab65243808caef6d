package entity

import (
	"time"

	"github.com/mbeoliero/parley/pkg/idgen"
)

// NowUnixMilli returns current unix timestamp in milliseconds
func NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

// Typed identifiers, one per entity kind
type (
	UserId         string
	ConversationId string
	MemberId       string
	MessageId      string
	ReactionId     string
	TypingStatusId string
)

// id is the set of identifier kinds NewId can mint
type id interface {
	UserId | ConversationId | MemberId | MessageId | ReactionId | TypingStatusId
}

// NewId generates a new identifier of the requested kind
func NewId[T id]() (T, error) {
	raw, err := idgen.NextID()
	if err != nil {
		var zero T
		return zero, err
	}
	return T(raw), nil
}

// AllModels lists every persisted entity, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Conversation{},
		&ConversationMember{},
		&Message{},
		&Reaction{},
		&TypingStatus{},
	}
}
