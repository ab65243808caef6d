package errcode

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// HTTPStatus returns the HTTP status used for errors of this kind
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error represents a business error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Kind Kind   `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, msg: %s", e.Code, e.Msg)
}

// Is reports whether target carries the same code, so wrapped copies still match their sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New creates a new error with kind, code and message
func New(kind Kind, code int, msg string) *Error {
	return &Error{Code: code, Msg: msg, Kind: kind}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code: e.Code,
		Msg:  fmt.Sprintf("%s: %v", e.Msg, err),
		Kind: e.Kind,
	}
}

// As extracts a business error from err
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Common error codes
var (
	// Success
	ErrSuccess = New(KindInternal, 0, "success")

	// Common errors (1xxx)
	ErrInvalidParam    = New(KindInvalid, 1001, "invalid parameter")
	ErrInternalServer  = New(KindInternal, 1002, "internal server error")
	ErrUnauthenticated = New(KindUnauthenticated, 1003, "unauthenticated")
	ErrForbidden       = New(KindForbidden, 1004, "forbidden")
	ErrNotFound        = New(KindNotFound, 1005, "not found")
	ErrConflict        = New(KindConflict, 1006, "conflict")

	// Auth errors (2xxx)
	ErrTokenInvalid    = New(KindUnauthenticated, 2001, "token invalid")
	ErrTokenExpired    = New(KindUnauthenticated, 2002, "token expired")
	ErrTokenMissing    = New(KindUnauthenticated, 2003, "token missing")
	ErrTokenRevoked    = New(KindUnauthenticated, 2004, "token revoked")
	ErrSubjectMismatch = New(KindForbidden, 2005, "auth id does not match token subject")
	ErrUserNotFound    = New(KindNotFound, 2006, "user not found")

	// Conversation errors (3xxx)
	ErrConvNotFound   = New(KindNotFound, 3001, "conversation not found")
	ErrNotMember      = New(KindForbidden, 3002, "not a conversation member")
	ErrNotAdmin       = New(KindForbidden, 3003, "only admin can add members")
	ErrAlreadyMember  = New(KindConflict, 3004, "user is already a member")
	ErrNotGroup       = New(KindInvalid, 3005, "not a group conversation")
	ErrSelfDirect     = New(KindInvalid, 3006, "cannot start a direct conversation with yourself")
	ErrGroupNameEmpty = New(KindInvalid, 3007, "group name is required")

	// Message errors (4xxx)
	ErrMessageNotFound = New(KindNotFound, 4001, "message not found")
	ErrNotSender       = New(KindForbidden, 4002, "only the sender can change this message")
	ErrMessageDeleted  = New(KindConflict, 4003, "cannot edit deleted message")
	ErrInvalidMsgType  = New(KindInvalid, 4004, "invalid message type")
	ErrReplyNotFound   = New(KindNotFound, 4006, "reply target not found")
	ErrEmptyEmoji      = New(KindInvalid, 4007, "emoji is empty")
)
