package sdk

import (
	"errors"
	"fmt"
)

// Error represents an API error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

// Is matches errors carrying the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new error
func NewError(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// IsSuccess checks if the error code indicates success
func (e *Error) IsSuccess() bool {
	return e.Code == 0
}

// CodeOf returns the API code carried by err, or -1 when err is not an API error
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return -1
}

// Error codes returned by the server
const (
	// Success
	CodeSuccess = 0

	// Common errors (1xxx)
	CodeInvalidParam    = 1001
	CodeInternalServer  = 1002
	CodeUnauthenticated = 1003
	CodeForbidden       = 1004
	CodeNotFound        = 1005
	CodeConflict        = 1006

	// Auth errors (2xxx)
	CodeTokenInvalid    = 2001
	CodeTokenExpired    = 2002
	CodeTokenMissing    = 2003
	CodeTokenRevoked    = 2004
	CodeSubjectMismatch = 2005
	CodeUserNotFound    = 2006

	// Conversation errors (3xxx)
	CodeConvNotFound   = 3001
	CodeNotMember      = 3002
	CodeNotAdmin       = 3003
	CodeAlreadyMember  = 3004
	CodeNotGroup       = 3005
	CodeSelfDirect     = 3006
	CodeGroupNameEmpty = 3007

	// Message errors (4xxx)
	CodeMessageNotFound = 4001
	CodeNotSender       = 4002
	CodeMessageDeleted  = 4003
	CodeInvalidMsgType  = 4004
	CodeReplyNotFound   = 4006
	CodeEmptyEmoji      = 4007
)

// Predefined errors
var (
	ErrInvalidParam    = NewError(CodeInvalidParam, "invalid parameter")
	ErrUnauthenticated = NewError(CodeUnauthenticated, "unauthenticated")
	ErrTokenRevoked    = NewError(CodeTokenRevoked, "token revoked")
	ErrUserNotFound    = NewError(CodeUserNotFound, "user not found")
	ErrConvNotFound    = NewError(CodeConvNotFound, "conversation not found")
	ErrNotMember       = NewError(CodeNotMember, "not a conversation member")
	ErrNotAdmin        = NewError(CodeNotAdmin, "only admin can add members")
	ErrAlreadyMember   = NewError(CodeAlreadyMember, "user is already a member")
	ErrMessageNotFound = NewError(CodeMessageNotFound, "message not found")
	ErrNotSender       = NewError(CodeNotSender, "only the sender can change this message")
	ErrMessageDeleted  = NewError(CodeMessageDeleted, "cannot edit deleted message")
)
