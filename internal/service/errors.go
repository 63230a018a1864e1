package service

import (
	"errors"

	"DrinkBuddy/internal/model"
)

// Kind 错误分类，handler 按它映射 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindBadInput
	KindNotFound
	KindForbidden
	KindInvalidState
	KindConflict
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindBadInput:
		return "bad_input"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error 业务错误：稳定的 Code 供客户端判断，Msg 给人看
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrInvalidID        = newError(KindBadInput, "invalid_id", "Invalid id")
	ErrCredentialsEmpty = newError(KindBadInput, "credentials_required", "username and password required")
	ErrMissingFields    = newError(KindBadInput, "missing_fields", "Missing required fields")
	ErrContentRequired  = newError(KindBadInput, "content_required", "content is required")

	ErrMissingToken       = newError(KindUnauthenticated, "missing_token", "Missing token")
	ErrInvalidToken       = newError(KindUnauthenticated, "invalid_token", "Invalid token")
	ErrTokenExpired       = newError(KindUnauthenticated, "token_expired", "Token expired")
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid_credentials", "invalid credentials")

	ErrUserNotFound        = newError(KindNotFound, "user_not_found", "User not found")
	ErrMeetupNotFound      = newError(KindNotFound, "meetup_not_found", "Meetup not found")
	ErrParticipantNotFound = newError(KindNotFound, "participant_not_found", "Participant not found")
	ErrCommentNotFound     = newError(KindNotFound, "comment_not_found", "Comment not found")

	ErrNotHost          = newError(KindForbidden, "host_only", "Host only")
	ErrHostCannotJoin   = newError(KindForbidden, "host_cannot_join", "Host cannot join their own meetup")
	ErrNotCommentAuthor = newError(KindForbidden, "not_comment_author", "Not allowed to modify this comment")

	ErrMeetupNotOpen    = newError(KindInvalidState, "meetup_not_open", "Meetup is not open")
	ErrMeetupClosed     = newError(KindInvalidState, "meetup_closed", "Meetup is closed")
	ErrMeetupCanceled   = newError(KindInvalidState, "meetup_canceled", "Meetup is canceled")
	ErrHostNotRemovable = newError(KindInvalidState, "host_not_removable", "Host cannot be removed")

	ErrMeetupFull    = newError(KindConflict, "meetup_full", "Meetup is full")
	ErrAlreadyJoined = newError(KindConflict, "already_joined", "Already joined")
	ErrUsernameTaken = newError(KindConflict, "username_taken", "username already exists")
)

// KindOf 非业务错误一律视为 internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// statusError 聚会状态不满足时给出具体原因
func statusError(status model.MeetupStatus) *Error {
	switch status {
	case model.MeetupClosed:
		return ErrMeetupClosed
	case model.MeetupCanceled:
		return ErrMeetupCanceled
	default:
		return ErrMeetupNotOpen
	}
}
