package service

import (
	"errors"
	"fmt"
)

// Kind is the closed enumeration of lifecycle failure kinds. The API
// layer maps every kind to a transport status; callers never dispatch on
// error message text.
type Kind int

const (
	// KindInternal is anything unexpected. Detail is suppressed
	// externally outside development mode.
	KindInternal Kind = iota

	// KindNotFound means the share token (or id) is unknown.
	KindNotFound

	// KindNotActive means the operation requires an active split.
	KindNotActive

	// KindAlreadyJoined means the address is already a participant.
	KindAlreadyJoined

	// KindFull means the participant list has reached the target.
	KindFull

	// KindParticipantNotFound means the address is not in the list.
	KindParticipantNotFound

	// KindAlreadyPaid means the participant's paid flag is already set.
	KindAlreadyPaid

	// KindNotCreator means a creator-only operation was attempted by
	// another address.
	KindNotCreator

	// KindTokenSpaceExhausted means bounded token generation ran out of
	// attempts. Practically unreachable with a 36^12 space, still a
	// first-class handled path.
	KindTokenSpaceExhausted
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNotActive:
		return "not_active"
	case KindAlreadyJoined:
		return "already_joined"
	case KindFull:
		return "full"
	case KindParticipantNotFound:
		return "participant_not_found"
	case KindAlreadyPaid:
		return "already_paid"
	case KindNotCreator:
		return "not_creator"
	case KindTokenSpaceExhausted:
		return "token_space_exhausted"
	default:
		return "internal"
	}
}

// Error is a lifecycle failure carrying its kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// errf builds an Error with a formatted message.
func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from err, defaulting to KindInternal
// for errors that did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
