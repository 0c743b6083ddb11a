package domain

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrOccupantNotFound = errors.New("occupant not found")
	ErrRoomFull         = errors.New("room is full")
	ErrInvalidStatus    = errors.New("invalid room status filter")

	ErrInvalidMethod = errors.New("invalid verification method")
	// ErrTokenInvalid covers both signature failure and expiry; the two are
	// deliberately not distinguishable by the caller.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrDuplicateAttendance surfaces the storage-level unique (student, day)
	// constraint; the service resolves it to an "already marked" success.
	ErrDuplicateAttendance = errors.New("attendance already recorded for day")

	// ErrStorage marks store failures (including transaction aborts and
	// deadlines). The failed operation rolled back fully, so it is always
	// safe for the caller to retry.
	ErrStorage = errors.New("storage failure")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("email or phone already registered")
	ErrNotEnrolled        = errors.New("student not enlisted in university records")
	ErrForbidden          = errors.New("access forbidden")
)
