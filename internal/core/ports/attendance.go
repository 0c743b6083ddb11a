package ports

import (
	"context"
	"time"

	"github.com/hostelhub/hostel-system/internal/core/domain"
)

// QRToken is a freshly minted attendance token. Nothing about it is
// persisted; validity is proven by signature and embedded expiry alone.
type QRToken struct {
	Token     string
	ExpiresIn int // seconds until expiry, for proactive client refresh
}

// MarkResult is returned by a successful verification.
type MarkResult struct {
	Record *domain.AttendanceRecord
	// AlreadyMarked is true when attendance for the occupant's current
	// calendar day already existed and no new record was written.
	AlreadyMarked bool
}

// AttendanceService issues short-lived QR tokens and marks attendance at
// most once per occupant per calendar day.
type AttendanceService interface {
	IssueToken(ctx context.Context) (*QRToken, error)
	VerifyAndMark(ctx context.Context, occupantID, token, method string) (*MarkResult, error)
	ListAttendance(ctx context.Context, occupantID string) ([]*domain.AttendanceRecord, error)
}

// AttendanceRepository defines persistence operations for attendance
// records. The backing store must enforce a uniqueness constraint on
// (occupant, day); Insert surfaces a violation as
// domain.ErrDuplicateAttendance.
type AttendanceRepository interface {
	FindForDay(ctx context.Context, occupantID, day string) (*domain.AttendanceRecord, error)
	Insert(ctx context.Context, rec *domain.AttendanceRecord) error
	ListByOccupant(ctx context.Context, occupantID string) ([]*domain.AttendanceRecord, error)
}

// TokenPolicy holds the signing key and freshness policy for QR tokens.
// TTL and Methods are configurable but default to 30s and
// fingerprint/otp for compatibility with existing clients.
type TokenPolicy struct {
	Secret  string
	TTL     time.Duration
	Methods []string
}
