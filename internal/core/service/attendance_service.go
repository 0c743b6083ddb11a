package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

const qrTokenType = "attendance"

// qrClaims is the signed payload of an attendance QR token. The token is
// never persisted; the signature plus embedded expiry prove validity, and
// the nonce keeps two tokens minted in the same second distinct.
type qrClaims struct {
	Type  string `json:"type"`
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// AttendanceService issues short-lived signed QR tokens and enforces
// at-most-one successful mark per occupant per calendar day.
type AttendanceService struct {
	repo   ports.AttendanceRepository
	policy ports.TokenPolicy
	audit  ports.AuditRecorder
	logger zerolog.Logger

	// now is the wall clock; swapped out in tests.
	now func() time.Time
}

func NewAttendanceService(
	repo ports.AttendanceRepository,
	policy ports.TokenPolicy,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *AttendanceService {
	if policy.TTL <= 0 {
		policy.TTL = 30 * time.Second
	}
	if len(policy.Methods) == 0 {
		policy.Methods = []string{domain.MethodFingerprint, domain.MethodOTP}
	}
	return &AttendanceService{
		repo:   repo,
		policy: policy,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// IssueToken mints a signed token valid for the policy TTL. Nothing is
// persisted; expiry is enforced again at verification time regardless of
// when the client submits.
func (s *AttendanceService) IssueToken(ctx context.Context) (*ports.QRToken, error) {
	now := s.now()
	claims := qrClaims{
		Type:  qrTokenType,
		Nonce: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.policy.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.policy.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign attendance token: %w", err)
	}

	return &ports.QRToken{
		Token:     signed,
		ExpiresIn: int(s.policy.TTL / time.Second),
	}, nil
}

// VerifyAndMark validates the token and method, then records attendance for
// the occupant's current calendar day. A repeat submission within the same
// day is a successful no-op flagged AlreadyMarked, never an error.
func (s *AttendanceService) VerifyAndMark(ctx context.Context, occupantID, token, method string) (*ports.MarkResult, error) {
	if !s.validMethod(method) {
		return nil, domain.ErrInvalidMethod
	}
	if err := s.verifyToken(token); err != nil {
		s.logger.Debug().Str("occupant_id", occupantID).Msg("attendance token rejected")
		return nil, err
	}

	now := s.now()
	day := domain.DayKey(now)

	existing, err := s.repo.FindForDay(ctx, occupantID, day)
	if err != nil {
		return nil, fmt.Errorf("%w: attendance lookup: %v", domain.ErrStorage, err)
	}
	if existing != nil {
		return &ports.MarkResult{Record: existing, AlreadyMarked: true}, nil
	}

	rec := &domain.AttendanceRecord{
		OccupantID: occupantID,
		Date:       now,
		Day:        day,
		VerifiedBy: method,
		Status:     domain.AttendancePresent,
		CreatedAt:  now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		// Lost the check-then-insert race: the unique (student, day) index is
		// the backstop. Return the surviving record as an idempotent repeat.
		if errors.Is(err, domain.ErrDuplicateAttendance) {
			winner, findErr := s.repo.FindForDay(ctx, occupantID, day)
			if findErr != nil || winner == nil {
				return nil, fmt.Errorf("%w: attendance re-read: %v", domain.ErrStorage, findErr)
			}
			return &ports.MarkResult{Record: winner, AlreadyMarked: true}, nil
		}
		return nil, fmt.Errorf("%w: attendance insert: %v", domain.ErrStorage, err)
	}

	s.logger.Info().
		Str("occupant_id", occupantID).
		Str("method", method).
		Str("day", day).
		Msg("attendance marked")
	s.audit.Record(ports.AuditEvent{
		OccupantID: occupantID,
		Kind:       ports.AuditAttendanceMarked,
		Detail:     map[string]string{"method": method, "day": day},
	})

	return &ports.MarkResult{Record: rec}, nil
}

// ListAttendance returns the occupant's records, newest first.
func (s *AttendanceService) ListAttendance(ctx context.Context, occupantID string) ([]*domain.AttendanceRecord, error) {
	records, err := s.repo.ListByOccupant(ctx, occupantID)
	if err != nil {
		return nil, fmt.Errorf("%w: list attendance: %v", domain.ErrStorage, err)
	}
	return records, nil
}

// verifyToken checks signature, expiry, and the type claim. All failures
// collapse into ErrTokenInvalid so a forger learns nothing about which
// check tripped.
func (s *AttendanceService) verifyToken(token string) error {
	claims := &qrClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.policy.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Type != qrTokenType {
		return domain.ErrTokenInvalid
	}
	return nil
}

func (s *AttendanceService) validMethod(method string) bool {
	for _, m := range s.policy.Methods {
		if m == method {
			return true
		}
	}
	return false
}
