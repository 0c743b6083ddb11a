package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

// University email format; the capture group is the student's SAP id,
// checked against the enrollment allowlist.
var emailPattern = regexp.MustCompile(`^([0-9]{5})@students\.riphah\.edu\.pk$`)

var phonePattern = regexp.MustCompile(`^03[0-9]{9}$`)

var nonDigits = regexp.MustCompile(`\D`)

// AuthService registers enrolled students and issues session tokens. The
// enrollment allowlist is loaded once at startup and read-only thereafter.
type AuthService struct {
	repo      ports.AuthRepository
	enrolled  map[string]struct{}
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, enrolledIDs []string, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	enrolled := make(map[string]struct{}, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[strings.TrimSpace(id)] = struct{}{}
	}
	return &AuthService{
		repo:      repo,
		enrolled:  enrolled,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Signup registers a student after verifying the university email, the
// enrollment allowlist, and the normalized phone number.
func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.Occupant, error) {
	if input.FullName == "" || input.Email == "" || input.Phone == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	match := emailPattern.FindStringSubmatch(email)
	if match == nil {
		return nil, domain.ErrInvalidCredentials
	}
	sapID := match[1]
	if _, ok := s.enrolled[sapID]; !ok {
		return nil, domain.ErrNotEnrolled
	}

	phone, ok := normalizePhone(input.Phone)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	exists, err := s.repo.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, fmt.Errorf("%w: signup lookup: %v", domain.ErrStorage, err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	occupant := &domain.Occupant{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		Phone:        phone,
		SapID:        sapID,
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, occupant)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: signup create: %v", domain.ErrStorage, err)
	}

	s.logger.Info().Str("sap_id", sapID).Msg("student registered")
	return created, nil
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Occupant, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	occupant, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(occupant.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(occupant)
	if err != nil {
		return "", nil, err
	}
	return token, occupant, nil
}

func (s *AuthService) generateToken(o *domain.Occupant) (string, error) {
	claims := jwt.MapClaims{
		"sub":  o.ID,
		"role": o.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// normalizePhone reduces a Pakistani mobile number to the canonical
// 03XXXXXXXXX form, stripping the +92 country code and punctuation.
func normalizePhone(raw string) (string, bool) {
	clean := nonDigits.ReplaceAllString(raw, "")
	if strings.HasPrefix(clean, "92") {
		clean = clean[2:]
	}
	if strings.HasPrefix(clean, "0") {
		clean = clean[1:]
	}
	clean = "0" + clean
	if !phonePattern.MatchString(clean) {
		return "", false
	}
	return clean, true
}
