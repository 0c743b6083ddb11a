package ports

import (
	"context"

	"github.com/hostelhub/hostel-system/internal/core/domain"
)

// SignupInput carries the fields a student submits at registration.
type SignupInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// AuthService registers enrolled students and issues session tokens.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.Occupant, error)
	Login(ctx context.Context, email, password string) (string, *domain.Occupant, error)
}

// AuthRepository defines the occupant-store operations auth depends on.
type AuthRepository interface {
	Create(ctx context.Context, o *domain.Occupant) (*domain.Occupant, error)
	FindByEmail(ctx context.Context, email string) (*domain.Occupant, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
}
