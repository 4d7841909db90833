package ports

import (
	"context"

	"github.com/kopinusa/storefront/internal/core/domain"
)

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Name            string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

type ResetPasswordInput struct {
	Email       string
	NewPassword string
	Token       string
}

// ProfileInput carries a profile update. An empty Password means "no change".
type ProfileInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
}

// AuthService is the single source of truth for who is logged in.
// Login and Register return the signed cookie value alongside the session.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (string, *domain.Session, error)
	Register(ctx context.Context, in RegisterInput) (string, *domain.Session, error)
	Logout(ctx context.Context, sess *domain.Session) error
	Authenticate(ctx context.Context, cookie string) (*domain.Session, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
	VerifyEmail(ctx context.Context, token string) (string, error)
	UpdateProfile(ctx context.Context, sess *domain.Session, userID string, in ProfileInput) (*domain.Identity, error)
}
