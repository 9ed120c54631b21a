package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Principal is the directory view of an account, the minimum the identity
// core needs to resolve and authenticate a caller.
type Principal struct {
	ID           shared.ID
	Role         shared.Role
	Email        string
	PasswordHash string
}

// Directory resolves accounts. Implemented by the users repository.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (Principal, error)
	FindByID(ctx context.Context, id shared.ID) (Principal, error)
}

// Service orchestrates login flows: external-identity exchange and the
// bootstrap password login for locally provisioned accounts.
type Service struct {
	directory Directory
	gateway   *Gateway
	codec     *Codec
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(directory Directory, gateway *Gateway, codec *Codec) *Service {
	return &Service{
		directory: directory,
		gateway:   gateway,
		codec:     codec,
		now:       time.Now,
	}
}

// LoginStart builds the provider authorization URL for the caller to follow.
func (s *Service) LoginStart(ctx context.Context) (string, error) {
	return s.gateway.Start(ctx)
}

// LoginReturn completes the external-identity exchange and issues an identity
// token for the matching local account. Identities whose email matches no
// account are rejected; provisioning is an admin operation, never implicit.
func (s *Service) LoginReturn(ctx context.Context, code, state string) (string, error) {
	profile, err := s.gateway.Complete(ctx, code, state)
	if err != nil {
		return "", err
	}
	if !profile.EmailVerified {
		return "", fmt.Errorf("%w: email not verified by provider", httpx.ErrForbidden)
	}

	principal, err := s.directory.FindByEmail(ctx, profile.Email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", ErrNoSuchPrincipal
		}
		return "", err
	}

	return s.codec.Issue(principal.ID, s.now())
}

// PasswordLogin authenticates a locally provisioned account by email and
// password. Accounts created through the directory without a password (the
// common case for students and teachers) cannot log in this way.
func (s *Service) PasswordLogin(ctx context.Context, email, password string) (string, error) {
	principal, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
		}
		return "", err
	}
	if principal.PasswordHash == "" {
		return "", fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	return s.codec.Issue(principal.ID, s.now())
}
