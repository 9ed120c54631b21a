package users

import (
	"context"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Directory adapts the repository to the identity core's lookup contract.
type Directory struct {
	repo Repository
}

// NewDirectory constructs the auth.Directory adapter.
func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// FindByEmail resolves an external-identity email to a principal.
func (d *Directory) FindByEmail(ctx context.Context, email string) (auth.Principal, error) {
	p, err := d.repo.FindByEmail(ctx, email)
	if err != nil {
		return auth.Principal{}, err
	}
	return toAuthPrincipal(p), nil
}

// FindByID resolves a token subject to a principal.
func (d *Directory) FindByID(ctx context.Context, id shared.ID) (auth.Principal, error) {
	p, err := d.repo.FindByID(ctx, id)
	if err != nil {
		return auth.Principal{}, err
	}
	return toAuthPrincipal(p), nil
}

func toAuthPrincipal(p Principal) auth.Principal {
	return auth.Principal{
		ID:           p.ID,
		Role:         p.Role,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
	}
}

var _ auth.Directory = (*Directory)(nil)
