// Package seed provisions the data a fresh installation needs.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// SuperuserStore reports whether a superuser already exists.
type SuperuserStore interface {
	SuperuserExists(ctx context.Context) (bool, error)
}

// SuperuserCreator provisions a superuser; services.UserService satisfies it.
type SuperuserCreator interface {
	CreateSuperuser(ctx context.Context, username, emailAddr, password, unit string) (*models.User, error)
}

// Superuser holds the bootstrap account settings.
type Superuser struct {
	Username string
	Email    string
	Password string
	Unit     string
}

// EnsureSuperuser creates the configured superuser unless one already exists.
// It returns (nil, nil) when nothing had to be done.
func EnsureSuperuser(ctx context.Context, store SuperuserStore, creator SuperuserCreator, account Superuser, lgr zerolog.Logger) (*models.User, error) {
	if strings.TrimSpace(account.Username) == "" || account.Password == "" {
		lgr.Debug().Msg("No bootstrap superuser configured")
		return nil, nil
	}

	exists, err := store.SuperuserExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for superuser: %w", err)
	}
	if exists {
		lgr.Debug().Msg("Superuser already present, skipping bootstrap")
		return nil, nil
	}

	user, err := creator.CreateSuperuser(ctx, account.Username, account.Email, account.Password, account.Unit)
	if err != nil {
		// Another instance won the race.
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			lgr.Info().Str("username", account.Username).Msg("Superuser created concurrently, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}

	lgr.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("Bootstrap superuser created")
	return user, nil
}
