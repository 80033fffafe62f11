package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	EventRepository       *EventRepository
	RequestRepository     *RequestRepository
	PetRepository         *PetRepository
	VehicleRepository     *VehicleRepository
	PublicationRepository *PublicationRepository
	MessageRepository     *MessageRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		TokenRepository:       NewTokenRepository(db),
		EventRepository:       NewEventRepository(db),
		RequestRepository:     NewRequestRepository(db),
		PetRepository:         NewPetRepository(db),
		VehicleRepository:     NewVehicleRepository(db),
		PublicationRepository: NewPublicationRepository(db),
		MessageRepository:     NewMessageRepository(db),
	}
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// buildErr logs and wraps a squirrel build failure.
func buildErr(op string, err error) error {
	logger.Error().Err(err).Str("op", op).Msg("Error building SQL")
	return fmt.Errorf("failed to build %s query: %w", op, err)
}

// queryErr maps pgx.ErrNoRows to notFound and wraps anything else.
func queryErr(op string, err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}
	logger.Error().Err(err).Str("op", op).Msg("Error executing query")
	return fmt.Errorf("error during %s: %w", op, err)
}

// userJoinColumns selects the related user of a row under the alias u.
var userJoinColumns = []string{
	"u.id", "u.username", "u.email", "u.password", "u.first_name", "u.last_name", "u.unit", "u.role",
	"u.phone", "u.profile_photo", "u.is_active", "u.is_superuser", "u.last_login_at", "u.created_at", "u.updated_at",
}

func prefixed(alias string, cols ...string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
