package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// IPetRepository defines pet registry persistence
type IPetRepository interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id int64) (*models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, unit string, species models.Species) ([]*models.Pet, error)
}

var petColumns = []string{
	"id", "unit", "name", "owner_name", "species", "description", "photo", "is_active", "owner_id", "registered_at",
}

// PetRepository handles pet database operations
type PetRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPetRepository creates a new PetRepository
func NewPetRepository(db *pgxpool.Pool) *PetRepository {
	return &PetRepository{db: db, sb: newBuilder()}
}

func scanPet(row rowScanner) (*models.Pet, error) {
	p := &models.Pet{}
	if err := row.Scan(&p.ID, &p.Unit, &p.Name, &p.OwnerName, &p.Species, &p.Description, &p.PhotoURL,
		&p.IsActive, &p.OwnerID, &p.RegisteredAt); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a pet
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	sql, args, err := r.sb.Insert("pets").
		Columns("unit", "name", "owner_name", "species", "description", "photo", "is_active", "owner_id").
		Values(pet.Unit, pet.Name, pet.OwnerName, pet.Species, pet.Description, pet.PhotoURL, pet.IsActive, pet.OwnerID).
		Suffix("RETURNING id, registered_at").
		ToSql()
	if err != nil {
		return buildErr("create pet", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&pet.ID, &pet.RegisteredAt); err != nil {
		return queryErr("create pet", err, nil)
	}
	return nil
}

// GetByID retrieves a pet by ID
func (r *PetRepository) GetByID(ctx context.Context, id int64) (*models.Pet, error) {
	sql, args, err := r.sb.Select(petColumns...).From("pets").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, buildErr("get pet", err)
	}
	p, err := scanPet(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, queryErr("get pet", err, apperrors.ErrPetNotFound)
	}
	return p, nil
}

// Update writes every editable column; merging is the caller's business.
func (r *PetRepository) Update(ctx context.Context, pet *models.Pet) error {
	sql, args, err := r.sb.Update("pets").
		SetMap(map[string]interface{}{
			"unit":        pet.Unit,
			"name":        pet.Name,
			"owner_name":  pet.OwnerName,
			"species":     pet.Species,
			"description": pet.Description,
			"photo":       pet.PhotoURL,
			"is_active":   pet.IsActive,
		}).
		Where(squirrel.Eq{"id": pet.ID}).
		ToSql()
	if err != nil {
		return buildErr("update pet", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return queryErr("update pet", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPetNotFound
	}
	return nil
}

// Delete removes a pet
func (r *PetRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("pets").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return buildErr("delete pet", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return queryErr("delete pet", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPetNotFound
	}
	return nil
}

// List returns active pets ordered by unit and name, optionally narrowed to a unit or species.
func (r *PetRepository) List(ctx context.Context, unit string, species models.Species) ([]*models.Pet, error) {
	q := r.sb.Select(petColumns...).From("pets").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("unit ASC", "name ASC", "id ASC")
	if unit != "" {
		q = q.Where(squirrel.Eq{"unit": unit})
	}
	if species != "" {
		q = q.Where(squirrel.Eq{"species": species})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr("list pets", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr("list pets", err, nil)
	}
	defer rows.Close()

	pets := []*models.Pet{}
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, queryErr("list pets", err, nil)
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("list pets", err, nil)
	}
	return pets, nil
}
