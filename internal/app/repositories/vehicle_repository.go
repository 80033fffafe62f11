package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/dberrors"
	"github.com/selvaalegre/portal/internal/pkg/logger"
)

// IVehicleRepository defines vehicle registry persistence
type IVehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id int64) (*models.Vehicle, error)
	PlateExists(ctx context.Context, plate string, excludeID int64) (bool, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, unit string) ([]*models.Vehicle, error)
}

var vehicleColumns = []string{
	"id", "unit", "owner_name", "plate", "make", "model", "color", "owner_id", "registered_at",
}

const plateConstraint = "vehicles_plate_key"

// VehicleRepository handles vehicle database operations
type VehicleRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{db: db, sb: newBuilder()}
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	if err := row.Scan(&v.ID, &v.Unit, &v.OwnerName, &v.Plate, &v.Make, &v.Model, &v.Color,
		&v.OwnerID, &v.RegisteredAt); err != nil {
		return nil, err
	}
	return v, nil
}

// Create inserts a vehicle. A plate taken concurrently surfaces as ErrPlateAlreadyExists.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	sql, args, err := r.sb.Insert("vehicles").
		Columns("unit", "owner_name", "plate", "make", "model", "color", "owner_id").
		Values(vehicle.Unit, vehicle.OwnerName, vehicle.Plate, vehicle.Make, vehicle.Model, vehicle.Color, vehicle.OwnerID).
		Suffix("RETURNING id, registered_at").
		ToSql()
	if err != nil {
		return buildErr("create vehicle", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&vehicle.ID, &vehicle.RegisteredAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, plateConstraint) {
			logger.Warn().Str("plate", vehicle.Plate).Msg("Duplicate plate rejected by constraint")
			return apperrors.ErrPlateAlreadyExists
		}
		return queryErr("create vehicle", err, nil)
	}
	return nil
}

// GetByID retrieves a vehicle by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	sql, args, err := r.sb.Select(vehicleColumns...).From("vehicles").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, buildErr("get vehicle", err)
	}
	v, err := scanVehicle(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, queryErr("get vehicle", err, apperrors.ErrVehicleNotFound)
	}
	return v, nil
}

// PlateExists reports whether another vehicle (not excludeID) holds the plate.
func (r *VehicleRepository) PlateExists(ctx context.Context, plate string, excludeID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").From("vehicles").
		Where(squirrel.Eq{"plate": plate}).
		Where(squirrel.NotEq{"id": excludeID}).
		Prefix("SELECT EXISTS(").Suffix(")").
		ToSql()
	if err != nil {
		return false, buildErr("check plate", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, queryErr("check plate", err, nil)
	}
	return exists, nil
}

// Update replaces the editable columns
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	sql, args, err := r.sb.Update("vehicles").
		SetMap(map[string]interface{}{
			"unit":       vehicle.Unit,
			"owner_name": vehicle.OwnerName,
			"plate":      vehicle.Plate,
			"make":       vehicle.Make,
			"model":      vehicle.Model,
			"color":      vehicle.Color,
		}).
		Where(squirrel.Eq{"id": vehicle.ID}).
		ToSql()
	if err != nil {
		return buildErr("update vehicle", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, plateConstraint) {
			return apperrors.ErrPlateAlreadyExists
		}
		return queryErr("update vehicle", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVehicleNotFound
	}
	return nil
}

// Delete removes a vehicle
func (r *VehicleRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("vehicles").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return buildErr("delete vehicle", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return queryErr("delete vehicle", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVehicleNotFound
	}
	return nil
}

// List returns vehicles ordered by unit and plate
func (r *VehicleRepository) List(ctx context.Context, unit string) ([]*models.Vehicle, error) {
	q := r.sb.Select(vehicleColumns...).From("vehicles").OrderBy("unit ASC", "plate ASC")
	if unit != "" {
		q = q.Where(squirrel.Eq{"unit": unit})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr("list vehicles", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr("list vehicles", err, nil)
	}
	defer rows.Close()

	vehicles := []*models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, queryErr("list vehicles", err, nil)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("list vehicles", err, nil)
	}
	return vehicles, nil
}
