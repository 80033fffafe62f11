package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// IEventRepository defines calendar event persistence
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
	ListVisibleInRange(ctx context.Context, viewerID int64, from, to time.Time) ([]*models.Event, error)
	ListUpcomingVisible(ctx context.Context, viewerID int64, from time.Time, limit uint64) ([]*models.Event, error)
}

var eventColumns = []string{
	"id", "user_id", "title", "description", "start_at", "end_at", "category", "color", "created_at", "updated_at",
}

// EventRepository handles event database operations
type EventRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db, sb: newBuilder()}
}

func (r *EventRepository) selectWithCreator() squirrel.SelectBuilder {
	cols := append(prefixed("e", eventColumns...), userJoinColumns...)
	return r.sb.Select(cols...).From("events e").Join("users u ON u.id = e.user_id")
}

func scanEventWithCreator(row rowScanner) (*models.Event, error) {
	e := &models.Event{}
	u := &models.User{}
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartAt, &e.EndAt, &e.Category, &e.Color,
		&e.CreatedAt, &e.UpdatedAt,
		&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Unit, &u.Role,
		&u.Phone, &u.ProfilePhotoURL, &u.IsActive, &u.IsSuperuser, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Creator = u
	return e, nil
}

// visibleTo matches events the viewer created or that an administrator created.
func visibleTo(viewerID int64) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"e.user_id": viewerID},
		squirrel.Eq{"u.role": models.RoleAdmin},
		squirrel.Eq{"u.is_superuser": true},
	}
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	sql, args, err := r.sb.Insert("events").
		Columns("user_id", "title", "description", "start_at", "end_at", "category", "color").
		Values(event.UserID, event.Title, event.Description, event.StartAt, event.EndAt, event.Category, event.Color).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return buildErr("create event", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return queryErr("create event", err, nil)
	}
	return nil
}

// GetByID retrieves an event with its creator
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := r.selectWithCreator().Where(squirrel.Eq{"e.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, buildErr("get event", err)
	}
	e, err := scanEventWithCreator(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, queryErr("get event", err, apperrors.ErrEventNotFound)
	}
	return e, nil
}

// Update replaces the editable fields and refreshes updated_at
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	sql, args, err := r.sb.Update("events").
		SetMap(map[string]interface{}{
			"title":       event.Title,
			"description": event.Description,
			"start_at":    event.StartAt,
			"end_at":      event.EndAt,
			"category":    event.Category,
			"color":       event.Color,
			"updated_at":  squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": event.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return buildErr("update event", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&event.UpdatedAt); err != nil {
		return queryErr("update event", err, apperrors.ErrEventNotFound)
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return buildErr("delete event", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return queryErr("delete event", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// ListVisibleInRange returns events visible to the viewer starting in [from, to), ordered by start.
func (r *EventRepository) ListVisibleInRange(ctx context.Context, viewerID int64, from, to time.Time) ([]*models.Event, error) {
	return r.query(ctx, "list events in range", r.selectWithCreator().
		Where(visibleTo(viewerID)).
		Where(squirrel.GtOrEq{"e.start_at": from}).
		Where(squirrel.Lt{"e.start_at": to}).
		OrderBy("e.start_at ASC", "e.id ASC"))
}

// ListUpcomingVisible returns the next visible events starting at or after from.
func (r *EventRepository) ListUpcomingVisible(ctx context.Context, viewerID int64, from time.Time, limit uint64) ([]*models.Event, error) {
	return r.query(ctx, "list upcoming events", r.selectWithCreator().
		Where(visibleTo(viewerID)).
		Where(squirrel.GtOrEq{"e.start_at": from}).
		OrderBy("e.start_at ASC", "e.id ASC").
		Limit(limit))
}

func (r *EventRepository) query(ctx context.Context, op string, q squirrel.SelectBuilder) ([]*models.Event, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr(op, err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr(op, err, nil)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		e, err := scanEventWithCreator(rows)
		if err != nil {
			return nil, queryErr(op, err, nil)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(op, err, nil)
	}
	return events, nil
}
