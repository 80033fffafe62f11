package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// IRequestRepository defines resident request persistence
type IRequestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id int64) (*models.Request, error)
	Resolve(ctx context.Context, id int64, status models.RequestStatus, response *string) (*models.Request, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, userID *int64, status models.RequestStatus) ([]*models.Request, error)
	CountByStatus(ctx context.Context, userID *int64, status models.RequestStatus) (int, error)
}

var requestColumns = []string{
	"id", "user_id", "type", "title", "description", "status", "admin_response", "created_at", "updated_at",
}

// RequestRepository handles request database operations
type RequestRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db, sb: newBuilder()}
}

func scanRequest(row rowScanner, extra ...any) (*models.Request, error) {
	req := &models.Request{}
	dest := append([]any{&req.ID, &req.UserID, &req.Type, &req.Title, &req.Description, &req.Status,
		&req.AdminResponse, &req.CreatedAt, &req.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return req, nil
}

func scanRequestWithSubmitter(row rowScanner) (*models.Request, error) {
	u := &models.User{}
	req, err := scanRequest(row, &u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Unit,
		&u.Role, &u.Phone, &u.ProfilePhotoURL, &u.IsActive, &u.IsSuperuser, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	req.Submitter = u
	return req, nil
}

func (r *RequestRepository) selectWithSubmitter() squirrel.SelectBuilder {
	cols := append(prefixed("r", requestColumns...), userJoinColumns...)
	return r.sb.Select(cols...).From("requests r").Join("users u ON u.id = r.user_id")
}

// Create inserts a request in its initial state
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	sql, args, err := r.sb.Insert("requests").
		Columns("user_id", "type", "title", "description", "status").
		Values(req.UserID, req.Type, req.Title, req.Description, req.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return buildErr("create request", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return queryErr("create request", err, nil)
	}
	return nil
}

// GetByID retrieves a request with its submitter
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	sql, args, err := r.selectWithSubmitter().Where(squirrel.Eq{"r.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, buildErr("get request", err)
	}
	req, err := scanRequestWithSubmitter(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, queryErr("get request", err, apperrors.ErrRequestNotFound)
	}
	return req, nil
}

// Resolve sets status, response and updated_at in a single statement.
func (r *RequestRepository) Resolve(ctx context.Context, id int64, status models.RequestStatus, response *string) (*models.Request, error) {
	sql, args, err := r.sb.Update("requests").
		Set("status", status).
		Set("admin_response", response).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(requestColumns)).
		ToSql()
	if err != nil {
		return nil, buildErr("resolve request", err)
	}
	req, err := scanRequest(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, queryErr("resolve request", err, apperrors.ErrRequestNotFound)
	}
	return req, nil
}

// Delete removes a request
func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("requests").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return buildErr("delete request", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return queryErr("delete request", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRequestNotFound
	}
	return nil
}

// List returns requests newest first. A nil userID lists everyone's; an empty status any status.
func (r *RequestRepository) List(ctx context.Context, userID *int64, status models.RequestStatus) ([]*models.Request, error) {
	q := r.selectWithSubmitter().OrderBy("r.created_at DESC", "r.id DESC")
	if userID != nil {
		q = q.Where(squirrel.Eq{"r.user_id": *userID})
	}
	if status != "" {
		q = q.Where(squirrel.Eq{"r.status": status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr("list requests", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr("list requests", err, nil)
	}
	defer rows.Close()

	list := []*models.Request{}
	for rows.Next() {
		req, err := scanRequestWithSubmitter(rows)
		if err != nil {
			return nil, queryErr("list requests", err, nil)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("list requests", err, nil)
	}
	return list, nil
}

// CountByStatus counts requests in a status, optionally for one submitter.
func (r *RequestRepository) CountByStatus(ctx context.Context, userID *int64, status models.RequestStatus) (int, error) {
	q := r.sb.Select("COUNT(*)").From("requests").Where(squirrel.Eq{"status": status})
	if userID != nil {
		q = q.Where(squirrel.Eq{"user_id": *userID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, buildErr("count requests", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, queryErr("count requests", err, nil)
	}
	return n, nil
}
