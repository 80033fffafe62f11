package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// IPublicationRepository defines bulletin board persistence
type IPublicationRepository interface {
	Create(ctx context.Context, pub *models.Publication) error
	GetByID(ctx context.Context, id int64) (*models.Publication, error)
	Update(ctx context.Context, pub *models.Publication) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, pubType models.PublicationType, offset, limit uint64) ([]*models.Publication, int64, error)
}

var publicationColumns = []string{
	"id", "author_id", "title", "body", "type", "image", "document", "published_at", "updated_at",
}

// PublicationRepository handles publication database operations
type PublicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPublicationRepository creates a new PublicationRepository
func NewPublicationRepository(db *pgxpool.Pool) *PublicationRepository {
	return &PublicationRepository{db: db, sb: newBuilder()}
}

// Authors may have been deleted, hence the LEFT JOIN.
func (r *PublicationRepository) selectWithAuthor() squirrel.SelectBuilder {
	cols := append(prefixed("p", publicationColumns...), userJoinColumns...)
	return r.sb.Select(cols...).From("publications p").LeftJoin("users u ON u.id = p.author_id")
}

func scanPublicationWithAuthor(row rowScanner) (*models.Publication, error) {
	p := &models.Publication{}
	var author nullableUser
	dest := append([]any{&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.Type, &p.ImageRef, &p.DocumentRef,
		&p.PublishedAt, &p.UpdatedAt}, author.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Author = author.user()
	return p, nil
}

// Create inserts a publication
func (r *PublicationRepository) Create(ctx context.Context, pub *models.Publication) error {
	sql, args, err := r.sb.Insert("publications").
		Columns("author_id", "title", "body", "type", "image", "document").
		Values(pub.AuthorID, pub.Title, pub.Body, pub.Type, pub.ImageRef, pub.DocumentRef).
		Suffix("RETURNING id, published_at, updated_at").
		ToSql()
	if err != nil {
		return buildErr("create publication", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&pub.ID, &pub.PublishedAt, &pub.UpdatedAt); err != nil {
		return queryErr("create publication", err, nil)
	}
	return nil
}

// GetByID retrieves a publication with its author
func (r *PublicationRepository) GetByID(ctx context.Context, id int64) (*models.Publication, error) {
	sql, args, err := r.selectWithAuthor().Where(squirrel.Eq{"p.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, buildErr("get publication", err)
	}
	p, err := scanPublicationWithAuthor(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, queryErr("get publication", err, apperrors.ErrPublicationNotFound)
	}
	return p, nil
}

// Update writes the editable columns. published_at never changes.
func (r *PublicationRepository) Update(ctx context.Context, pub *models.Publication) error {
	sql, args, err := r.sb.Update("publications").
		SetMap(map[string]interface{}{
			"title":      pub.Title,
			"body":       pub.Body,
			"type":       pub.Type,
			"image":      pub.ImageRef,
			"document":   pub.DocumentRef,
			"updated_at": squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": pub.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return buildErr("update publication", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&pub.UpdatedAt); err != nil {
		return queryErr("update publication", err, apperrors.ErrPublicationNotFound)
	}
	return nil
}

// Delete removes a publication
func (r *PublicationRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("publications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return buildErr("delete publication", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return queryErr("delete publication", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPublicationNotFound
	}
	return nil
}

// List returns a page of publications newest first, with the total count.
func (r *PublicationRepository) List(ctx context.Context, pubType models.PublicationType, offset, limit uint64) ([]*models.Publication, int64, error) {
	where := squirrel.And{}
	if pubType != "" {
		where = append(where, squirrel.Eq{"p.type": pubType})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("publications p").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count publications", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, queryErr("count publications", err, nil)
	}

	q := r.selectWithAuthor().Where(where).OrderBy("p.published_at DESC", "p.id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, buildErr("list publications", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, queryErr("list publications", err, nil)
	}
	defer rows.Close()

	pubs := []*models.Publication{}
	for rows.Next() {
		p, err := scanPublicationWithAuthor(rows)
		if err != nil {
			return nil, 0, queryErr("list publications", err, nil)
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, queryErr("list publications", err, nil)
	}
	return pubs, total, nil
}
