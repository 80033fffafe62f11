package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/dberrors"
)

// IMessageRepository defines direct message persistence
type IMessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	MarkConversationRead(ctx context.Context, recipientID, senderID int64) ([]int64, error)
	ClaimUnread(ctx context.Context, recipientID, senderID int64) ([]*models.Message, error)
	Conversation(ctx context.Context, a, b int64) ([]*models.Message, error)
	UnreadCountsFromResidents(ctx context.Context, adminID int64) ([]*models.PeerUnread, error)
	Peers(ctx context.Context, userID int64) ([]*models.PeerUnread, error)
	UnreadTotal(ctx context.Context, userID int64) (int, error)
}

var messageColumns = []string{"id", "sender_id", "recipient_id", "body", "is_read", "read_at", "sent_at"}

// MessageRepository handles message database operations
type MessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db, sb: newBuilder()}
}

func scanMessage(row rowScanner) (*models.Message, error) {
	m := &models.Message{}
	if err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.IsRead, &m.ReadAt, &m.SentAt); err != nil {
		return nil, err
	}
	return m, nil
}

// Create stores a message. A recipient deleted in the meantime yields ErrUserNotFound.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	sql, args, err := r.sb.Insert("messages").
		Columns("sender_id", "recipient_id", "body").
		Values(msg.SenderID, msg.RecipientID, msg.Body).
		Suffix("RETURNING id, is_read, sent_at").
		ToSql()
	if err != nil {
		return buildErr("create message", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&msg.ID, &msg.IsRead, &msg.SentAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		return queryErr("create message", err, nil)
	}
	return nil
}

// markRead is the conditional update shared by conversation opening and polling.
// Concurrent callers block on the row locks and re-check is_read, so every
// message is returned by exactly one of them.
func (r *MessageRepository) markRead(recipientID, senderID int64, returning string) (string, []interface{}, error) {
	return r.sb.Update("messages").
		Set("is_read", true).
		Set("read_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"sender_id": senderID, "recipient_id": recipientID, "is_read": false}).
		Suffix("RETURNING " + returning).
		ToSql()
}

// MarkConversationRead marks every unread message from sender to recipient and returns their ids.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, recipientID, senderID int64) ([]int64, error) {
	sql, args, err := r.markRead(recipientID, senderID, "id")
	if err != nil {
		return nil, buildErr("mark conversation read", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr("mark conversation read", err, nil)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, queryErr("mark conversation read", err, nil)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("mark conversation read", err, nil)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ClaimUnread marks the unread messages from sender to recipient and returns them ordered by send time.
func (r *MessageRepository) ClaimUnread(ctx context.Context, recipientID, senderID int64) ([]*models.Message, error) {
	sql, args, err := r.markRead(recipientID, senderID, joinColumns(messageColumns))
	if err != nil {
		return nil, buildErr("claim unread", err)
	}
	msgs, err := r.collect(ctx, "claim unread", sql, args)
	if err != nil {
		return nil, err
	}
	// RETURNING has no defined order.
	sortMessages(msgs)
	return msgs, nil
}

// Conversation returns every message between a and b ordered by (sent_at, id).
func (r *MessageRepository) Conversation(ctx context.Context, a, b int64) ([]*models.Message, error) {
	sql, args, err := r.sb.Select(messageColumns...).From("messages").
		Where(squirrel.Or{
			squirrel.Eq{"sender_id": a, "recipient_id": b},
			squirrel.Eq{"sender_id": b, "recipient_id": a},
		}).
		OrderBy("sent_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, buildErr("conversation", err)
	}
	return r.collect(ctx, "conversation", sql, args)
}

// UnreadCountsFromResidents lists every active resident with the number of unread
// messages they sent to adminID, zero included, ordered by unit and last name.
func (r *MessageRepository) UnreadCountsFromResidents(ctx context.Context, adminID int64) ([]*models.PeerUnread, error) {
	q := r.sb.Select(userJoinColumns...).
		Column("COUNT(m.id)").
		Column("MAX(m.sent_at)").
		From("users u").
		LeftJoin("messages m ON m.sender_id = u.id AND m.recipient_id = ? AND NOT m.is_read", adminID).
		Where(squirrel.Eq{"u.is_active": true, "u.role": models.RoleResident, "u.is_superuser": false}).
		Where(squirrel.NotEq{"u.id": adminID}).
		GroupBy("u.id").
		OrderBy("u.unit ASC", "u.last_name ASC", "u.id ASC")
	return r.peerRows(ctx, "unread counts", q)
}

// Peers lists the user's possible conversation partners: every other active user,
// with unread counts and the time of the latest message either way. Recent conversations come first.
func (r *MessageRepository) Peers(ctx context.Context, userID int64) ([]*models.PeerUnread, error) {
	q := r.sb.Select(userJoinColumns...).
		Column("COUNT(m.id)").
		Column(squirrel.Alias(squirrel.Expr(`(SELECT MAX(lm.sent_at) FROM messages lm
			WHERE (lm.sender_id = u.id AND lm.recipient_id = ?) OR (lm.sender_id = ? AND lm.recipient_id = u.id))`,
			userID, userID), "last_message_at")).
		From("users u").
		LeftJoin("messages m ON m.sender_id = u.id AND m.recipient_id = ? AND NOT m.is_read", userID).
		Where(squirrel.Eq{"u.is_active": true}).
		Where(squirrel.NotEq{"u.id": userID}).
		GroupBy("u.id").
		OrderBy("last_message_at DESC NULLS LAST", "u.unit ASC", "u.last_name ASC", "u.id ASC")
	return r.peerRows(ctx, "peers", q)
}

// UnreadTotal counts all unread messages addressed to the user.
func (r *MessageRepository) UnreadTotal(ctx context.Context, userID int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("messages").
		Where(squirrel.Eq{"recipient_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, buildErr("unread total", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, queryErr("unread total", err, nil)
	}
	return n, nil
}

func (r *MessageRepository) collect(ctx context.Context, op, sql string, args []interface{}) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr(op, err, nil)
	}
	defer rows.Close()

	msgs := []*models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, queryErr(op, err, nil)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(op, err, nil)
	}
	return msgs, nil
}

func (r *MessageRepository) peerRows(ctx context.Context, op string, q squirrel.SelectBuilder) ([]*models.PeerUnread, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr(op, err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr(op, err, nil)
	}
	defer rows.Close()

	peers := []*models.PeerUnread{}
	for rows.Next() {
		u := &models.User{}
		p := &models.PeerUnread{User: u}
		var last *time.Time
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Unit, &u.Role,
			&u.Phone, &u.ProfilePhotoURL, &u.IsActive, &u.IsSuperuser, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
			&p.UnreadCount, &last); err != nil {
			return nil, queryErr(op, err, nil)
		}
		p.LastMessageAt = last
		peers = append(peers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(op, err, nil)
	}
	return peers, nil
}

func sortMessages(msgs []*models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.Before(msgs[j].SentAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}
