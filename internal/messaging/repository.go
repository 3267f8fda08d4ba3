package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*Message, error)
	// MarkMatchRead marks every unread message addressed to recipientID in
	// the match and returns how many changed.
	MarkMatchRead(ctx context.Context, matchID, recipientID uuid.UUID, at time.Time) (int64, error)
	// MarkRead ignores ids not addressed to recipientID.
	MarkRead(ctx context.Context, ids []uuid.UUID, recipientID uuid.UUID, at time.Time) ([]*Message, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (id, match_id, sender_id, recipient_id, content, is_read, sent_at)
		VALUES (:id, :match_id, :sender_id, :recipient_id, :content, :is_read, :sent_at)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*Message, error) {
	messages := []*Message{}
	query := `
		SELECT id, match_id, sender_id, recipient_id, content, is_read, sent_at, read_at
		FROM messages
		WHERE match_id = $1
		ORDER BY sent_at, id`

	if err := r.db.SelectContext(ctx, &messages, query, matchID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *postgresRepository) MarkMatchRead(ctx context.Context, matchID, recipientID uuid.UUID, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = $3
		WHERE match_id = $1 AND recipient_id = $2 AND is_read = FALSE`,
		matchID, recipientID, at,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return res.RowsAffected()
}

func (r *postgresRepository) MarkRead(ctx context.Context, ids []uuid.UUID, recipientID uuid.UUID, at time.Time) ([]*Message, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	updated := []*Message{}
	query := `
		UPDATE messages SET is_read = TRUE, read_at = $3
		WHERE id = ANY($1::uuid[]) AND recipient_id = $2 AND is_read = FALSE
		RETURNING id, match_id, sender_id, recipient_id, content, is_read, sent_at, read_at`

	if err := r.db.SelectContext(ctx, &updated, query, pq.Array(raw), recipientID, at); err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return updated, nil
}

func (r *postgresRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE`
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
