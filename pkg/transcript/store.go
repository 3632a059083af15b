// Package transcript implements TranscriptStore: the durable, queryable
// record of every conversation turn, backed by Postgres via pgx (§4.2).
package transcript

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// Store is the TranscriptStore contract.
type Store interface {
	Append(ctx context.Context, rec *models.TranscriptRecord) error
	GetBySession(ctx context.Context, sessionID string, limit, offset int) ([]models.TranscriptRecord, int, error)
	GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.TranscriptRecord, int, error)
	GetByOrder(ctx context.Context, orderID string) ([]models.TranscriptRecord, error)
	Update(ctx context.Context, id string, body string, metadata map[string]any) error
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	ListConversations(ctx context.Context, limit int) ([]models.ConversationSummary, error)
}

const opTimeout = 5 * time.Second

type pgStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Append(ctx context.Context, rec *models.TranscriptRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "encode transcript metadata", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO transcripts (session_id, user_id, role, body, order_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, rec.SessionID, rec.UserID, rec.Role, rec.Body, rec.OrderID, metadata)

	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "append transcript", err)
	}
	return nil
}

func (s *pgStore) GetBySession(ctx context.Context, sessionID string, limit, offset int) ([]models.TranscriptRecord, int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM transcripts WHERE session_id = $1`, sessionID).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindTransientDependency, "count transcripts", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, user_id, role, body, order_id, metadata, archived, created_at, updated_at
		FROM transcripts
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, sessionID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindTransientDependency, "query transcripts by session", err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (s *pgStore) GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.TranscriptRecord, int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM transcripts WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindTransientDependency, "count transcripts", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, user_id, role, body, order_id, metadata, archived, created_at, updated_at
		FROM transcripts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindTransientDependency, "query transcripts by user", err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (s *pgStore) GetByOrder(ctx context.Context, orderID string) ([]models.TranscriptRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, user_id, role, body, order_id, metadata, archived, created_at, updated_at
		FROM transcripts
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "query transcripts by order", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *pgStore) Update(ctx context.Context, id string, body string, metadata map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := json.Marshal(metadata)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "encode transcript metadata", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE transcripts SET body = $2, metadata = $3, updated_at = now() WHERE id = $1
	`, id, body, raw)
	if err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "update transcript", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.KindNotFound, "transcript not found")
	}
	return nil
}

func (s *pgStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM transcripts WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "delete transcript", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.KindNotFound, "transcript not found")
	}
	return nil
}

func (s *pgStore) Archive(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `UPDATE transcripts SET archived = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "archive transcript", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.KindNotFound, "transcript not found")
	}
	return nil
}

// ListConversations groups transcripts by session, most recently active
// first, for the conversations() surface (§6).
func (s *pgStore) ListConversations(ctx context.Context, limit int) ([]models.ConversationSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT session_id, count(*) AS message_count,
		       (array_agg(body ORDER BY created_at DESC))[1] AS last_body,
		       max(created_at) AS last_timestamp
		FROM transcripts
		GROUP BY session_id
		ORDER BY last_timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "list conversations", err)
	}
	defer rows.Close()

	var out []models.ConversationSummary
	for rows.Next() {
		var c models.ConversationSummary
		if err := rows.Scan(&c.SessionID, &c.MessageCount, &c.LastBody, &c.LastTimestamp); err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransientDependency, "scan conversation summary", err)
		}
		c.LastBody = models.TruncateBody(c.LastBody, 100)
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanRecords(rows pgx.Rows) ([]models.TranscriptRecord, error) {
	var out []models.TranscriptRecord
	for rows.Next() {
		var rec models.TranscriptRecord
		var metadata []byte
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.UserID, &rec.Role, &rec.Body,
			&rec.OrderID, &metadata, &rec.Archived, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransientDependency, "scan transcript", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, apperrors.Wrap(apperrors.KindInternal, "decode transcript metadata", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
