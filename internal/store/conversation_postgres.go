// internal/store/conversation_postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

// PostgresConversationStore is the durable conversation backend. Ordering is
// by the serial id, so Get returns insertion order.
//
// Expected schema:
//
//	CREATE TABLE conversation_messages (
//	    id         BIGSERIAL PRIMARY KEY,
//	    thread_id  TEXT NOT NULL,
//	    role       TEXT NOT NULL,
//	    content    TEXT NOT NULL,
//	    kind       TEXT NOT NULL DEFAULT '',
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX conversation_messages_thread_idx ON conversation_messages (thread_id, id);
type PostgresConversationStore struct {
	db *sql.DB
}

func NewPostgresConversationStore(db *sql.DB) *PostgresConversationStore {
	return &PostgresConversationStore{db: db}
}

func (s *PostgresConversationStore) Get(ctx context.Context, threadID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, kind, created_at FROM conversation_messages WHERE thread_id = $1 ORDER BY id`,
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Kind, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *PostgresConversationStore) Append(ctx context.Context, threadID string, msg models.Message) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_messages WHERE thread_id = $1`, threadID,
	).Scan(&count); err != nil {
		return fmt.Errorf("count conversation: %w", err)
	}

	if count == 0 {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO conversation_messages (thread_id, role, content, kind, created_at) VALUES ($1, $2, $3, $4, $5)`,
			threadID, "system", models.SystemPrompt, "", time.Now(),
		); err != nil {
			return fmt.Errorf("insert system prompt: %w", err)
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_messages (thread_id, role, content, kind, created_at) VALUES ($1, $2, $3, $4, $5)`,
		threadID, msg.Role, msg.Content, msg.Kind, msg.Timestamp,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *PostgresConversationStore) Clear(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM conversation_messages WHERE thread_id = $1`, threadID,
	); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
