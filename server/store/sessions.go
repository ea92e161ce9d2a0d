package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLSessionStore implements SessionStore over chat_sessions and chat_messages.
type SQLSessionStore struct {
	db *sql.DB
	d  dialect
}

// Upsert creates the session row if it does not exist yet.
func (s *SQLSessionStore) Upsert(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, s.d.insertSession(), sessionID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) Append(ctx context.Context, sessionID, sender, text string) (ChatMessage, error) {
	m := ChatMessage{SessionID: sessionID, Sender: sender, Text: text, Timestamp: time.Now().UnixMilli()}
	if err := s.Upsert(ctx, sessionID); err != nil {
		return m, err
	}

	q := `INSERT INTO chat_messages (session_id, sender, text, timestamp) VALUES (` + s.d.phs(1, 4) + `)`
	if s.d.name == "postgres" {
		err := s.db.QueryRowContext(ctx, q+` RETURNING id`, m.SessionID, m.Sender, m.Text, m.Timestamp).Scan(&m.ID)
		if err != nil {
			return m, fmt.Errorf("insert message: %w", err)
		}
		return m, nil
	}

	res, err := s.db.ExecContext(ctx, q, m.SessionID, m.Sender, m.Text, m.Timestamp)
	if err != nil {
		return m, fmt.Errorf("insert message: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return m, fmt.Errorf("message id: %w", err)
	}
	return m, nil
}

// History returns the session's messages oldest first. An unknown session
// has an empty history.
func (s *SQLSessionStore) History(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, sender, text, timestamp
		FROM chat_messages WHERE session_id = `+s.d.ph(1)+`
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := []ChatMessage{}
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
