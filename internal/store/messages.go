package store

import (
	"context"
	"fmt"
	"slices"
)

// Message is one stored conversation turn.
type Message struct {
	Role    string
	Content string
}

// AppendMessage stores a turn under contextKey.
func (s *Store) AppendMessage(ctx context.Context, contextKey, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (context_key, role, content) VALUES (?, ?, ?)`,
		contextKey, role, content,
	)
	if err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit most recent turns, oldest first.
func (s *Store) RecentMessages(ctx context.Context, contextKey string, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM messages
		 WHERE context_key = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		contextKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	slices.Reverse(msgs)
	return msgs, nil
}

// ClearMessages deletes the history under contextKey and reports how many
// turns were removed.
func (s *Store) ClearMessages(ctx context.Context, contextKey string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE context_key = ?`, contextKey)
	if err != nil {
		return 0, fmt.Errorf("clear messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear messages: %w", err)
	}
	return n, nil
}
