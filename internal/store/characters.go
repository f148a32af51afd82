package store

import (
	"context"
	"fmt"
)

// AddCharacter starts tracking name. It reports false when the character
// was already tracked (names compare case-insensitively).
func (s *Store) AddCharacter(ctx context.Context, name, addedBy string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tracked_characters (name, added_by) VALUES (?, ?)`,
		name, addedBy,
	)
	if err != nil {
		return false, fmt.Errorf("add character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add character: %w", err)
	}
	return n > 0, nil
}

// RemoveCharacter stops tracking name and reports whether it was tracked.
func (s *Store) RemoveCharacter(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracked_characters WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("remove character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove character: %w", err)
	}
	return n > 0, nil
}

// Characters returns all tracked names in alphabetical order.
func (s *Store) Characters(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tracked_characters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query characters: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return names, nil
}
