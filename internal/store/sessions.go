package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
)

// SessionRecord is the persisted view of one named server session.
type SessionRecord struct {
	Name         string
	URL          string
	Repository   string
	LastUniqueID int64
	Closed       bool
}

// GeneratorRecord is a generator registered through a stored session.
type GeneratorRecord struct {
	ID     string
	Params url.Values
}

// SaveSession inserts or replaces the record for rec.Name.
// Replacing a session drops its generators.
func (s *Store) SaveSession(ctx context.Context, rec SessionRecord) error {
	if rec.Name == "" {
		return fmt.Errorf("save session: empty name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, rec.Name); err != nil {
		return fmt.Errorf("save session %s: %w", rec.Name, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (name, url, repository, last_unique_id, closed)
		VALUES (?, ?, ?, ?, ?)
	`, rec.Name, rec.URL, rec.Repository, rec.LastUniqueID, rec.Closed)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.Name, err)
	}

	return tx.Commit()
}

// GetSession returns the record for name.
// Returns an error wrapping sql.ErrNoRows if no such session exists.
func (s *Store) GetSession(ctx context.Context, name string) (SessionRecord, error) {
	var rec SessionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT name, url, repository, last_unique_id, closed
		FROM sessions
		WHERE name = ?
	`, name).Scan(&rec.Name, &rec.URL, &rec.Repository, &rec.LastUniqueID, &rec.Closed)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", name, err)
	}
	return rec, nil
}

// ListSessions returns all records ordered by name.
func (s *Store) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, url, repository, last_unique_id, closed
		FROM sessions
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.Name, &rec.URL, &rec.Repository, &rec.LastUniqueID, &rec.Closed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveLastUniqueID raises the stored counter for name to last.
// A lower value leaves the counter unchanged.
func (s *Store) SaveLastUniqueID(ctx context.Context, name string, last int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET last_unique_id = MAX(last_unique_id, ?)
		WHERE name = ?
	`, last, name)
	if err != nil {
		return fmt.Errorf("save last unique id for %s: %w", name, err)
	}
	return requireRow(res, "save last unique id", name)
}

// MarkClosed flags the session as closed.
func (s *Store) MarkClosed(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET closed = 1 WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("mark session %s closed: %w", name, err)
	}
	return requireRow(res, "mark closed", name)
}

// DeleteSession removes the session and its generators.
// Deleting an unknown session is a no-op.
func (s *Store) DeleteSession(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete session %s: %w", name, err)
	}
	return nil
}

// RecordGenerator stores the parameters a generator id was registered with.
// Recording the same id twice is an error since ids are never reused.
func (s *Store) RecordGenerator(ctx context.Context, sessionName, id string, params url.Values) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal generator params: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generators (session_name, id, params)
		VALUES (?, ?, ?)
	`, sessionName, id, string(data))
	if err != nil {
		return fmt.Errorf("record generator %s in %s: %w", id, sessionName, err)
	}
	return nil
}

// ListGenerators returns the generators of a session in registration order.
func (s *Store) ListGenerators(ctx context.Context, sessionName string) ([]GeneratorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, params
		FROM generators
		WHERE session_name = ?
		ORDER BY rowid ASC
	`, sessionName)
	if err != nil {
		return nil, fmt.Errorf("list generators: %w", err)
	}
	defer rows.Close()

	var out []GeneratorRecord
	for rows.Next() {
		var (
			rec  GeneratorRecord
			data string
		)
		if err := rows.Scan(&rec.ID, &data); err != nil {
			return nil, fmt.Errorf("scan generator: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, op, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, name, sql.ErrNoRows)
	}
	return nil
}
