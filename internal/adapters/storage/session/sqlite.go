package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gymfront/internal/adapters/storage"
	domain "gymfront/internal/domain/session"
)

// SQLiteStore persists sessions in the web_session table.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a store over an initialised database.
// PRE: storage.InitDB has run against db
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Create stores s and returns its token.
func (st *SQLiteStore) Create(ctx context.Context, s domain.Session) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	_, err = st.db.ExecContext(ctx,
		`INSERT INTO web_session (token, user_id, role, data, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		token, s.UserID, string(s.Role), string(data),
		s.CreatedAt.UTC().Format(time.RFC3339), s.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

// Get retrieves a live session by token.
func (st *SQLiteStore) Get(ctx context.Context, token string) (domain.Session, error) {
	var data string
	err := st.db.QueryRowContext(ctx, `SELECT data FROM web_session WHERE token = ?`, token).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("select session: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(st.now()) {
		if err := st.Delete(ctx, token); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

// Delete removes a session.
func (st *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := st.db.ExecContext(ctx, `DELETE FROM web_session WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes every session past its expiry and returns how many went.
func (st *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM web_session WHERE expires_at <= ?`,
		st.now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
