package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/singleflight"
)

type SQLUserStore struct {
	db           *sql.DB
	dialect      string
	queryTimeout time.Duration
	lookupStmt   string
	insertStmt   string
	lookups      singleflight.Group
}

func NewSQLUserStore(db *sql.DB, dialect string, queryTimeout time.Duration) (*SQLUserStore, error) {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	store := &SQLUserStore{db: db, dialect: dialect, queryTimeout: queryTimeout}
	store.initStatements()
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLUserStore) initStatements() {
	p1 := s.placeholder(1)
	p2 := s.placeholder(2)

	s.lookupStmt = fmt.Sprintf("SELECT id, pw_hash FROM users WHERE id = %s", p1)
	s.insertStmt = fmt.Sprintf("INSERT INTO users (id, pw_hash) VALUES (%s, %s)", p1, p2)
}

func (s *SQLUserStore) ensureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		pw_hash TEXT NOT NULL
	)`
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Lookup fetches one user by id. Concurrent lookups for the same id are
// collapsed into a single query so a burst of identical requests holds only
// one pooled connection.
func (s *SQLUserStore) Lookup(ctx context.Context, id string) (*User, error) {
	v, err, _ := s.lookups.Do(id, func() (any, error) {
		return s.lookup(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	user := v.(User)
	return &User{ID: user.ID, PasswordHash: user.PasswordHash}, nil
}

func (s *SQLUserStore) lookup(ctx context.Context, id string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var user User
	if err := s.db.QueryRowContext(ctx, s.lookupStmt, id).Scan(&user.ID, &user.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// Create inserts a new user row. The primary key on id is the authoritative
// uniqueness guard: a constraint violation from a concurrent insert maps to
// ErrDuplicateID just like the caller's pre-check.
func (s *SQLUserStore) Create(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, s.insertStmt, id, passwordHash); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// modernc sqlite reports constraint failures by message only.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLUserStore) placeholder(idx int) string {
	if strings.EqualFold(s.dialect, "postgres") {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}
