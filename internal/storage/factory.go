package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/playrank/authd/internal/config"
)

type UserBackend string

const (
	BackendMemory UserBackend = "memory"
	BackendSQL    UserBackend = "sql"
)

// NewUserStoreFromConfig picks the user registry backend. With a database URL
// configured it opens the relational store (postgres or sqlite); without one
// it falls back to the in-memory registry for local development.
func NewUserStoreFromConfig(cfg *config.Config) (UserStore, UserBackend, error) {
	if cfg.Storage.DatabaseURL == "" {
		return NewMemoryUserStore(), BackendMemory, nil
	}

	db, dialect, err := openDatabase(cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, BackendSQL, err
	}

	db.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Storage.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	store, err := NewSQLUserStore(db, dialect, time.Duration(cfg.Storage.QueryTimeoutSeconds)*time.Second)
	if err != nil {
		return nil, BackendSQL, err
	}
	return store, BackendSQL, nil
}

func openDatabase(databaseURL string) (*sql.DB, string, error) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse database url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch scheme {
	case "postgres", "postgresql":
		db, err := sql.Open("pgx", databaseURL)
		if err != nil {
			return nil, "", err
		}
		if err := db.Ping(); err != nil {
			return nil, "", err
		}
		return db, "postgres", nil
	case "sqlite", "sqlite3", "file":
		dsn, err := sqliteDSN(databaseURL, parsed)
		if err != nil {
			return nil, "", err
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, "", err
		}
		if err := db.Ping(); err != nil {
			return nil, "", err
		}
		return db, "sqlite", nil
	default:
		return nil, "", fmt.Errorf("unsupported database scheme: %s", scheme)
	}
}

func sqliteDSN(raw string, parsed *url.URL) (string, error) {
	if strings.HasPrefix(raw, "file:") {
		return raw, nil
	}

	pathPart := parsed.Path
	if parsed.Host != "" {
		pathPart = path.Join("/", parsed.Host, parsed.Path)
	}
	if pathPart == "" {
		return "", errors.New("sqlite path missing")
	}

	dsn := "file:" + pathPart
	if parsed.RawQuery != "" {
		dsn += "?" + parsed.RawQuery
	} else {
		dsn += "?cache=shared&mode=rwc"
	}
	return dsn, nil
}
