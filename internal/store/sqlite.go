package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteBackend implements Backend on a SQLite file.
//
// A single mutex serializes every operation in the process, and each
// operation runs on its own connection that is closed when it finishes.
// Processes sharing the same file are not coordinated by the mutex.
type SQLiteBackend struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	log    logrus.FieldLogger
	now    func() time.Time
	closed bool
}

// NewSQLiteBackend opens or creates a SQLite database at the given path.
func NewSQLiteBackend(dbPath string, opts ...Option) (*SQLiteBackend, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// No idle pool: a connection released by an operation is closed.
	db.SetMaxIdleConns(0)

	o := newOptions(opts)
	s := &SQLiteBackend{
		db:   db,
		path: dbPath,
		log:  o.logger.WithField("backend", "sqlite"),
		now:  o.now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteBackend) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS data (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		expires_at INTEGER
	);
	CREATE TABLE IF NOT EXISTS lists (
		key   TEXT NOT NULL,
		pos   INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (key, pos)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Name implements Backend.
func (s *SQLiteBackend) Name() string { return "sqlite" }

// Path returns the database file path.
func (s *SQLiteBackend) Path() string { return s.path }

// withConn runs fn on a dedicated connection while holding the backend lock.
func (s *SQLiteBackend) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("backend closed")
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// Set implements Backend.
func (s *SQLiteBackend) Set(ctx context.Context, key string, value any, expire time.Duration) {
	if err := s.set(ctx, key, value, expire); err != nil {
		s.log.WithFields(logrus.Fields{"op": "set", "key": key}).WithError(err).Error("write dropped")
	}
}

func (s *SQLiteBackend) set(ctx context.Context, key string, value any, expire time.Duration) error {
	v, err := encode(value)
	if err != nil {
		return err
	}
	var expiresAt *int64
	if expire > 0 {
		ms := s.now().Add(expire).UnixMilli()
		expiresAt = &ms
	}
	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT OR REPLACE INTO data (key, value, expires_at) VALUES (?, ?, ?)`,
			nsKey(key), string(v), expiresAt)
		return err
	})
}

// Get implements Backend.
func (s *SQLiteBackend) Get(ctx context.Context, key string) (Value, bool) {
	v, err := s.get(ctx, key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.WithFields(logrus.Fields{"op": "get", "key": key}).WithError(err).Error("read failed")
		}
		return nil, false
	}
	return v, true
}

func (s *SQLiteBackend) get(ctx context.Context, key string) (Value, error) {
	var payload string
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`SELECT value FROM data
			 WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
			nsKey(key), s.now().UnixMilli()).Scan(&payload)
	})
	if err != nil {
		return nil, err
	}
	return rawValue([]byte(payload)), nil
}

// Push implements Backend. Renumbering, insert and trim commit as one
// transaction.
func (s *SQLiteBackend) Push(ctx context.Context, key string, value any, maxItems int) {
	if err := s.push(ctx, key, value, maxItemsOrDefault(maxItems)); err != nil {
		s.log.WithFields(logrus.Fields{"op": "push", "key": key}).WithError(err).Error("write dropped")
	}
}

func (s *SQLiteBackend) push(ctx context.Context, key string, value any, maxItems int) error {
	v, err := encode(value)
	if err != nil {
		return err
	}
	k := nsKey(key)
	return s.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		// Shift through negative positions so no intermediate row collides
		// with the (key, pos) primary key.
		if _, err := tx.ExecContext(ctx,
			`UPDATE lists SET pos = -(pos + 1) WHERE key = ?`, k); err != nil {
			return fmt.Errorf("shift positions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE lists SET pos = -pos WHERE key = ? AND pos < 0`, k); err != nil {
			return fmt.Errorf("restore positions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lists (key, pos, value) VALUES (?, 0, ?)`, k, string(v)); err != nil {
			return fmt.Errorf("insert head: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM lists WHERE key = ? AND pos >= ?`, k, maxItems); err != nil {
			return fmt.Errorf("trim: %w", err)
		}
		return tx.Commit()
	})
}

// GetList implements Backend. Entries that are not valid JSON are skipped.
func (s *SQLiteBackend) GetList(ctx context.Context, key string, limit int) []Value {
	items, err := s.getList(ctx, key, limitOrDefault(limit))
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": "get_list", "key": key}).WithError(err).Error("read failed")
		return []Value{}
	}
	return items
}

func (s *SQLiteBackend) getList(ctx context.Context, key string, limit int) ([]Value, error) {
	items := []Value{}
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx,
			`SELECT value FROM lists WHERE key = ? ORDER BY pos LIMIT ?`, nsKey(key), limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var payload string
			if err := rows.Scan(&payload); err != nil {
				return err
			}
			if !jsonValid(payload) {
				s.log.WithFields(logrus.Fields{"op": "get_list", "key": key}).Warn("skipping malformed entry")
				continue
			}
			items = append(items, Value(payload))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Clear implements Backend.
func (s *SQLiteBackend) Clear(ctx context.Context) {
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM data`); err != nil {
			return err
		}
		_, err := conn.ExecContext(ctx, `DELETE FROM lists`)
		return err
	})
	if err != nil {
		s.log.WithField("op", "clear").WithError(err).Error("clear failed")
		return
	}
	s.log.Info("cleared all data")
}

// Close implements Backend.
func (s *SQLiteBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
