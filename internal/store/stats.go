package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string `json:"database_path"`
	DBSizeBytes int64  `json:"db_size_bytes"`
	TotalKeys   int    `json:"total_keys"`
	TotalLists  int    `json:"total_lists"`
}

// Stats returns database statistics. Expired scalar entries are not counted.
func (s *SQLiteBackend) Stats(ctx context.Context) (*Stats, error) {
	path := s.path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	st := &Stats{DBPath: path}

	// DB file size
	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		if err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM data WHERE expires_at IS NULL OR expires_at > ?`,
			s.now().UnixMilli()).Scan(&st.TotalKeys); err != nil {
			return err
		}
		return conn.QueryRowContext(ctx,
			`SELECT COUNT(DISTINCT key) FROM lists`).Scan(&st.TotalLists)
	})
	if err != nil {
		return st, err
	}
	return st, nil
}
