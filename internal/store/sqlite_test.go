package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSQLite(t, WithClock(func() time.Time { return now }))

	s.Set(ctx, "current_session:u1", "sess-1", 24*time.Hour)
	if _, ok := s.Get(ctx, "current_session:u1"); !ok {
		t.Fatal("expected value before expiry")
	}

	now = now.Add(25 * time.Hour)
	if _, ok := s.Get(ctx, "current_session:u1"); ok {
		t.Error("expected value to be expired")
	}
}

func TestSQLiteSetClearsExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSQLite(t, WithClock(func() time.Time { return now }))

	s.Set(ctx, "k", "short", time.Minute)
	s.Set(ctx, "k", "forever", 0)

	now = now.Add(time.Hour)
	v, ok := s.Get(ctx, "k")
	if !ok {
		t.Fatal("expected overwrite to drop the earlier expiry")
	}
	var got string
	v.Decode(&got)
	if got != "forever" {
		t.Errorf("expected 'forever', got %q", got)
	}
}

func TestSQLiteRawPayloadFallback(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	s.db.Exec(`INSERT INTO data (key, value) VALUES (?, ?)`, nsKey("legacy"), "not json")
	s.db.Exec(`INSERT INTO lists (key, pos, value) VALUES (?, 0, ?), (?, 1, ?)`,
		nsKey("l"), `{"ok":1}`, nsKey("l"), "{broken")

	v, ok := s.Get(ctx, "legacy")
	if !ok {
		t.Fatal("expected raw payload to be returned")
	}
	var raw string
	if err := v.Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw != "not json" {
		t.Errorf("expected raw payload 'not json', got %q", raw)
	}

	list := s.GetList(ctx, "l", 10)
	if len(list) != 1 || list[0].String() != `{"ok":1}` {
		t.Errorf("expected malformed entry to be skipped, got %v", list)
	}
}

func TestSQLiteDegradesWhenClosed(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	s.Set(ctx, "k", "v", 0)
	s.Push(ctx, "l", "v", 10)
	s.Close()

	s.Set(ctx, "k2", "v", 0)
	s.Push(ctx, "l", "v2", 10)
	if v, ok := s.Get(ctx, "k"); ok || v != nil {
		t.Errorf("expected default from closed backend, got %q", v)
	}
	if got := s.GetList(ctx, "l", 10); got == nil || len(got) != 0 {
		t.Errorf("expected empty list from closed backend, got %#v", got)
	}
	s.Clear(ctx)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "study.db")

	s, err := NewSQLiteBackend(path, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Set(ctx, "user:1", map[string]string{"style": "visual"}, 0)
	s.Push(ctx, "sessions:1", "a", 10)
	s.Push(ctx, "sessions:1", "b", 10)
	s.Close()

	s2, err := NewSQLiteBackend(path, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, ok := s2.Get(ctx, "user:1"); !ok {
		t.Error("expected user to survive reopen")
	}
	list := s2.GetList(ctx, "sessions:1", 10)
	if len(list) != 2 || list[0].String() != `"b"` {
		t.Errorf("expected [b a], got %v", list)
	}
}

func TestSQLitePositionsStayDense(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	for i := 0; i < 12; i++ {
		s.Push(ctx, "l", i, 5)
	}

	rows, err := s.db.Query(`SELECT pos FROM lists WHERE key = ? ORDER BY pos`, nsKey("l"))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	want := 0
	for rows.Next() {
		var pos int
		rows.Scan(&pos)
		if pos != want {
			t.Errorf("expected pos %d, got %d", want, pos)
		}
		want++
	}
	if want != 5 {
		t.Errorf("expected 5 rows, got %d", want)
	}
}

func TestSQLiteStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSQLite(t, WithClock(func() time.Time { return now }))

	s.Set(ctx, "a", 1, 0)
	s.Set(ctx, "b", 2, 0)
	s.Set(ctx, "c", 3, time.Minute)
	s.Push(ctx, "l1", 1, 10)
	s.Push(ctx, "l1", 2, 10)
	s.Push(ctx, "l2", 1, 10)
	now = now.Add(time.Hour)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalKeys != 2 {
		t.Errorf("expected 2 live keys, got %d", st.TotalKeys)
	}
	if st.TotalLists != 2 {
		t.Errorf("expected 2 lists, got %d", st.TotalLists)
	}
	if !filepath.IsAbs(st.DBPath) {
		t.Errorf("expected absolute path, got %q", st.DBPath)
	}
	if st.DBSizeBytes == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteBackend(dbPath, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
