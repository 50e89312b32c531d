package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"sqlite", Options{Kind: KindSQLite, SQLitePath: filepath.Join(dir, "a.db")}, "sqlite", false},
		{"default is sqlite", Options{SQLitePath: filepath.Join(dir, "b.db")}, "sqlite", false},
		{"sqlite without path", Options{Kind: KindSQLite}, "", true},
		{"memory", Options{Kind: KindMemory}, "memory", false},
		{"redis unreachable", Options{Kind: KindRedis, RedisURL: "redis://127.0.0.1:1/0"}, "memory", false},
		{"unknown", Options{Kind: "etcd"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, tt.opts, WithLogger(quietLogger()))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer b.Close()
			if b.Name() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, b.Name())
			}
		})
	}
}
