package localkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultSQLitePath = "data/congregation.db"

// SQLiteKV は SQLite の単一テーブルに値を保存する KeyValue です。
type SQLiteKV struct {
	db   *sql.DB
	path string
}

// OpenSQLite は SQLite ファイルを開き kv テーブルを用意します。
func OpenSQLite(ctx context.Context, path string) (*SQLiteKV, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("localkv: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localkv: open sqlite: %w", err)
	}
	// 単一ファイルへの書き込みを直列化する
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("localkv: create kv table: %w", err)
	}
	return &SQLiteKV{db: db, path: path}, nil
}

// Get はキーの値を返します。
func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("localkv: get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set はキーの値を上書きします。
func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO kv(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value),
	); err != nil {
		return fmt.Errorf("localkv: set %s: %w", key, err)
	}
	return nil
}

// Path はデータベースファイルのパスを返します。
func (s *SQLiteKV) Path() string {
	return s.path
}

// Close はデータベースを閉じます。
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
