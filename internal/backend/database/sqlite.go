package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	if strings.Contains(connectionString, ":memory:") {
		// every connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		content_type TEXT NOT NULL,
		data BLOB,
		text TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	)`)
	return err
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

// PutAsset looks up and writes in a single transaction so that concurrent
// writers of the same key end up with one row.
func (s *SQLiteDatabase) PutAsset(ctx context.Context, asset *Asset) (string, error) {
	if asset == nil || asset.Key == "" {
		return "", errors.New("asset key cannot be empty")
	}
	updatedAt := asset.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM assets WHERE key = ?", asset.Key).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = generateID()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO assets (id, key, content_type, data, text, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			id, asset.Key, asset.ContentType, asset.Data, asset.Text, updatedAt.UnixNano())
	case err == nil:
		_, err = tx.ExecContext(ctx,
			"UPDATE assets SET content_type = ?, data = ?, text = ?, updated_at = ? WHERE id = ?",
			asset.ContentType, asset.Data, asset.Text, updatedAt.UnixNano(), id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to store asset %s: %w", asset.Key, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit asset %s: %w", asset.Key, err)
	}
	return id, nil
}

func (s *SQLiteDatabase) GetAssetByKey(ctx context.Context, key string) (*Asset, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, key, content_type, data, text, updated_at FROM assets WHERE key = ?", key)

	var asset Asset
	var updatedAt int64
	if err := row.Scan(&asset.ID, &asset.Key, &asset.ContentType, &asset.Data, &asset.Text, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	asset.UpdatedAt = time.Unix(0, updatedAt)
	return &asset, nil
}

func (s *SQLiteDatabase) ListAssets(ctx context.Context, prefix string) ([]*Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, key, content_type, text, updated_at FROM assets WHERE substr(key, 1, ?) = ? ORDER BY key",
		len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	var assets []*Asset
	for rows.Next() {
		var asset Asset
		var updatedAt int64
		if err := rows.Scan(&asset.ID, &asset.Key, &asset.ContentType, &asset.Text, &updatedAt); err != nil {
			return nil, err
		}
		asset.UpdatedAt = time.Unix(0, updatedAt)
		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}

func (s *SQLiteDatabase) DeleteAsset(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE key = ?", key)
	return err
}
