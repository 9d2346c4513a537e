package database

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no asset is stored under a key.
var ErrNotFound = errors.New("asset not found")

// Asset is a stored binary with its metadata. Text holds any text that was
// extracted from the source the asset was produced from.
type Asset struct {
	ID          string
	Key         string
	ContentType string
	Data        []byte
	Text        string
	UpdatedAt   time.Time
}

// DatabaseService stores rendered word clouds and converted certificates.
type DatabaseService interface {
	CreateDatabase() error
	DoesDatabaseExist() bool
	Close() error

	// PutAsset inserts or replaces the asset stored under asset.Key and
	// returns its id. Replacing keeps the id.
	PutAsset(ctx context.Context, asset *Asset) (string, error)
	// GetAssetByKey returns ErrNotFound for an unknown key.
	GetAssetByKey(ctx context.Context, key string) (*Asset, error)
	// ListAssets returns the assets whose key starts with prefix, sorted by
	// key. Data is not loaded.
	ListAssets(ctx context.Context, prefix string) ([]*Asset, error)
	DeleteAsset(ctx context.Context, key string) error
}
