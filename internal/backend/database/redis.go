package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisAssetPrefix = "certshowcase:asset:"
	redisIndexKey    = "certshowcase:assets"
)

// RedisDatabase keeps each asset in a hash and the set of asset keys in an
// index set.
type RedisDatabase struct {
	client *redis.Client
}

// NewRedisDatabase accepts a redis:// URL or a plain host:port address.
func NewRedisDatabase(connectionString string) (DatabaseService, error) {
	var opts *redis.Options
	if strings.Contains(connectionString, "://") {
		parsed, err := redis.ParseURL(connectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: connectionString}
	}

	return &RedisDatabase{client: redis.NewClient(opts)}, nil
}

func hashKey(key string) string {
	return redisAssetPrefix + key
}

// CreateDatabase only checks connectivity; redis needs no schema.
func (r *RedisDatabase) CreateDatabase() error {
	return r.client.Ping(context.Background()).Err()
}

func (r *RedisDatabase) DoesDatabaseExist() bool {
	return r.client.Ping(context.Background()).Err() == nil
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}

func (r *RedisDatabase) PutAsset(ctx context.Context, asset *Asset) (string, error) {
	if asset == nil || asset.Key == "" {
		return "", errors.New("asset key cannot be empty")
	}
	updatedAt := asset.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	id, err := r.client.HGet(ctx, hashKey(asset.Key), "id").Result()
	switch {
	case errors.Is(err, redis.Nil):
		id = generateID()
	case err != nil:
		return "", fmt.Errorf("failed to look up asset %s: %w", asset.Key, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hashKey(asset.Key), map[string]any{
			"id":           id,
			"key":          asset.Key,
			"content_type": asset.ContentType,
			"data":         asset.Data,
			"text":         asset.Text,
			"updated_at":   updatedAt.UnixNano(),
		})
		pipe.SAdd(ctx, redisIndexKey, asset.Key)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store asset %s: %w", asset.Key, err)
	}
	return id, nil
}

func (r *RedisDatabase) GetAssetByKey(ctx context.Context, key string) (*Asset, error) {
	fields, err := r.client.HGetAll(ctx, hashKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	asset := assetFromFields(fields)
	asset.Data = []byte(fields["data"])
	return asset, nil
}

func (r *RedisDatabase) ListAssets(ctx context.Context, prefix string) ([]*Asset, error) {
	keys, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read asset index: %w", err)
	}

	matching := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			matching = append(matching, k)
		}
	}
	sort.Strings(matching)

	cmds := make([]*redis.SliceCmd, len(matching))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range matching {
			cmds[i] = pipe.HMGet(ctx, hashKey(k), "id", "key", "content_type", "text", "updated_at")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read assets: %w", err)
	}

	assets := make([]*Asset, 0, len(matching))
	for _, cmd := range cmds {
		values := cmd.Val()
		fields := make(map[string]string, len(values))
		for i, name := range []string{"id", "key", "content_type", "text", "updated_at"} {
			if s, ok := values[i].(string); ok {
				fields[name] = s
			}
		}
		if fields["key"] == "" {
			// index entry whose hash is gone
			continue
		}
		assets = append(assets, assetFromFields(fields))
	}
	return assets, nil
}

func (r *RedisDatabase) DeleteAsset(ctx context.Context, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, hashKey(key))
		pipe.SRem(ctx, redisIndexKey, key)
		return nil
	})
	return err
}

func assetFromFields(fields map[string]string) *Asset {
	asset := &Asset{
		ID:          fields["id"],
		Key:         fields["key"],
		ContentType: fields["content_type"],
		Text:        fields["text"],
	}
	if nanos, err := strconv.ParseInt(fields["updated_at"], 10, 64); err == nil {
		asset.UpdatedAt = time.Unix(0, nanos)
	}
	return asset
}
