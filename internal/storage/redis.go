package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nikbrunner/sbm/internal/model"
)

// Redis keys, appended to the configured prefix.
const (
	KeyBookmarks = "bookmarks"
	KeyFolders   = "folders"
	KeySettings  = "settings"
)

// RedisClient is the subset of *redis.Client the backend uses.
type RedisClient interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	MSet(ctx context.Context, values ...any) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisStorage keeps each store key as a JSON string under <prefix><key>.
type RedisStorage struct {
	client RedisClient
	prefix string
}

func NewRedisStorage(client RedisClient, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) key(name string) string { return s.prefix + name }

// Load reads all three keys in one round trip. Missing keys leave the
// corresponding part of the store empty.
func (s *RedisStorage) Load(ctx context.Context) (*model.Store, error) {
	vals, err := s.client.MGet(ctx, s.key(KeyBookmarks), s.key(KeyFolders), s.key(KeySettings)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("failed to read from redis: expected 3 values, got %d", len(vals))
	}

	store := model.NewStore()
	if err := decodeValue(vals[0], &store.Bookmarks); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyBookmarks, err)
	}
	if err := decodeValue(vals[1], &store.Folders); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyFolders, err)
	}
	if vals[2] != nil {
		var settings model.Settings
		if err := decodeValue(vals[2], &settings); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", KeySettings, err)
		}
		store.Settings = &settings
	}
	return normalize(store), nil
}

// Save writes bookmarks and folders with a single MSET. A store without
// settings removes the settings key.
func (s *RedisStorage) Save(ctx context.Context, store *model.Store) error {
	store = normalize(store)

	bookmarks, err := json.Marshal(store.Bookmarks)
	if err != nil {
		return err
	}
	folders, err := json.Marshal(store.Folders)
	if err != nil {
		return err
	}
	values := []any{s.key(KeyBookmarks), string(bookmarks), s.key(KeyFolders), string(folders)}

	if store.Settings != nil {
		settings, err := json.Marshal(store.Settings)
		if err != nil {
			return err
		}
		values = append(values, s.key(KeySettings), string(settings))
	}

	if err := s.client.MSet(ctx, values...).Err(); err != nil {
		return fmt.Errorf("failed to write to redis: %w", err)
	}
	if store.Settings == nil {
		if err := s.client.Del(ctx, s.key(KeySettings)).Err(); err != nil {
			return fmt.Errorf("failed to clear settings in redis: %w", err)
		}
	}
	return nil
}

func (s *RedisStorage) Close() error { return s.client.Close() }

func decodeValue(v any, dst any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(val), dst)
	case []byte:
		return json.Unmarshal(val, dst)
	default:
		return fmt.Errorf("unexpected value type %T", v)
	}
}
