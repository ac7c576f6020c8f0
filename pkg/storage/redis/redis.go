// Package redis provides a Redis-backed implementation of the storage
// interface, for deployments where several edgy instances share meshes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/edgy/edgy/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// Config holds configuration for RedisStorage.
type Config struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix is prepended to every key.
	KeyPrefix string
	// DialTimeout bounds the initial ping.
	DialTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:        "127.0.0.1:6379",
		KeyPrefix:   "edgy:",
		DialTimeout: 5 * time.Second,
	}
}

// RedisStorage implements the Storage interface on Redis.
//
// Keys:
//
//	{prefix}meshes                 set of mesh ids
//	{prefix}mesh:{id}              mesh record as JSON
//	{prefix}mesh:{id}:selections   hash of selection name -> JSON
type RedisStorage struct {
	client redis.Cmdable
	prefix string
	closer func() error
}

// New wraps an existing client. Close does not close it.
func New(client redis.Cmdable, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

// Open connects to Redis and checks the connection.
func Open(ctx context.Context, cfg *Config) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, &storage.StorageUnavailableError{Cause: err}
	}

	s := New(client, cfg.KeyPrefix)
	s.closer = client.Close
	return s, nil
}

func (r *RedisStorage) idsKey() string {
	return r.prefix + "meshes"
}

func (r *RedisStorage) meshKey(id string) string {
	return r.prefix + "mesh:" + id
}

func (r *RedisStorage) selectionsKey(id string) string {
	return r.prefix + "mesh:" + id + ":selections"
}

func serialize(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", &storage.SerializationError{Operation: "marshal", Cause: err}
	}
	return string(data), nil
}

func deserialize(data string, v interface{}) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return &storage.SerializationError{Operation: "unmarshal", Cause: err}
	}
	return nil
}

func unavailable(err error) error {
	return &storage.StorageUnavailableError{Cause: err}
}

// SaveMesh stores a mesh, keeping the creation time of an existing record.
func (r *RedisStorage) SaveMesh(ctx context.Context, rec *storage.MeshRecord) error {
	now := time.Now()
	existing, err := r.GetMesh(ctx, rec.ID)
	switch {
	case err == nil:
		rec.CreatedAt = existing.CreatedAt
	case storage.IsNotFound(err):
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
	default:
		return err
	}
	rec.UpdatedAt = now

	data, err := serialize(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.meshKey(rec.ID), data, 0).Err(); err != nil {
		return unavailable(err)
	}
	if err := r.client.SAdd(ctx, r.idsKey(), rec.ID).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// GetMesh retrieves a mesh by ID.
func (r *RedisStorage) GetMesh(ctx context.Context, id string) (*storage.MeshRecord, error) {
	data, err := r.client.Get(ctx, r.meshKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, &storage.NotFoundError{EntityType: "mesh", ID: id}
	}
	if err != nil {
		return nil, unavailable(err)
	}

	var rec storage.MeshRecord
	if err := deserialize(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListMeshes lists meshes with optional filtering and pagination.
func (r *RedisStorage) ListMeshes(ctx context.Context, filter *storage.MeshFilter) ([]*storage.MeshRecord, int, error) {
	ids, err := r.client.SMembers(ctx, r.idsKey()).Result()
	if err != nil {
		return nil, 0, unavailable(err)
	}

	var meshes []*storage.MeshRecord
	for _, id := range ids {
		rec, err := r.GetMesh(ctx, id)
		if storage.IsNotFound(err) {
			// Deleted between SMEMBERS and GET.
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		if filter.Match(rec) {
			meshes = append(meshes, rec)
		}
	}

	page, total := storage.Paginate(meshes, filter)
	return page, total, nil
}

// DeleteMesh deletes a mesh and all its saved selections.
func (r *RedisStorage) DeleteMesh(ctx context.Context, id string) error {
	if err := r.requireMesh(ctx, id); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.meshKey(id), r.selectionsKey(id)).Err(); err != nil {
		return unavailable(err)
	}
	if err := r.client.SRem(ctx, r.idsKey(), id).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// SaveSelection saves a named selection under a mesh.
func (r *RedisStorage) SaveSelection(ctx context.Context, meshID string, rec *storage.SelectionRecord) error {
	if err := r.requireMesh(ctx, meshID); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	data, err := serialize(rec)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.selectionsKey(meshID), rec.Name, data).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// GetSelection retrieves a named selection.
func (r *RedisStorage) GetSelection(ctx context.Context, meshID, name string) (*storage.SelectionRecord, error) {
	if err := r.requireMesh(ctx, meshID); err != nil {
		return nil, err
	}

	data, err := r.client.HGet(ctx, r.selectionsKey(meshID), name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, &storage.NotFoundError{EntityType: "selection", ID: name}
	}
	if err != nil {
		return nil, unavailable(err)
	}

	var rec storage.SelectionRecord
	if err := deserialize(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListSelections lists the saved selections of a mesh by name.
func (r *RedisStorage) ListSelections(ctx context.Context, meshID string) ([]*storage.SelectionRecord, error) {
	if err := r.requireMesh(ctx, meshID); err != nil {
		return nil, err
	}

	all, err := r.client.HGetAll(ctx, r.selectionsKey(meshID)).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	selections := make([]*storage.SelectionRecord, 0, len(all))
	for _, data := range all {
		var rec storage.SelectionRecord
		if err := deserialize(data, &rec); err != nil {
			return nil, err
		}
		selections = append(selections, &rec)
	}
	storage.SortSelections(selections)
	return selections, nil
}

// Ping checks the connection.
func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the client if Open created it.
func (r *RedisStorage) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

func (r *RedisStorage) requireMesh(ctx context.Context, id string) error {
	n, err := r.client.Exists(ctx, r.meshKey(id)).Result()
	if err != nil {
		return unavailable(err)
	}
	if n == 0 {
		return &storage.NotFoundError{EntityType: "mesh", ID: id}
	}
	return nil
}
