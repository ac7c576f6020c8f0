// Package badger provides a Badger-based implementation of the storage interface.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/edgy/edgy/pkg/storage"
)

// Config holds configuration for BadgerStorage.
type Config struct {
	Path              string
	SyncWrites        bool
	ValueLogFileSize  int64
	NumVersionsToKeep int
	// InMemory runs badger without touching disk. Path is ignored.
	InMemory bool
}

// BadgerStorage implements the Storage interface using Badger.
type BadgerStorage struct {
	db     *badger.DB
	config *Config
}

// NewBadgerStorage creates a new Badger storage instance.
func NewBadgerStorage(config *Config) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(config.Path)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = config.SyncWrites
	if config.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = config.ValueLogFileSize
	}
	if config.NumVersionsToKeep > 0 {
		opts.NumVersionsToKeep = config.NumVersionsToKeep
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &storage.StorageUnavailableError{Cause: err}
	}

	return &BadgerStorage{
		db:     db,
		config: config,
	}, nil
}

// Key layout:
//
//	mesh:{id}                  -> MeshRecord
//	selection:{meshID}:{name}  -> SelectionRecord
//
// Selections live outside the mesh: prefix so a mesh scan never sees them.
func meshKey(id string) []byte {
	return []byte(fmt.Sprintf("mesh:%s", id))
}

func selectionPrefix(meshID string) []byte {
	return []byte(fmt.Sprintf("selection:%s:", meshID))
}

func selectionKey(meshID, name string) []byte {
	return append(selectionPrefix(meshID), name...)
}

// Serialization helpers
func serialize(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &storage.SerializationError{
			Operation: "marshal",
			Cause:     err,
		}
	}
	return data, nil
}

func deserialize(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &storage.SerializationError{
			Operation: "unmarshal",
			Cause:     err,
		}
	}
	return nil
}

// SaveMesh saves a mesh to Badger. The creation time of an existing record
// is kept.
func (b *BadgerStorage) SaveMesh(ctx context.Context, rec *storage.MeshRecord) error {
	return b.db.Update(func(txn *badger.Txn) error {
		now := time.Now()
		existing, err := b.getMeshInTxn(txn, rec.ID)
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
		return txn.Set(meshKey(rec.ID), data)
	})
}

// GetMesh retrieves a mesh by ID.
func (b *BadgerStorage) GetMesh(ctx context.Context, id string) (*storage.MeshRecord, error) {
	var rec *storage.MeshRecord

	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = b.getMeshInTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ListMeshes lists meshes with optional filtering and pagination.
func (b *BadgerStorage) ListMeshes(ctx context.Context, filter *storage.MeshFilter) ([]*storage.MeshRecord, int, error) {
	var meshes []*storage.MeshRecord

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("mesh:")

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec storage.MeshRecord
			err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &rec)
			})
			if err != nil {
				return err
			}
			if filter.Match(&rec) {
				meshes = append(meshes, &rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	page, total := storage.Paginate(meshes, filter)
	return page, total, nil
}

// getMeshInTxn retrieves a mesh within a transaction.
func (b *BadgerStorage) getMeshInTxn(txn *badger.Txn, id string) (*storage.MeshRecord, error) {
	var rec storage.MeshRecord

	item, err := txn.Get(meshKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, &storage.NotFoundError{
				EntityType: "mesh",
				ID:         id,
			}
		}
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		return deserialize(val, &rec)
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// DeleteMesh deletes a mesh and all its saved selections.
func (b *BadgerStorage) DeleteMesh(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := b.getMeshInTxn(txn, id); err != nil {
			return err
		}

		if err := txn.Delete(meshKey(id)); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = selectionPrefix(id)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveSelection saves a named selection under a mesh.
func (b *BadgerStorage) SaveSelection(ctx context.Context, meshID string, rec *storage.SelectionRecord) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := b.getMeshInTxn(txn, meshID); err != nil {
			return err
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}

		data, err := serialize(rec)
		if err != nil {
			return err
		}
		return txn.Set(selectionKey(meshID, rec.Name), data)
	})
}

// GetSelection retrieves a named selection.
func (b *BadgerStorage) GetSelection(ctx context.Context, meshID, name string) (*storage.SelectionRecord, error) {
	var rec storage.SelectionRecord

	err := b.db.View(func(txn *badger.Txn) error {
		if _, err := b.getMeshInTxn(txn, meshID); err != nil {
			return err
		}

		item, err := txn.Get(selectionKey(meshID, name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return &storage.NotFoundError{
					EntityType: "selection",
					ID:         name,
				}
			}
			return err
		}

		return item.Value(func(val []byte) error {
			return deserialize(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// ListSelections lists the saved selections of a mesh by name.
func (b *BadgerStorage) ListSelections(ctx context.Context, meshID string) ([]*storage.SelectionRecord, error) {
	selections := []*storage.SelectionRecord{}

	err := b.db.View(func(txn *badger.Txn) error {
		if _, err := b.getMeshInTxn(txn, meshID); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = selectionPrefix(meshID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec storage.SelectionRecord
			err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &rec)
			})
			if err != nil {
				return err
			}
			selections = append(selections, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	storage.SortSelections(selections)
	return selections, nil
}

// Close closes the Badger database.
func (b *BadgerStorage) Close() error {
	if !b.config.InMemory {
		// ErrNoRewrite just means there was nothing to collect.
		_ = b.db.RunValueLogGC(0.5)
	}
	return b.db.Close()
}
