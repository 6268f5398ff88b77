package extconfig

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/otcheredev/pcd-manager/internal/codec"
)

// BadgerRegistry is the embedded default Registry implementation: no
// external database required, suitable for a single-node deployment or
// local development. Grounded on badger/v4's txn-scoped Get/Set/View
// pattern.
type BadgerRegistry struct {
	db *badger.DB
}

// NewBadgerRegistry opens (or creates) a badger store rooted at dir.
func NewBadgerRegistry(dir string) (*BadgerRegistry, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("extconfig: open badger store at %s: %w", dir, err)
	}
	return &BadgerRegistry{db: db}, nil
}

func (b *BadgerRegistry) Lookup(ctx context.Context, systemID []byte, configReportID uint16) ([]codec.ConfigObject, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key(systemID, configReportID)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("extconfig: badger lookup: %w", err)
	}
	objects, err := unmarshalObjects(data)
	if err != nil {
		return nil, false, err
	}
	return objects, true, nil
}

func (b *BadgerRegistry) Register(ctx context.Context, systemID []byte, configReportID uint16, objects []codec.ConfigObject) error {
	data, err := marshalObjects(objects)
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key(systemID, configReportID)), data)
	})
	if err != nil {
		return fmt.Errorf("extconfig: badger register: %w", err)
	}
	return nil
}

// Close releases the badger store's file handles.
func (b *BadgerRegistry) Close() error {
	return b.db.Close()
}
