package db

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/luxfi/redistribute/pkg/ledger"
)

// DB wraps a pebble database with common operations
type DB struct {
	*pebble.DB
}

// OpenPebble opens a pebble database backed by an in-memory filesystem
func OpenPebble() (*DB, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store: %w", err)
	}
	return &DB{DB: db}, nil
}

// Put implements Store
func (db *DB) Put(rec ledger.NFTRecord) (bool, error) {
	key := recordKey(rec.ID)

	_, closer, err := db.Get(key)
	switch {
	case err == nil:
		closer.Close()
		return false, nil
	case !errors.Is(err, pebble.ErrNotFound):
		return false, err
	}

	value, err := encodeRecord(rec)
	if err != nil {
		return false, err
	}
	if err := db.Set(key, value, pebble.NoSync); err != nil {
		return false, err
	}
	return true, nil
}

// Count implements Store
func (db *DB) Count() (int, error) {
	count := 0
	err := db.IteratePrefix(recordPrefix, func(_, _ []byte) error {
		count++
		return nil
	})
	return count, err
}

// Records implements Store
func (db *DB) Records() ([]ledger.NFTRecord, error) {
	var out []ledger.NFTRecord
	err := db.IteratePrefix(recordPrefix, func(_, value []byte) error {
		rec, err := decodeRecord(value)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// IteratePrefix iterates over all keys with the given prefix
func (db *DB) IteratePrefix(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	return iter.Error()
}

// keyUpperBound returns the upper bound for prefix iteration
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil // no upper bound
}
