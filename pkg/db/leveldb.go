package db

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/luxfi/redistribute/pkg/ledger"
)

// LevelDB is a goleveldb-backed Store on memory storage
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens a goleveldb database on memory storage
func OpenLevelDB() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb store: %w", err)
	}
	return &LevelDB{db: db}, nil
}

// Put implements Store
func (l *LevelDB) Put(rec ledger.NFTRecord) (bool, error) {
	key := recordKey(rec.ID)

	has, err := l.db.Has(key, nil)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	value, err := encodeRecord(rec)
	if err != nil {
		return false, err
	}
	if err := l.db.Put(key, value, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Count implements Store
func (l *LevelDB) Count() (int, error) {
	iter := l.db.NewIterator(util.BytesPrefix(recordPrefix), nil)
	defer iter.Release()

	count := 0
	for iter.Next() {
		count++
	}
	return count, iter.Error()
}

// Records implements Store
func (l *LevelDB) Records() ([]ledger.NFTRecord, error) {
	iter := l.db.NewIterator(util.BytesPrefix(recordPrefix), nil)
	defer iter.Release()

	var out []ledger.NFTRecord
	for iter.Next() {
		// Value is only valid until the next call to Next; decode copies it
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, iter.Error()
}

// Close implements Store
func (l *LevelDB) Close() error {
	if err := l.db.Close(); err != nil && !errors.Is(err, leveldb.ErrClosed) {
		return err
	}
	return nil
}
