// Package db holds the in-memory working set of collected NFT records
package db

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/redistribute/pkg/ledger"
)

// Supported backends
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
)

// recordPrefix namespaces NFT records by id
var recordPrefix = []byte("nft/")

// Store keeps one record per NFT id
type Store interface {
	// Put stores rec and reports whether its id was new
	Put(rec ledger.NFTRecord) (bool, error)
	// Count returns the number of distinct records
	Count() (int, error)
	// Records returns every record in ascending id order
	Records() ([]ledger.NFTRecord, error)
	Close() error
}

// Open opens an in-memory store for the named backend
func Open(backend string) (Store, error) {
	switch backend {
	case "", BackendPebble:
		return OpenPebble()
	case BackendLevelDB:
		return OpenLevelDB()
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// Supported reports whether backend names a known store
func Supported(backend string) bool {
	switch backend {
	case "", BackendPebble, BackendLevelDB:
		return true
	}
	return false
}

// PutAll stores a batch and returns how many ids were new
func PutAll(s Store, batch []ledger.NFTRecord) (int, error) {
	added := 0
	for _, rec := range batch {
		ok, err := s.Put(rec)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func recordKey(id string) []byte {
	key := make([]byte, 0, len(recordPrefix)+len(id))
	key = append(key, recordPrefix...)
	return append(key, id...)
}

func encodeRecord(rec ledger.NFTRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(value []byte) (ledger.NFTRecord, error) {
	var rec ledger.NFTRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}
