package memorydb

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/batchledger/batchledger/keyvaluedb"
)

type (
	EncodeFn func(v any) ([]byte, error)
	DecodeFn func(data []byte, v any) error

	// MemoryDB is an in-memory implementation of the KeyValueDB interface,
	// meant mostly for tests.
	MemoryDB struct {
		mu       sync.RWMutex
		db       map[string][]byte
		encoder  EncodeFn
		decoder  DecodeFn
		writeErr error
	}
)

// New creates a new empty in-memory key-value DB.
func New() *MemoryDB {
	return &MemoryDB{
		db:      make(map[string][]byte),
		encoder: cbor.Marshal,
		decoder: cbor.Unmarshal,
	}
}

func (db *MemoryDB) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	data, found := db.db[string(key)]
	if !found {
		return false, nil
	}
	return true, db.decoder(data, v)
}

func (db *MemoryDB) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	b, err := db.encoder(v)
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.writeErr != nil {
		return db.writeErr
	}
	db.db[string(key)] = b
	return nil
}

func (db *MemoryDB) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.writeErr != nil {
		return db.writeErr
	}
	delete(db.db, string(key))
	return nil
}

func (db *MemoryDB) StartTx() (keyvaluedb.DBTransaction, error) {
	return &memTx{db: db, pending: make(map[string][]byte)}, nil
}

// SetWriteError makes all subsequent writes fail with the given error,
// simulates storage failures in tests.
func (db *MemoryDB) SetWriteError(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.writeErr = err
}

func (db *MemoryDB) String() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fmt.Sprintf("memorydb: %d entries", len(db.db))
}
