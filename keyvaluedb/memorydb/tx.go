package memorydb

import (
	"errors"

	"github.com/batchledger/batchledger/keyvaluedb"
)

// memTx buffers writes in an overlay map and folds them into the backing
// store on Commit. A nil entry in the overlay marks a pending delete.
type memTx struct {
	db      *MemoryDB
	pending map[string][]byte
	done    bool
}

var errTxDone = errors.New("transaction is already completed")

func (t *memTx) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	if t.done {
		return false, errTxDone
	}
	if data, found := t.pending[string(key)]; found {
		if data == nil {
			return false, nil
		}
		return true, t.db.decoder(data, v)
	}
	return t.db.Read(key, v)
}

func (t *memTx) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	if t.done {
		return errTxDone
	}
	b, err := t.db.encoder(v)
	if err != nil {
		return err
	}
	t.pending[string(key)] = b
	return nil
}

func (t *memTx) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	if t.done {
		return errTxDone
	}
	t.pending[string(key)] = nil
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if t.db.writeErr != nil {
		return t.db.writeErr
	}
	for key, data := range t.pending {
		if data == nil {
			delete(t.db.db, key)
		} else {
			t.db.db[key] = data
		}
	}
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.pending = nil
	return nil
}
