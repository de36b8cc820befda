package keyvaluedb

import (
	"errors"
	"reflect"
)

// Reader interface for DB
type Reader interface {
	// Read reads the value for key stored in the DB. Returns false and no
	// error if the key is not present.
	Read(key []byte, value any) (bool, error)
}

// Writer interface for DB
type Writer interface {
	// Write inserts the given value into the DB.
	Write(key []byte, value any) error
	// Delete removes the key from the key-value data store.
	Delete(key []byte) error
}

// DBTransaction is a key value database transaction.
// NB! a transaction MUST be completed by either calling Commit() or
// Rollback() which releases it. Only one read-write transaction is allowed
// at a time.
type DBTransaction interface {
	Reader
	Writer
	// Commit commits all pending changes.
	Commit() error
	// Rollback reverts everything and nothing is changed.
	Rollback() error
}

// KeyValueDB is the storage interface the execution host runs on.
type KeyValueDB interface {
	Reader
	Writer
	// StartTx starts a read-write transaction.
	StartTx() (DBTransaction, error)
}

var (
	ErrEmptyKey = errors.New("key is empty")
	ErrNilValue = errors.New("value is nil")
)

// CheckKey validates the key.
func CheckKey(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return nil
}

// CheckKeyAndValue validates the key and the value.
func CheckKeyAndValue(key []byte, v any) error {
	if err := CheckKey(key); err != nil {
		return err
	}
	if v == nil {
		return ErrNilValue
	}
	if k := reflect.ValueOf(v).Kind(); k == reflect.Ptr && reflect.ValueOf(v).IsNil() {
		return ErrNilValue
	}
	return nil
}
