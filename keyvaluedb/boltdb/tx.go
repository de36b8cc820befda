package boltdb

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/batchledger/batchledger/keyvaluedb"
)

type boltTx struct {
	tx      *bolt.Tx
	bucket  []byte
	encoder EncodeFn
	decoder DecodeFn
}

func (t *boltTx) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	data := t.tx.Bucket(t.bucket).Get(key)
	if data == nil {
		return false, nil
	}
	if err := t.decoder(data, v); err != nil {
		return true, fmt.Errorf("bolt tx read failed, %w", err)
	}
	return true, nil
}

func (t *boltTx) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	b, err := t.encoder(v)
	if err != nil {
		return err
	}
	if err = t.tx.Bucket(t.bucket).Put(key, b); err != nil {
		return fmt.Errorf("bolt tx write failed, %w", err)
	}
	return nil
}

func (t *boltTx) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	if err := t.tx.Bucket(t.bucket).Delete(key); err != nil {
		return fmt.Errorf("bolt tx delete failed, %w", err)
	}
	return nil
}

func (t *boltTx) Commit() error {
	return t.tx.Commit()
}

func (t *boltTx) Rollback() error {
	return t.tx.Rollback()
}
