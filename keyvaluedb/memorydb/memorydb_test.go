package memorydb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/batchledger/batchledger/keyvaluedb"
)

func TestMemoryDB(t *testing.T) {
	key := []byte("key")

	t.Run("read missing key", func(t *testing.T) {
		db := New()
		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("write and read", func(t *testing.T) {
		db := New()
		require.NoError(t, db.Write(key, uint64(42)))

		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 42, v)
	})

	t.Run("delete", func(t *testing.T) {
		db := New()
		require.NoError(t, db.Write(key, uint64(42)))
		require.NoError(t, db.Delete(key))

		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		db := New()
		require.ErrorIs(t, db.Write(nil, uint64(1)), keyvaluedb.ErrEmptyKey)
		_, err := db.Read(nil, new(uint64))
		require.ErrorIs(t, err, keyvaluedb.ErrEmptyKey)
		require.ErrorIs(t, db.Delete(nil), keyvaluedb.ErrEmptyKey)
	})

	t.Run("nil value is rejected", func(t *testing.T) {
		db := New()
		require.ErrorIs(t, db.Write(key, nil), keyvaluedb.ErrNilValue)
	})

	t.Run("injected write error", func(t *testing.T) {
		db := New()
		expErr := errors.New("disk full")
		db.SetWriteError(expErr)
		require.ErrorIs(t, db.Write(key, uint64(1)), expErr)
		require.ErrorIs(t, db.Delete(key), expErr)
	})
}

func TestMemoryDBTx(t *testing.T) {
	key := []byte("key")

	t.Run("commit folds writes into the store", func(t *testing.T) {
		db := New()
		tx, err := db.StartTx()
		require.NoError(t, err)
		require.NoError(t, tx.Write(key, uint64(42)))

		// not visible outside the tx before commit
		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, tx.Commit())
		found, err = db.Read(key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 42, v)
	})

	t.Run("tx reads its own writes and deletes", func(t *testing.T) {
		db := New()
		require.NoError(t, db.Write(key, uint64(1)))

		tx, err := db.StartTx()
		require.NoError(t, err)

		var v uint64
		found, err := tx.Read(key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 1, v)

		require.NoError(t, tx.Write(key, uint64(2)))
		found, err = tx.Read(key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 2, v)

		require.NoError(t, tx.Delete(key))
		found, err = tx.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, tx.Rollback())
	})

	t.Run("rollback discards everything", func(t *testing.T) {
		db := New()
		tx, err := db.StartTx()
		require.NoError(t, err)
		require.NoError(t, tx.Write(key, uint64(42)))
		require.NoError(t, tx.Rollback())

		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)

		// completed tx rejects further use
		require.Error(t, tx.Write(key, uint64(1)))
		require.Error(t, tx.Commit())
	})

	t.Run("commit respects injected write error", func(t *testing.T) {
		db := New()
		tx, err := db.StartTx()
		require.NoError(t, err)
		require.NoError(t, tx.Write(key, uint64(42)))

		expErr := errors.New("disk full")
		db.SetWriteError(expErr)
		require.ErrorIs(t, tx.Commit(), expErr)
	})
}
