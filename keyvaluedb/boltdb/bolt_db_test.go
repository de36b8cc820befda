package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *BoltDB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func TestBoltDB(t *testing.T) {
	key := []byte("key")

	t.Run("write read delete roundtrip", func(t *testing.T) {
		db := newTestDB(t)

		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, db.Write(key, uint64(42)))
		found, err = db.Read(key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 42, v)

		require.NoError(t, db.Delete(key))
		found, err = db.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("struct values", func(t *testing.T) {
		type record struct {
			_    struct{} `cbor:",toarray"`
			Name string
			N    uint64
		}
		db := newTestDB(t)
		require.NoError(t, db.Write(key, &record{Name: "x", N: 7}))

		var rec record
		found, err := db.Read(key, &rec)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, record{Name: "x", N: 7}, rec)
	})

	t.Run("invalid file path", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "no", "such", "dir", "test.db"))
		require.Error(t, err)
	})
}

func TestBoltTx(t *testing.T) {
	key := []byte("key")

	t.Run("commit makes writes durable", func(t *testing.T) {
		db := newTestDB(t)
		tx, err := db.StartTx()
		require.NoError(t, err)
		require.NoError(t, tx.Write(key, uint64(42)))
		require.NoError(t, tx.Commit())

		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 42, v)
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		db := newTestDB(t)
		tx, err := db.StartTx()
		require.NoError(t, err)
		require.NoError(t, tx.Write(key, uint64(42)))
		require.NoError(t, tx.Rollback())

		var v uint64
		found, err := db.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("tx reads its own writes", func(t *testing.T) {
		db := newTestDB(t)
		tx, err := db.StartTx()
		require.NoError(t, err)
		require.NoError(t, tx.Write(key, uint64(1)))

		var v uint64
		found, err := tx.Read(key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 1, v)

		require.NoError(t, tx.Delete(key))
		found, err = tx.Read(key, &v)
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, tx.Rollback())
	})
}
