package wallet

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/batchledger/batchledger/batch"
	"github.com/batchledger/batchledger/event"
	"github.com/batchledger/batchledger/host"
	"github.com/batchledger/batchledger/keyvaluedb/memorydb"
	"github.com/batchledger/batchledger/logger"
	"github.com/batchledger/batchledger/observability"
	"github.com/batchledger/batchledger/predicates"
	"github.com/batchledger/batchledger/types"
)

func testAddr(b byte) types.Address {
	return types.Address(bytes.Repeat([]byte{b}, types.AddressLength))
}

func proofFor(addr types.Address) []predicates.AuthProof {
	return []predicates.AuthProof{{Owner: addr}}
}

func newTestEngine(t *testing.T) (*Engine, *host.Host) {
	t.Helper()
	observe := observability.WithLogger(logger.NOP())
	h, err := host.New(memorydb.New(), predicates.NewTrustingAuthorizer(), observe)
	require.NoError(t, err)
	e, err := NewEngine(h, observe)
	require.NoError(t, err)
	return e, h
}

func newInitializedEngine(t *testing.T, admin types.Address) (*Engine, *host.Host) {
	t.Helper()
	e, h := newTestEngine(t)
	require.NoError(t, e.Initialize(context.Background(), admin))
	return e, h
}

func createWallets(t *testing.T, e *Engine, admin types.Address, owners ...types.Address) *BatchCreateResult {
	t.Helper()
	requests := make([]CreateRequest, len(owners))
	for i, owner := range owners {
		requests[i] = CreateRequest{Owner: owner}
	}
	result, err := e.BatchCreateWallets(context.Background(), admin, requests, proofFor(admin))
	require.NoError(t, err)
	return result
}

func TestBatchCreateWallets(t *testing.T) {
	admin := testAddr(1)

	t.Run("first wallet gets id 1", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		owner := testAddr(2)

		result := createWallets(t, e, admin, owner)
		require.EqualValues(t, 1, result.TotalRequests)
		require.EqualValues(t, 1, result.Successful)
		require.Equal(t, []CreateResult{CreateSuccess{Owner: owner, ID: 1}}, result.Results)

		w, err := e.GetWallet(context.Background(), owner)
		require.NoError(t, err)
		require.Equal(t, &Wallet{Owner: owner, ID: 1}, w)
	})

	t.Run("ids are sequential in request order", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)

		result := createWallets(t, e, admin, testAddr(2), testAddr(3), testAddr(4))
		require.Equal(t, []CreateResult{
			CreateSuccess{Owner: testAddr(2), ID: 1},
			CreateSuccess{Owner: testAddr(3), ID: 2},
			CreateSuccess{Owner: testAddr(4), ID: 3},
		}, result.Results)

		// ids continue across batches
		result = createWallets(t, e, admin, testAddr(5))
		require.Equal(t, []CreateResult{CreateSuccess{Owner: testAddr(5), ID: 4}}, result.Results)
	})

	t.Run("duplicate owner fails item level, id sequence continues", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2))

		result := createWallets(t, e, admin, testAddr(3), testAddr(2), testAddr(4))
		require.EqualValues(t, 2, result.Successful)
		require.EqualValues(t, 1, result.Failed)
		require.Equal(t, []CreateResult{
			CreateSuccess{Owner: testAddr(3), ID: 2},
			CreateFailure{Owner: testAddr(2), Code: ErrCodeAlreadyExists},
			CreateSuccess{Owner: testAddr(4), ID: 3},
		}, result.Results)
	})

	t.Run("repeated batch reports the duplicate and creates the newcomer", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		owner1, owner2 := testAddr(2), testAddr(3)
		createWallets(t, e, admin, owner1)

		result := createWallets(t, e, admin, owner1, owner2)
		require.Equal(t, []CreateResult{
			CreateFailure{Owner: owner1, Code: ErrCodeAlreadyExists},
			CreateSuccess{Owner: owner2, ID: 2},
		}, result.Results)

		stats, err := e.Stats(context.Background())
		require.NoError(t, err)
		require.EqualValues(t, 2, stats.TotalWalletsCreated)
	})

	t.Run("duplicate within one batch fails the second item", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		owner := testAddr(2)

		result := createWallets(t, e, admin, owner, owner)
		require.Equal(t, []CreateResult{
			CreateSuccess{Owner: owner, ID: 1},
			CreateFailure{Owner: owner, Code: ErrCodeAlreadyExists},
		}, result.Results)
	})

	t.Run("events", func(t *testing.T) {
		e, h := newInitializedEngine(t, admin)

		createWallets(t, e, admin, testAddr(2), testAddr(2))

		events := h.Events()
		require.Len(t, events, 4)
		require.Equal(t, event.BatchStarted, events[0].Type)
		require.Equal(t, event.BatchInfo{Engine: EngineName, Requests: 2}, events[0].Content)
		require.Equal(t, event.WalletCreated, events[1].Type)
		require.Equal(t, CreateSuccess{Owner: testAddr(2), ID: 1}, events[1].Content)
		require.Equal(t, event.WalletCreated, events[2].Type)
		require.Equal(t, CreateFailure{Owner: testAddr(2), Code: ErrCodeAlreadyExists}, events[2].Content)
		require.Equal(t, event.BatchCompleted, events[3].Type)
	})

	t.Run("empty batch aborts the call", func(t *testing.T) {
		e, h := newInitializedEngine(t, admin)
		_, err := e.BatchCreateWallets(context.Background(), admin, nil, proofFor(admin))
		require.ErrorIs(t, err, batch.ErrEmptyBatch)
		require.Empty(t, h.Events())
	})

	t.Run("not initialized", func(t *testing.T) {
		e, _ := newTestEngine(t)
		_, err := e.BatchCreateWallets(context.Background(), admin,
			[]CreateRequest{{Owner: testAddr(2)}}, proofFor(admin))
		require.ErrorIs(t, err, batch.ErrNotInitialized)
	})

	t.Run("unauthorized caller leaves no trace", func(t *testing.T) {
		e, h := newInitializedEngine(t, admin)
		mallory := testAddr(9)

		_, err := e.BatchCreateWallets(context.Background(), mallory,
			[]CreateRequest{{Owner: mallory}}, proofFor(mallory))
		require.ErrorIs(t, err, batch.ErrUnauthorized)

		require.Empty(t, h.Events())
		w, err := e.GetWallet(context.Background(), mallory)
		require.NoError(t, err)
		require.Nil(t, w)
	})

	t.Run("large batch", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)

		requests := make([]CreateRequest, 50)
		for i := range requests {
			requests[i] = CreateRequest{Owner: testAddr(byte(i + 2))}
		}
		result, err := e.BatchCreateWallets(context.Background(), admin, requests, proofFor(admin))
		require.NoError(t, err)
		require.EqualValues(t, 50, result.Successful)
		require.Equal(t, CreateSuccess{Owner: testAddr(51), ID: 50}, result.Results[49])
	})
}

func TestBatchRecoverWallets(t *testing.T) {
	admin := testAddr(1)

	t.Run("recovery preserves the id and removes the source", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		oldOwner, newOwner := testAddr(2), testAddr(3)
		createWallets(t, e, admin, oldOwner)

		result, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{{OldOwner: oldOwner, NewOwner: newOwner}}, proofFor(admin))
		require.NoError(t, err)
		require.EqualValues(t, 1, result.Successful)
		require.Equal(t, []RecoveryResult{RecoverySuccess{OldOwner: oldOwner, NewOwner: newOwner, ID: 1}}, result.Results)

		w, err := e.GetWallet(context.Background(), newOwner)
		require.NoError(t, err)
		require.Equal(t, &Wallet{Owner: newOwner, ID: 1}, w)

		w, err = e.GetWallet(context.Background(), oldOwner)
		require.NoError(t, err)
		require.Nil(t, w)
	})

	t.Run("recovery of a later id preserves it", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2), testAddr(3), testAddr(4), testAddr(5), testAddr(6))

		result, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{{OldOwner: testAddr(6), NewOwner: testAddr(7)}}, proofFor(admin))
		require.NoError(t, err)
		require.Equal(t, []RecoveryResult{RecoverySuccess{OldOwner: testAddr(6), NewOwner: testAddr(7), ID: 5}}, result.Results)

		w, err := e.GetWallet(context.Background(), testAddr(7))
		require.NoError(t, err)
		require.EqualValues(t, 5, w.ID)

		w, err = e.GetWallet(context.Background(), testAddr(6))
		require.NoError(t, err)
		require.Nil(t, w)
	})

	t.Run("self recovery leaves the wallet unchanged", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		owner := testAddr(2)
		createWallets(t, e, admin, owner)

		result, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{{OldOwner: owner, NewOwner: owner}}, proofFor(admin))
		require.NoError(t, err)
		require.Equal(t, []RecoveryResult{RecoveryFailure{OldOwner: owner, NewOwner: owner, Code: ErrCodeInvalidDestination}}, result.Results)

		w, err := e.GetWallet(context.Background(), owner)
		require.NoError(t, err)
		require.Equal(t, &Wallet{Owner: owner, ID: 1}, w)
	})

	t.Run("recovery does not consume ids", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2))

		_, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{{OldOwner: testAddr(2), NewOwner: testAddr(3)}}, proofFor(admin))
		require.NoError(t, err)

		result := createWallets(t, e, admin, testAddr(4))
		require.Equal(t, []CreateResult{CreateSuccess{Owner: testAddr(4), ID: 2}}, result.Results)
	})

	t.Run("partial failures", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2), testAddr(3))

		result, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{
				{OldOwner: testAddr(9), NewOwner: testAddr(4)}, // no source wallet
				{OldOwner: testAddr(2), NewOwner: testAddr(2)}, // destination is the source
				{OldOwner: testAddr(2), NewOwner: testAddr(3)}, // destination holds a wallet
				{OldOwner: testAddr(2), NewOwner: testAddr(5)},
			}, proofFor(admin))
		require.NoError(t, err)
		require.EqualValues(t, 1, result.Successful)
		require.EqualValues(t, 3, result.Failed)
		require.Equal(t, []RecoveryResult{
			RecoveryFailure{OldOwner: testAddr(9), NewOwner: testAddr(4), Code: ErrCodeSourceNotFound},
			RecoveryFailure{OldOwner: testAddr(2), NewOwner: testAddr(2), Code: ErrCodeInvalidDestination},
			RecoveryFailure{OldOwner: testAddr(2), NewOwner: testAddr(3), Code: ErrCodeInvalidDestination},
			RecoverySuccess{OldOwner: testAddr(2), NewOwner: testAddr(5), ID: 1},
		}, result.Results)
	})

	t.Run("recovered wallet can be recovered again within the batch", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2))

		result, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{
				{OldOwner: testAddr(2), NewOwner: testAddr(3)},
				{OldOwner: testAddr(3), NewOwner: testAddr(4)},
			}, proofFor(admin))
		require.NoError(t, err)
		require.EqualValues(t, 2, result.Successful)

		w, err := e.GetWallet(context.Background(), testAddr(4))
		require.NoError(t, err)
		require.Equal(t, &Wallet{Owner: testAddr(4), ID: 1}, w)
	})

	t.Run("events", func(t *testing.T) {
		e, h := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2))
		eventsBefore := len(h.Events())

		_, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{{OldOwner: testAddr(2), NewOwner: testAddr(3)}}, proofFor(admin))
		require.NoError(t, err)

		events := h.Events()[eventsBefore:]
		require.Len(t, events, 3)
		require.Equal(t, event.BatchStarted, events[0].Type)
		require.Equal(t, event.WalletRecovered, events[1].Type)
		require.Equal(t, RecoverySuccess{OldOwner: testAddr(2), NewOwner: testAddr(3), ID: 1}, events[1].Content)
		require.Equal(t, event.BatchCompleted, events[2].Type)
	})

	t.Run("empty batch aborts the call", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		_, err := e.BatchRecoverWallets(context.Background(), admin, nil, proofFor(admin))
		require.ErrorIs(t, err, batch.ErrEmptyBatch)
	})

	t.Run("unauthorized", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2))
		mallory := testAddr(9)

		_, err := e.BatchRecoverWallets(context.Background(), mallory,
			[]RecoveryRequest{{OldOwner: testAddr(2), NewOwner: mallory}}, proofFor(mallory))
		require.ErrorIs(t, err, batch.ErrUnauthorized)

		w, err := e.GetWallet(context.Background(), testAddr(2))
		require.NoError(t, err)
		require.NotNil(t, w)
	})
}

func TestWalletStats(t *testing.T) {
	admin := testAddr(1)

	t.Run("creation counts successful items only", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2), testAddr(3))
		createWallets(t, e, admin, testAddr(2)) // duplicate, fails item level

		stats, err := e.Stats(context.Background())
		require.NoError(t, err)
		require.EqualValues(t, 2, stats.TotalBatches)
		require.EqualValues(t, 2, stats.TotalWalletsCreated)
	})

	t.Run("recovery bumps batches but not creations", func(t *testing.T) {
		e, _ := newInitializedEngine(t, admin)
		createWallets(t, e, admin, testAddr(2))

		_, err := e.BatchRecoverWallets(context.Background(), admin,
			[]RecoveryRequest{{OldOwner: testAddr(2), NewOwner: testAddr(3)}}, proofFor(admin))
		require.NoError(t, err)

		stats, err := e.Stats(context.Background())
		require.NoError(t, err)
		require.EqualValues(t, 2, stats.TotalBatches)
		require.EqualValues(t, 1, stats.TotalWalletsCreated)
	})
}

func TestWalletSetAdmin(t *testing.T) {
	admin, successor := testAddr(1), testAddr(2)
	e, _ := newInitializedEngine(t, admin)

	require.NoError(t, e.SetAdmin(context.Background(), admin, successor, proofFor(admin)))

	stored, err := e.Admin(context.Background())
	require.NoError(t, err)
	require.Equal(t, successor, stored)

	_, err = e.BatchCreateWallets(context.Background(), admin,
		[]CreateRequest{{Owner: testAddr(3)}}, proofFor(admin))
	require.ErrorIs(t, err, batch.ErrUnauthorized)
}
