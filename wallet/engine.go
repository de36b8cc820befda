package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/batchledger/batchledger/batch"
	"github.com/batchledger/batchledger/event"
	"github.com/batchledger/batchledger/host"
	"github.com/batchledger/batchledger/keyvaluedb"
	"github.com/batchledger/batchledger/logger"
	"github.com/batchledger/batchledger/observability"
	"github.com/batchledger/batchledger/predicates"
	"github.com/batchledger/batchledger/types"
)

// EngineName tags this engine's records and events.
const EngineName = "wallet"

// Engine is the batch wallet-lifecycle engine: creates wallets with
// sequential ids and re-keys existing wallets to a new owner (recovery)
// preserving the id.
type Engine struct {
	host   *host.Host
	access *batch.AccessController
	seq    *batch.SequenceAllocator
	stats  batch.StatsStore[Stats]
	log    *slog.Logger

	itemCnt metric.Int64Counter
}

func NewEngine(h *host.Host, observe observability.Observability) (*Engine, error) {
	e := &Engine{
		host:   h,
		access: batch.NewAccessController(EngineName),
		seq:    batch.NewSequenceAllocator(EngineName),
		stats:  batch.NewStatsStore[Stats](EngineName),
		log:    observe.Logger(),
	}
	var err error
	if e.itemCnt, err = observe.Meter(EngineName).Int64Counter("items",
		metric.WithDescription("Number of batch items processed"),
		metric.WithUnit("{item}"),
	); err != nil {
		return nil, fmt.Errorf("creating item counter: %w", err)
	}
	return e, nil
}

// Initialize stores the engine admin. Fails if called twice.
func (e *Engine) Initialize(ctx context.Context, admin types.Address) error {
	return e.host.Execute(ctx, nil, nil, func(c *host.CallContext) error {
		return e.access.Initialize(c, admin)
	})
}

// SetAdmin rotates the engine admin, only the current admin may call it.
func (e *Engine) SetAdmin(ctx context.Context, caller, newAdmin types.Address, proofs []predicates.AuthProof) error {
	return e.host.Execute(ctx, host.CallPayload(EngineName, "set_admin", caller), proofs, func(c *host.CallContext) error {
		return e.access.SetAdmin(c, caller, newAdmin)
	})
}

/*
BatchCreateWallets creates a wallet per request, assigning ids from the
sequence allocator in request order so the ids of one batch are contiguous
and increasing. A request for an owner who already holds a wallet is a
per-item failure, the siblings still run.
*/
func (e *Engine) BatchCreateWallets(ctx context.Context, caller types.Address, requests []CreateRequest, proofs []predicates.AuthProof) (*BatchCreateResult, error) {
	var result *BatchCreateResult
	err := e.host.Execute(ctx, host.CallPayload(EngineName, "batch_create_wallets", caller), proofs, func(c *host.CallContext) error {
		if err := e.access.RequireAdmin(c, caller); err != nil {
			return err
		}

		results, summary, err := batch.Run(c, EngineName, requests, event.WalletCreated, e.processCreate)
		if err != nil {
			return err
		}

		stats, err := e.stats.LoadTx(c)
		if err != nil {
			return err
		}
		stats.TotalBatches++
		stats.TotalWalletsCreated += uint64(summary.Successful)
		if err := e.stats.Store(c, stats); err != nil {
			return err
		}

		result = &BatchCreateResult{
			TotalRequests: summary.TotalRequests,
			Successful:    summary.Successful,
			Failed:        summary.Failed,
			Results:       results,
		}
		e.log.Info("batch wallet creation processed", logger.Engine(EngineName), logger.Batch(c.Batch()), logger.Data(summary))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch create wallets: %w", err)
	}
	e.itemCnt.Add(ctx, int64(result.TotalRequests), metric.WithAttributes(observability.Engine(EngineName)))
	return result, nil
}

/*
BatchRecoverWallets re-keys wallets from an old owner to a new one. The
wallet keeps its id - recovery never allocates. Failure codes: 1 when the
source wallet does not exist, 2 when the destination is the source itself
or already holds a wallet.
*/
func (e *Engine) BatchRecoverWallets(ctx context.Context, caller types.Address, requests []RecoveryRequest, proofs []predicates.AuthProof) (*BatchRecoveryResult, error) {
	var result *BatchRecoveryResult
	err := e.host.Execute(ctx, host.CallPayload(EngineName, "batch_recover_wallets", caller), proofs, func(c *host.CallContext) error {
		if err := e.access.RequireAdmin(c, caller); err != nil {
			return err
		}

		results, summary, err := batch.Run(c, EngineName, requests, event.WalletRecovered, e.processRecovery)
		if err != nil {
			return err
		}

		// recovery moves wallets, it does not create them
		stats, err := e.stats.LoadTx(c)
		if err != nil {
			return err
		}
		stats.TotalBatches++
		if err := e.stats.Store(c, stats); err != nil {
			return err
		}

		result = &BatchRecoveryResult{
			TotalRequests: summary.TotalRequests,
			Successful:    summary.Successful,
			Failed:        summary.Failed,
			Results:       results,
		}
		e.log.Info("batch wallet recovery processed", logger.Engine(EngineName), logger.Batch(c.Batch()), logger.Data(summary))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch recover wallets: %w", err)
	}
	e.itemCnt.Add(ctx, int64(result.TotalRequests), metric.WithAttributes(observability.Engine(EngineName)))
	return result, nil
}

func (e *Engine) processCreate(c *host.CallContext, req CreateRequest) (batch.Outcome[CreateResult], error) {
	var existing Wallet
	found, err := c.Read(walletKey(req.Owner), &existing)
	if err != nil {
		return batch.Outcome[CreateResult]{}, err
	}
	if found {
		return batch.Outcome[CreateResult]{
			Result: CreateFailure{Owner: req.Owner, Code: ErrCodeAlreadyExists},
		}, nil
	}
	id, err := e.seq.NextID(c)
	if err != nil {
		return batch.Outcome[CreateResult]{}, err
	}
	if err := c.Write(walletKey(req.Owner), &Wallet{Owner: req.Owner, ID: id}); err != nil {
		return batch.Outcome[CreateResult]{}, err
	}
	return batch.Outcome[CreateResult]{
		Result: CreateSuccess{Owner: req.Owner, ID: id},
		OK:     true,
	}, nil
}

func (e *Engine) processRecovery(c *host.CallContext, req RecoveryRequest) (batch.Outcome[RecoveryResult], error) {
	fail := func(code ErrorCode) batch.Outcome[RecoveryResult] {
		return batch.Outcome[RecoveryResult]{
			Result: RecoveryFailure{OldOwner: req.OldOwner, NewOwner: req.NewOwner, Code: code},
		}
	}

	var source Wallet
	found, err := c.Read(walletKey(req.OldOwner), &source)
	if err != nil {
		return batch.Outcome[RecoveryResult]{}, err
	}
	if !found {
		return fail(ErrCodeSourceNotFound), nil
	}
	if req.NewOwner.Eq(req.OldOwner) {
		return fail(ErrCodeInvalidDestination), nil
	}
	var destination Wallet
	if found, err = c.Read(walletKey(req.NewOwner), &destination); err != nil {
		return batch.Outcome[RecoveryResult]{}, err
	}
	if found {
		return fail(ErrCodeInvalidDestination), nil
	}

	if err := c.Delete(walletKey(req.OldOwner)); err != nil {
		return batch.Outcome[RecoveryResult]{}, err
	}
	if err := c.Write(walletKey(req.NewOwner), &Wallet{Owner: req.NewOwner, ID: source.ID}); err != nil {
		return batch.Outcome[RecoveryResult]{}, err
	}
	return batch.Outcome[RecoveryResult]{
		Result: RecoverySuccess{OldOwner: req.OldOwner, NewOwner: req.NewOwner, ID: source.ID},
		OK:     true,
	}, nil
}

// Admin returns the engine admin.
func (e *Engine) Admin(context.Context) (types.Address, error) {
	var admin types.Address
	err := e.host.View(func(r keyvaluedb.Reader) error {
		var err error
		admin, err = e.access.Admin(r)
		return err
	})
	return admin, err
}

// Stats returns the engine's aggregate statistics.
func (e *Engine) Stats(context.Context) (Stats, error) {
	var stats Stats
	err := e.host.View(func(r keyvaluedb.Reader) error {
		var err error
		stats, err = e.stats.Load(r)
		return err
	})
	return stats, err
}

// GetWallet returns the wallet of the given owner, nil if absent.
func (e *Engine) GetWallet(_ context.Context, owner types.Address) (*Wallet, error) {
	var w Wallet
	var found bool
	err := e.host.View(func(r keyvaluedb.Reader) error {
		var err error
		found, err = r.Read(walletKey(owner), &w)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &w, nil
}

func walletKey(owner types.Address) []byte {
	return append([]byte(EngineName+"/by-owner/"), owner...)
}
