package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"go.opentelemetry.io/otel/metric"

	"github.com/batchledger/batchledger/batch"
	"github.com/batchledger/batchledger/event"
	"github.com/batchledger/batchledger/host"
	"github.com/batchledger/batchledger/keyvaluedb"
	"github.com/batchledger/batchledger/logger"
	"github.com/batchledger/batchledger/observability"
	"github.com/batchledger/batchledger/predicates"
	"github.com/batchledger/batchledger/tokens"
	"github.com/batchledger/batchledger/types"
)

// EngineName tags this engine's records and events.
const EngineName = "transfer"

// Engine is the batch asset-transfer/burn engine. Each batch call commits
// as one host transaction: per-item failures are recorded inside it, fatal
// errors leave no trace of the call.
type Engine struct {
	host   *host.Host
	ledger tokens.Ledger
	access *batch.AccessController
	stats  batch.StatsStore[Stats]
	log    *slog.Logger

	itemCnt metric.Int64Counter
}

// NewEngine creates the transfer engine on the given host and asset ledger.
func NewEngine(h *host.Host, ledger tokens.Ledger, observe observability.Observability) (*Engine, error) {
	e := &Engine{
		host:   h,
		ledger: ledger,
		access: batch.NewAccessController(EngineName),
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
BatchTransfer moves asset amounts from the admin to each request's
recipient. Requests are processed independently in order: an invalid
amount or a ledger rejection is recorded as a per-item failure and the
siblings still run. The call itself fails only on authorization failure,
an empty batch or a host/storage fault - then nothing commits.
*/
func (e *Engine) BatchTransfer(ctx context.Context, caller types.Address, asset tokens.AssetID, requests []TransferRequest, proofs []predicates.AuthProof) (*BatchTransferResult, error) {
	var result *BatchTransferResult
	err := e.host.Execute(ctx, host.CallPayload(EngineName, "batch_transfer", caller), proofs, func(c *host.CallContext) error {
		if err := e.access.RequireAdmin(c, caller); err != nil {
			return err
		}
		admin, err := e.access.Admin(c)
		if err != nil {
			return err
		}

		results, summary, err := batch.Run(c, EngineName, requests, event.TransferProcessed,
			func(c *host.CallContext, req TransferRequest) (batch.Outcome[TransferResult], error) {
				return e.processTransfer(c, admin, asset, req)
			})
		if err != nil {
			return err
		}
		if err := e.accumulate(c, summary); err != nil {
			return err
		}

		result = &BatchTransferResult{
			TotalRequests:    summary.TotalRequests,
			Successful:       summary.Successful,
			Failed:           summary.Failed,
			TotalTransferred: summary.TotalEffected,
			Results:          results,
		}
		e.log.Info("batch transfer processed", logger.Engine(EngineName), logger.Batch(c.Batch()), logger.Data(summary))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch transfer: %w", err)
	}
	e.itemCnt.Add(ctx, int64(result.TotalRequests), metric.WithAttributes(observability.Engine(EngineName)))
	return result, nil
}

// BatchBurn removes asset amounts from each request owner's balance, with
// the same per-item isolation as BatchTransfer.
func (e *Engine) BatchBurn(ctx context.Context, caller types.Address, asset tokens.AssetID, requests []BurnRequest, proofs []predicates.AuthProof) (*BatchBurnResult, error) {
	var result *BatchBurnResult
	err := e.host.Execute(ctx, host.CallPayload(EngineName, "batch_burn", caller), proofs, func(c *host.CallContext) error {
		if err := e.access.RequireAdmin(c, caller); err != nil {
			return err
		}

		results, summary, err := batch.Run(c, EngineName, requests, event.BurnProcessed,
			func(c *host.CallContext, req BurnRequest) (batch.Outcome[BurnResult], error) {
				return e.processBurn(c, asset, req)
			})
		if err != nil {
			return err
		}
		if err := e.accumulate(c, summary); err != nil {
			return err
		}

		result = &BatchBurnResult{
			TotalRequests: summary.TotalRequests,
			Successful:    summary.Successful,
			Failed:        summary.Failed,
			TotalBurned:   summary.TotalEffected,
			Results:       results,
		}
		e.log.Info("batch burn processed", logger.Engine(EngineName), logger.Batch(c.Batch()), logger.Data(summary))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch burn: %w", err)
	}
	e.itemCnt.Add(ctx, int64(result.TotalRequests), metric.WithAttributes(observability.Engine(EngineName)))
	return result, nil
}

func (e *Engine) processTransfer(c *host.CallContext, admin types.Address, asset tokens.AssetID, req TransferRequest) (batch.Outcome[TransferResult], error) {
	if !types.ValidAmount(req.Amount) {
		return batch.Outcome[TransferResult]{
			Result: TransferFailure{Recipient: req.Recipient, Amount: req.Amount, Code: ErrCodeInvalidAmount},
		}, nil
	}
	if err := e.ledger.Transfer(c, asset, admin, req.Recipient, req.Amount); err != nil {
		if tokens.IsRejection(err) {
			return batch.Outcome[TransferResult]{
				Result: TransferFailure{Recipient: req.Recipient, Amount: req.Amount, Code: ErrCodeLedgerRejected},
			}, nil
		}
		return batch.Outcome[TransferResult]{}, err
	}
	return batch.Outcome[TransferResult]{
		Result:   TransferSuccess{Recipient: req.Recipient, Amount: req.Amount},
		Effected: req.Amount,
		OK:       true,
	}, nil
}

func (e *Engine) processBurn(c *host.CallContext, asset tokens.AssetID, req BurnRequest) (batch.Outcome[BurnResult], error) {
	if !types.ValidAmount(req.Amount) {
		return batch.Outcome[BurnResult]{
			Result: BurnFailure{Owner: req.Owner, Amount: req.Amount, Code: ErrCodeInvalidAmount},
		}, nil
	}
	if err := e.ledger.Burn(c, asset, req.Owner, req.Amount); err != nil {
		if tokens.IsRejection(err) {
			return batch.Outcome[BurnResult]{
				Result: BurnFailure{Owner: req.Owner, Amount: req.Amount, Code: ErrCodeLedgerRejected},
			}, nil
		}
		return batch.Outcome[BurnResult]{}, err
	}
	return batch.Outcome[BurnResult]{
		Result:   BurnSuccess{Owner: req.Owner, Amount: req.Amount},
		Effected: req.Amount,
		OK:       true,
	}, nil
}

// accumulate folds the batch totals into the aggregate statistics, the
// single commit point per batch.
func (e *Engine) accumulate(c *host.CallContext, summary batch.Summary) error {
	stats, err := e.stats.LoadTx(c)
	if err != nil {
		return err
	}
	if stats.TotalVolumeTransferred == nil {
		stats.TotalVolumeTransferred = new(big.Int)
	}
	stats.TotalBatches++
	stats.TotalTransfersProcessed += uint64(summary.Successful)
	stats.TotalVolumeTransferred.Add(stats.TotalVolumeTransferred, summary.TotalEffected)
	return e.stats.Store(c, stats)
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
	if stats.TotalVolumeTransferred == nil {
		stats.TotalVolumeTransferred = new(big.Int)
	}
	return stats, err
}
