package transfer

import (
	"math/big"

	"github.com/batchledger/batchledger/types"
)

// ErrorCode is the closed per-item failure cause enumeration. Client
// tooling branches on these, never on message strings.
type ErrorCode uint32

const (
	// ErrCodeInvalidAmount - the requested amount is not a positive
	// 128-bit integer. The asset ledger is not touched.
	ErrCodeInvalidAmount ErrorCode = 1
	// ErrCodeLedgerRejected - the asset ledger refused the operation
	// (insufficient funds, frozen account).
	ErrCodeLedgerRejected ErrorCode = 2
)

type (
	// TransferRequest asks to move Amount of the batch's asset from the
	// engine admin to Recipient.
	TransferRequest struct {
		_         struct{} `cbor:",toarray"`
		Recipient types.Address
		Amount    *big.Int
	}

	// BurnRequest asks to remove Amount of the batch's asset from Owner's
	// balance.
	BurnRequest struct {
		_      struct{} `cbor:",toarray"`
		Owner  types.Address
		Amount *big.Int
	}

	// TransferResult is the tagged per-item outcome of a transfer request:
	// either TransferSuccess or TransferFailure.
	TransferResult interface {
		isTransferResult()
	}

	TransferSuccess struct {
		Recipient types.Address
		Amount    *big.Int
	}

	TransferFailure struct {
		Recipient types.Address
		Amount    *big.Int
		Code      ErrorCode
	}

	// BurnResult is the tagged per-item outcome of a burn request: either
	// BurnSuccess or BurnFailure.
	BurnResult interface {
		isBurnResult()
	}

	BurnSuccess struct {
		Owner  types.Address
		Amount *big.Int
	}

	BurnFailure struct {
		Owner  types.Address
		Amount *big.Int
		Code   ErrorCode
	}

	// BatchTransferResult summarizes one batch transfer call. Results
	// match the request order 1:1.
	BatchTransferResult struct {
		TotalRequests    uint32
		Successful       uint32
		Failed           uint32
		TotalTransferred *big.Int
		Results          []TransferResult
	}

	// BatchBurnResult summarizes one batch burn call.
	BatchBurnResult struct {
		TotalRequests uint32
		Successful    uint32
		Failed        uint32
		TotalBurned   *big.Int
		Results       []BurnResult
	}

	// Stats are the engine's aggregate counters, monotone across the
	// engine's whole lifetime.
	Stats struct {
		_                       struct{} `cbor:",toarray"`
		TotalBatches            uint64
		TotalTransfersProcessed uint64
		TotalVolumeTransferred  *big.Int
	}
)

func (TransferSuccess) isTransferResult() {}
func (TransferFailure) isTransferResult() {}
func (BurnSuccess) isBurnResult()         {}
func (BurnFailure) isBurnResult()         {}
