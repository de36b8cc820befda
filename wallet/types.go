package wallet

import (
	"github.com/batchledger/batchledger/types"
)

// ErrorCode is the closed per-item failure cause enumeration.
type ErrorCode uint32

const (
	// ErrCodeAlreadyExists - a wallet for the owner already exists
	// (create).
	ErrCodeAlreadyExists ErrorCode = 1
	// ErrCodeSourceNotFound - no wallet exists for the old owner
	// (recovery).
	ErrCodeSourceNotFound ErrorCode = 1
	// ErrCodeInvalidDestination - the new owner equals the old one or
	// already holds a wallet (recovery).
	ErrCodeInvalidDestination ErrorCode = 2
)

type (
	// Wallet is a holding record keyed by its owner. The id is unique and
	// strictly increasing in creation order over the engine's whole
	// lifetime; recovery re-keys the record but never changes the id.
	Wallet struct {
		_     struct{} `cbor:",toarray"`
		Owner types.Address
		ID    uint64
	}

	CreateRequest struct {
		_     struct{} `cbor:",toarray"`
		Owner types.Address
	}

	RecoveryRequest struct {
		_        struct{} `cbor:",toarray"`
		OldOwner types.Address
		NewOwner types.Address
	}

	// CreateResult is the tagged per-item outcome of a create request:
	// either CreateSuccess or CreateFailure.
	CreateResult interface {
		isCreateResult()
	}

	CreateSuccess struct {
		Owner types.Address
		ID    uint64
	}

	CreateFailure struct {
		Owner types.Address
		Code  ErrorCode
	}

	// RecoveryResult is the tagged per-item outcome of a recovery request:
	// either RecoverySuccess or RecoveryFailure.
	RecoveryResult interface {
		isRecoveryResult()
	}

	RecoverySuccess struct {
		OldOwner types.Address
		NewOwner types.Address
		ID       uint64
	}

	RecoveryFailure struct {
		OldOwner types.Address
		NewOwner types.Address
		Code     ErrorCode
	}

	// BatchCreateResult summarizes one batch create call. Results match
	// the request order 1:1.
	BatchCreateResult struct {
		TotalRequests uint32
		Successful    uint32
		Failed        uint32
		Results       []CreateResult
	}

	// BatchRecoveryResult summarizes one batch recovery call.
	BatchRecoveryResult struct {
		TotalRequests uint32
		Successful    uint32
		Failed        uint32
		Results       []RecoveryResult
	}

	// Stats are the engine's aggregate counters. Recovery batches bump
	// TotalBatches but never TotalWalletsCreated.
	Stats struct {
		_                   struct{} `cbor:",toarray"`
		TotalBatches        uint64
		TotalWalletsCreated uint64
	}
)

func (CreateSuccess) isCreateResult()     {}
func (CreateFailure) isCreateResult()     {}
func (RecoverySuccess) isRecoveryResult() {}
func (RecoveryFailure) isRecoveryResult() {}
