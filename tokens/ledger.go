package tokens

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/batchledger/batchledger/host"
	"github.com/batchledger/batchledger/keyvaluedb"
	"github.com/batchledger/batchledger/types"
)

type (
	// AssetID identifies one asset (token contract) on the ledger.
	AssetID []byte

	// Ledger is the asset ledger collaborator of the transfer engine:
	// balances live outside the engines, the engines only observe
	// success or a typed rejection.
	Ledger interface {
		// Transfer moves amount of asset from one account to another.
		Transfer(c *host.CallContext, asset AssetID, from, to types.Address, amount *big.Int) error
		// Burn removes amount of asset from the account's balance.
		Burn(c *host.CallContext, asset AssetID, from types.Address, amount *big.Int) error
		// Mint adds amount of asset to the account, the issuer operation.
		Mint(c *host.CallContext, asset AssetID, to types.Address, amount *big.Int) error
		// SetFrozen flips the frozen flag of an account.
		SetFrozen(c *host.CallContext, asset AssetID, addr types.Address, frozen bool) error
		// BalanceOf returns the account's balance, zero for an unknown
		// account.
		BalanceOf(r keyvaluedb.Reader, asset AssetID, addr types.Address) (*big.Int, error)
	}

	// StateLedger keeps asset accounts in the contract's key-value store.
	StateLedger struct {
		prefix string
	}

	account struct {
		_       struct{} `cbor:",toarray"`
		Balance *big.Int
		Frozen  bool
	}
)

// Typed rejections. The batch engines downgrade these to item-level
// failures, anything else propagates as a call-aborting fault.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountFrozen     = errors.New("account is frozen")
)

// IsRejection reports whether the error is a ledger-level rejection of the
// operation rather than a storage fault.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrAccountFrozen)
}

func NewStateLedger() *StateLedger {
	return &StateLedger{prefix: "tokens"}
}

func (l *StateLedger) Transfer(c *host.CallContext, asset AssetID, from, to types.Address, amount *big.Int) error {
	sender, err := l.load(c, asset, from)
	if err != nil {
		return err
	}
	if sender.Frozen {
		return fmt.Errorf("account %s: %w", from, ErrAccountFrozen)
	}
	if sender.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("account %s: %w", from, ErrInsufficientFunds)
	}
	receiver, err := l.load(c, asset, to)
	if err != nil {
		return err
	}
	if receiver.Frozen {
		return fmt.Errorf("account %s: %w", to, ErrAccountFrozen)
	}
	sender.Balance.Sub(sender.Balance, amount)
	receiver.Balance.Add(receiver.Balance, amount)
	if err := l.store(c, asset, from, sender); err != nil {
		return err
	}
	return l.store(c, asset, to, receiver)
}

func (l *StateLedger) Burn(c *host.CallContext, asset AssetID, from types.Address, amount *big.Int) error {
	acct, err := l.load(c, asset, from)
	if err != nil {
		return err
	}
	if acct.Frozen {
		return fmt.Errorf("account %s: %w", from, ErrAccountFrozen)
	}
	if acct.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("account %s: %w", from, ErrInsufficientFunds)
	}
	acct.Balance.Sub(acct.Balance, amount)
	return l.store(c, asset, from, acct)
}

func (l *StateLedger) Mint(c *host.CallContext, asset AssetID, to types.Address, amount *big.Int) error {
	acct, err := l.load(c, asset, to)
	if err != nil {
		return err
	}
	acct.Balance.Add(acct.Balance, amount)
	return l.store(c, asset, to, acct)
}

func (l *StateLedger) SetFrozen(c *host.CallContext, asset AssetID, addr types.Address, frozen bool) error {
	acct, err := l.load(c, asset, addr)
	if err != nil {
		return err
	}
	acct.Frozen = frozen
	return l.store(c, asset, addr, acct)
}

func (l *StateLedger) BalanceOf(r keyvaluedb.Reader, asset AssetID, addr types.Address) (*big.Int, error) {
	acct := account{Balance: new(big.Int)}
	if _, err := r.Read(l.key(asset, addr), &acct); err != nil {
		return nil, fmt.Errorf("reading account record: %w", err)
	}
	return acct.Balance, nil
}

func (l *StateLedger) load(c *host.CallContext, asset AssetID, addr types.Address) (account, error) {
	acct := account{Balance: new(big.Int)}
	if _, err := c.Read(l.key(asset, addr), &acct); err != nil {
		return acct, fmt.Errorf("reading account record: %w", err)
	}
	return acct, nil
}

func (l *StateLedger) store(c *host.CallContext, asset AssetID, addr types.Address, acct account) error {
	if err := c.Write(l.key(asset, addr), &acct); err != nil {
		return fmt.Errorf("persisting account record: %w", err)
	}
	return nil
}

func (l *StateLedger) key(asset AssetID, addr types.Address) []byte {
	key := make([]byte, 0, len(l.prefix)+len(asset)+len(addr)+2)
	key = append(key, l.prefix...)
	key = append(key, '/')
	key = append(key, asset...)
	key = append(key, '/')
	return append(key, addr...)
}
