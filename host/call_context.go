package host

import (
	"github.com/batchledger/batchledger/event"
	"github.com/batchledger/batchledger/keyvaluedb"
	"github.com/batchledger/batchledger/predicates"
	"github.com/batchledger/batchledger/types"
)

// CallContext is the view of the host a contract call runs against: the
// call's storage transaction, its authenticated signer set and its event
// buffer. Every storage operation counts against the call's budget.
type CallContext struct {
	tx      keyvaluedb.DBTransaction
	signers predicates.SignerSet
	events  []event.Event
	seq     uint64
	budget  uint64
	ops     uint64
}

func (c *CallContext) Read(key []byte, v any) (bool, error) {
	if err := c.step(); err != nil {
		return false, err
	}
	return c.tx.Read(key, v)
}

func (c *CallContext) Write(key []byte, v any) error {
	if err := c.step(); err != nil {
		return err
	}
	return c.tx.Write(key, v)
}

func (c *CallContext) Delete(key []byte) error {
	if err := c.step(); err != nil {
		return err
	}
	return c.tx.Delete(key)
}

// Authorized reports whether the given identity is in the call's proven
// signer set.
func (c *CallContext) Authorized(addr types.Address) bool {
	return c.signers.Contains(addr)
}

// EmitEvent appends an event to the call's buffer. The buffer becomes part
// of the host event log only if the call commits.
func (c *CallContext) EmitEvent(t event.Type, content any) {
	c.events = append(c.events, event.Event{Type: t, Batch: c.seq, Content: content})
}

// Batch returns the call-scoped batch sequence number.
func (c *CallContext) Batch() uint64 {
	return c.seq
}

func (c *CallContext) step() error {
	c.ops++
	if c.ops > c.budget {
		return ErrBudgetExceeded
	}
	return nil
}
