package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/batchledger/batchledger/event"
	"github.com/batchledger/batchledger/keyvaluedb"
	"github.com/batchledger/batchledger/logger"
	"github.com/batchledger/batchledger/observability"
	"github.com/batchledger/batchledger/predicates"
)

type (
	// Host is the execution environment the contract engines run in. It
	// serializes calls, runs each call inside one storage transaction and
	// buffers the call's events - on success everything commits as one
	// unit, on fatal error nothing of the call is observable.
	Host struct {
		mu     sync.Mutex
		db     keyvaluedb.KeyValueDB
		auth   predicates.Authorizer
		log    *slog.Logger
		budget uint64

		seq      uint64
		events   []event.Event
		handlers []event.Handler

		callCnt metric.Int64Counter
	}

	Option func(*Host)
)

// ErrBudgetExceeded is returned when a call runs past the host's per-call
// operation budget. The whole call aborts with no partial effects.
var ErrBudgetExceeded = errors.New("call exceeded the host operation budget")

const defaultBudget = 100_000

// New creates an execution host on top of the given storage.
func New(db keyvaluedb.KeyValueDB, auth predicates.Authorizer, observe observability.Observability, opts ...Option) (*Host, error) {
	if db == nil {
		return nil, errors.New("storage is nil")
	}
	if auth == nil {
		return nil, errors.New("authorizer is nil")
	}
	h := &Host{
		db:     db,
		auth:   auth,
		log:    observe.Logger(),
		budget: defaultBudget,
	}
	for _, opt := range opts {
		opt(h)
	}

	var err error
	if h.callCnt, err = observe.Meter("host").Int64Counter("calls",
		metric.WithDescription("Number of contract calls executed"),
	); err != nil {
		return nil, fmt.Errorf("creating call counter: %w", err)
	}
	return h, nil
}

// WithBudget overrides the per-call operation budget.
func WithBudget(ops uint64) Option {
	return func(h *Host) { h.budget = ops }
}

// WithEventHandler registers a consumer for committed events.
func WithEventHandler(handler event.Handler) Option {
	return func(h *Host) { h.handlers = append(h.handlers, handler) }
}

/*
Execute runs one contract call. The payload is the canonical byte encoding
of the call the auth proofs are expected to cover. The call function either
runs to completion - committing every state mutation and event it produced
as one unit - or returns an error, in which case the host discards all of
them.
*/
func (h *Host) Execute(ctx context.Context, payload []byte, proofs []predicates.AuthProof, call func(c *CallContext) error) (rErr error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	defer func() {
		h.callCnt.Add(ctx, 1, metric.WithAttributes(observability.ErrStatus(rErr)))
	}()

	signers, err := h.auth.SignerSet(payload, proofs)
	if err != nil {
		return fmt.Errorf("call authorization: %w", err)
	}

	tx, err := h.db.StartTx()
	if err != nil {
		return fmt.Errorf("starting call transaction: %w", err)
	}

	c := &CallContext{
		tx:      tx,
		signers: signers,
		seq:     h.seq + 1,
		budget:  h.budget,
	}
	defer func() {
		if rErr != nil {
			if err := tx.Rollback(); err != nil {
				h.log.Error("rolling back call transaction", logger.Error(err), logger.Batch(c.seq))
			}
			return
		}
		if err := tx.Commit(); err != nil {
			rErr = fmt.Errorf("committing call transaction: %w", err)
			return
		}
		h.seq = c.seq
		h.events = append(h.events, c.events...)
		for i := range c.events {
			for _, handler := range h.handlers {
				handler(&c.events[i])
			}
		}
	}()

	if rErr = call(c); rErr != nil {
		h.log.Debug("call aborted", logger.Error(rErr), logger.Batch(c.seq))
	}
	return rErr
}

// View runs a read-only function against the committed state. Reads never
// observe an in-flight call.
func (h *Host) View(fn func(r keyvaluedb.Reader) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.db)
}

// Events returns a copy of the committed event log.
func (h *Host) Events() []event.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	events := make([]event.Event, len(h.events))
	copy(events, h.events)
	return events
}
