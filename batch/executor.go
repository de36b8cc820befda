package batch

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/batchledger/batchledger/event"
	"github.com/batchledger/batchledger/host"
)

// ErrEmptyBatch rejects a batch call with no requests. Unlike item-level
// failures this aborts the whole call.
var ErrEmptyBatch = errors.New("batch contains no requests")

type (
	// Outcome is one item's classified result: the engine specific tagged
	// result value, whether the item succeeded and - for value moving
	// operations - the effected amount.
	Outcome[O any] struct {
		Result   O
		Effected *big.Int
		OK       bool
	}

	// ItemHandler processes a single request. It returns an error only for
	// faults that must abort the whole call (storage or host failures);
	// everything item-specific is classified into the outcome.
	ItemHandler[R, O any] func(c *host.CallContext, req R) (Outcome[O], error)

	// Summary is the aggregate of one batch run.
	Summary struct {
		TotalRequests uint32
		Successful    uint32
		Failed        uint32
		TotalEffected *big.Int
	}
)

/*
Run executes one batch: iterates the requests in order, delegates each to
the handler, records the outcome and emits a per-item event immediately
after classification. One bad item never aborts its siblings. The returned
results match the request order 1:1 and always satisfy

	TotalRequests == Successful + Failed == len(results)
	TotalEffected == sum of effected amounts over successful outcomes
*/
func Run[R, O any](c *host.CallContext, engine string, requests []R, itemEvent event.Type, handle ItemHandler[R, O]) ([]O, Summary, error) {
	if len(requests) == 0 {
		return nil, Summary{}, ErrEmptyBatch
	}

	c.EmitEvent(event.BatchStarted, event.BatchInfo{Engine: engine, Requests: len(requests)})

	summary := Summary{
		TotalRequests: uint32(len(requests)),
		TotalEffected: new(big.Int),
	}
	results := make([]O, 0, len(requests))
	for i, req := range requests {
		outcome, err := handle(c, req)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("request %d: %w", i, err)
		}
		if outcome.OK {
			summary.Successful++
			if outcome.Effected != nil {
				summary.TotalEffected.Add(summary.TotalEffected, outcome.Effected)
			}
		} else {
			summary.Failed++
		}
		results = append(results, outcome.Result)
		c.EmitEvent(itemEvent, outcome.Result)
	}

	c.EmitEvent(event.BatchCompleted, summary)
	return results, summary, nil
}
