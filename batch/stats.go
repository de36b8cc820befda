package batch

import (
	"fmt"

	"github.com/batchledger/batchledger/host"
	"github.com/batchledger/batchledger/keyvaluedb"
)

// StatsStore persists one engine's aggregate statistics record. The
// counters are monotone: the engines only ever fold batch totals into
// them, exactly once per batch, after the item loop.
type StatsStore[T any] struct {
	key []byte
}

func NewStatsStore[T any](namespace string) StatsStore[T] {
	return StatsStore[T]{key: []byte(namespace + "/stats")}
}

// Load returns the current statistics, the zero value if none are stored
// yet.
func (s StatsStore[T]) Load(r keyvaluedb.Reader) (T, error) {
	var stats T
	if _, err := r.Read(s.key, &stats); err != nil {
		return stats, fmt.Errorf("reading stats record: %w", err)
	}
	return stats, nil
}

// LoadTx reads the statistics inside a call.
func (s StatsStore[T]) LoadTx(c *host.CallContext) (T, error) {
	var stats T
	if _, err := c.Read(s.key, &stats); err != nil {
		return stats, fmt.Errorf("reading stats record: %w", err)
	}
	return stats, nil
}

// Store replaces the statistics record.
func (s StatsStore[T]) Store(c *host.CallContext, stats T) error {
	if err := c.Write(s.key, &stats); err != nil {
		return fmt.Errorf("persisting stats record: %w", err)
	}
	return nil
}
