package batch

import (
	"fmt"

	"github.com/batchledger/batchledger/host"
)

// SequenceAllocator issues strictly increasing uint64 identifiers,
// persisted across calls. Identifiers are never reused, not even after the
// entity they were assigned to is removed.
type SequenceAllocator struct {
	key []byte
}

func NewSequenceAllocator(namespace string) *SequenceAllocator {
	return &SequenceAllocator{key: []byte(namespace + "/id-sequence")}
}

// NextID returns last issued id + 1 and persists it before returning.
func (s *SequenceAllocator) NextID(c *host.CallContext) (uint64, error) {
	var last uint64
	if _, err := c.Read(s.key, &last); err != nil {
		return 0, fmt.Errorf("reading id sequence: %w", err)
	}
	next := last + 1
	if err := c.Write(s.key, next); err != nil {
		return 0, fmt.Errorf("persisting id sequence: %w", err)
	}
	return next, nil
}
