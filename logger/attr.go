package logger

import (
	"log/slog"

	"github.com/batchledger/batchledger/types"
)

/*
Log attribute key values. Generally shouldn't be used directly, use
appropriate "attribute constructor function" instead.
*/
const (
	ErrorKey  = "err"
	BatchKey  = "batch"
	EngineKey = "engine"
	AddrKey   = "addr"
	DataKey   = "data"
)

// Error adds error attribute.
func Error(err error) slog.Attr {
	return slog.Any(ErrorKey, err)
}

// Batch adds the call-scoped batch sequence number.
func Batch(seq uint64) slog.Attr {
	return slog.Uint64(BatchKey, seq)
}

// Engine adds the engine name field.
func Engine(name string) slog.Attr {
	return slog.String(EngineKey, name)
}

// Addr adds an address field.
func Addr(a types.Address) slog.Attr {
	return slog.String(AddrKey, a.String())
}

// Data adds an arbitrary data field, meant for debug logging.
func Data(v any) slog.Attr {
	return slog.Any(DataKey, v)
}
