package host

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/batchledger/batchledger/types"
)

type callPayload struct {
	_      struct{} `cbor:",toarray"`
	Engine string
	Method string
	Caller types.Address
}

// CallPayload returns the canonical byte encoding of a call the auth
// proofs must cover. Both the engines and the signing clients derive it
// from the same fields, so a proof is bound to one entry point and caller.
func CallPayload(engine, method string, caller types.Address) []byte {
	// the struct contains no values cbor can fail on
	b, _ := cbor.Marshal(callPayload{Engine: engine, Method: method, Caller: caller})
	return b
}
