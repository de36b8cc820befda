package predicates

import (
	"github.com/batchledger/batchledger/types"
)

type (
	// AuthProof claims control over one address for the duration of one
	// call. How the claim is verified is up to the Authorizer.
	AuthProof struct {
		_         struct{} `cbor:",toarray"`
		Owner     types.Address
		PubKey    []byte
		Signature []byte
	}

	// Authorizer turns the proofs attached to a call into the set of
	// proven signer addresses. A proof that does not verify is a hard
	// error, it aborts the whole call rather than being dropped from the
	// set.
	Authorizer interface {
		SignerSet(payload []byte, proofs []AuthProof) (SignerSet, error)
	}

	// SignerSet is the set of addresses proven for the current call.
	SignerSet map[string]struct{}
)

func (s SignerSet) Contains(addr types.Address) bool {
	_, ok := s[string(addr)]
	return ok
}

func (s SignerSet) add(addr types.Address) {
	s[string(addr)] = struct{}{}
}
