package predicates

import (
	"fmt"

	"github.com/batchledger/batchledger/crypto"
	"github.com/batchledger/batchledger/types"
)

// P2pkhAuthorizer proves address control pay-to-public-key-hash style: the
// address must equal the hash of the proof's public key and the signature
// must verify over the call payload with that key.
type P2pkhAuthorizer struct{}

func NewP2pkhAuthorizer() P2pkhAuthorizer {
	return P2pkhAuthorizer{}
}

func (a P2pkhAuthorizer) SignerSet(payload []byte, proofs []AuthProof) (SignerSet, error) {
	signers := make(SignerSet, len(proofs))
	for i, proof := range proofs {
		if !types.NewAddressFromPubKey(proof.PubKey).Eq(proof.Owner) {
			return nil, fmt.Errorf("proof %d: public key hash does not match the owner address", i)
		}
		verifier, err := crypto.NewVerifierEd25519(proof.PubKey)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		if err := verifier.VerifyBytes(proof.Signature, payload); err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		signers.add(proof.Owner)
	}
	return signers, nil
}

// NewP2pkhProof signs the call payload and builds the proof for the
// signer's address.
func NewP2pkhProof(signer crypto.Signer, payload []byte) (AuthProof, error) {
	verifier, err := signer.Verifier()
	if err != nil {
		return AuthProof{}, err
	}
	pubKey, err := verifier.MarshalPublicKey()
	if err != nil {
		return AuthProof{}, err
	}
	sig, err := signer.SignBytes(payload)
	if err != nil {
		return AuthProof{}, err
	}
	return AuthProof{
		Owner:     types.NewAddressFromPubKey(pubKey),
		PubKey:    pubKey,
		Signature: sig,
	}, nil
}
