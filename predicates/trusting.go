package predicates

// TrustingAuthorizer accepts every claimed owner address without checking
// the signature. The test environment equivalent of mocking all auths,
// never meant for production hosts.
type TrustingAuthorizer struct{}

func NewTrustingAuthorizer() TrustingAuthorizer {
	return TrustingAuthorizer{}
}

func (a TrustingAuthorizer) SignerSet(_ []byte, proofs []AuthProof) (SignerSet, error) {
	signers := make(SignerSet, len(proofs))
	for _, proof := range proofs {
		signers.add(proof.Owner)
	}
	return signers, nil
}
