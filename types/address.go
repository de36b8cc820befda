package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AddressLength is the length of an address in bytes (SHA-256 of the
// owner's public key).
const AddressLength = 32

// Address is an opaque principal identity. The engines never inspect its
// structure, it is only compared for equality and used as a storage key.
type Address []byte

// NewAddressFromPubKey derives the address of the given public key.
func NewAddressFromPubKey(pubKey []byte) Address {
	h := sha256.Sum256(pubKey)
	return h[:]
}

// ParseAddress decodes a hex encoded address.
func ParseAddress(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(b) != AddressLength {
		return nil, fmt.Errorf("invalid address length: %d bytes, expected %d", len(b), AddressLength)
	}
	return b, nil
}

func (a Address) Eq(b Address) bool {
	return bytes.Equal(a, b)
}

func (a Address) String() string {
	return hex.EncodeToString(a)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(src []byte) error {
	res, err := ParseAddress(string(src))
	if err != nil {
		return err
	}
	*a = res
	return nil
}
