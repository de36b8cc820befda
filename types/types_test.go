package types

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	t.Run("derived from public key", func(t *testing.T) {
		addr := NewAddressFromPubKey([]byte("some public key"))
		require.Len(t, []byte(addr), AddressLength)
		require.True(t, addr.Eq(NewAddressFromPubKey([]byte("some public key"))))
		require.False(t, addr.Eq(NewAddressFromPubKey([]byte("another key"))))
	})

	t.Run("hex roundtrip", func(t *testing.T) {
		addr := NewAddressFromPubKey([]byte("key"))
		parsed, err := ParseAddress(addr.String())
		require.NoError(t, err)
		require.True(t, addr.Eq(parsed))
	})

	t.Run("parse errors", func(t *testing.T) {
		_, err := ParseAddress("zz")
		require.ErrorContains(t, err, "invalid address")

		_, err = ParseAddress("abcd")
		require.ErrorContains(t, err, "invalid address length")
	})

	t.Run("text marshaling", func(t *testing.T) {
		addr := NewAddressFromPubKey([]byte("key"))
		data, err := json.Marshal(addr)
		require.NoError(t, err)
		require.Equal(t, `"`+addr.String()+`"`, string(data))

		var decoded Address
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.True(t, addr.Eq(decoded))
	})
}

func TestValidAmount(t *testing.T) {
	i128Max, ok := new(big.Int).SetString(strings.Repeat("f", 31)+"f", 16)
	require.True(t, ok)
	i128Max.Rsh(i128Max, 1) // 2^127 - 1

	tests := []struct {
		name   string
		amount *big.Int
		valid  bool
	}{
		{"nil", nil, false},
		{"zero", big.NewInt(0), false},
		{"negative", big.NewInt(-1), false},
		{"one", big.NewInt(1), true},
		{"i128 max", i128Max, true},
		{"above i128 max", new(big.Int).Add(i128Max, big.NewInt(1)), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.valid, ValidAmount(tc.amount))
		})
	}
}

func TestAmountInRange(t *testing.T) {
	min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	require.True(t, AmountInRange(min))
	require.False(t, AmountInRange(new(big.Int).Sub(min, big.NewInt(1))))
	require.True(t, AmountInRange(NewAmount(0)))
	require.False(t, AmountInRange(nil))
}
