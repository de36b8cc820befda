package types

import "math/big"

// Amounts are signed 128-bit integers on the wire. Go has no native 128-bit
// integer type so amounts are carried as big.Int values, range checked at
// the validation boundary.
var (
	maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// NewAmount returns the given value as an amount.
func NewAmount(v int64) *big.Int {
	return big.NewInt(v)
}

// AmountInRange reports whether v fits into a signed 128-bit integer.
func AmountInRange(v *big.Int) bool {
	return v != nil && v.Cmp(minAmount) >= 0 && v.Cmp(maxAmount) <= 0
}

// ValidAmount reports whether v is a positive amount within the signed
// 128-bit range. Requests carrying anything else are rejected with the
// invalid amount code before the asset ledger is touched.
func ValidAmount(v *big.Int) bool {
	return v != nil && v.Sign() > 0 && AmountInRange(v)
}
