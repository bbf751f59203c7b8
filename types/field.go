package types

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-iden3-crypto/utils"
)

// ErrNotInField is returned when a value outside the BN254 scalar field tries
// to enter the system. It always signals an encoding bug upstream: values are
// rejected, never reduced silently, since a reduced value would still hash
// but produce roots the external verifier rejects.
var ErrNotInField = fmt.Errorf("value is not a canonical field element")

// FieldElementLen is the size of the canonical fixed-width big-endian
// encoding, used for database keys and verifier arguments.
const FieldElementLen = 32

// FieldElement is a validated scalar of the BN254 field. Every leaf, hash
// and root value in the registry is a FieldElement. The zero value is the
// field's zero. Construct non-zero values through NewFieldElement,
// FieldElementFromBytes or ParseFieldElement so that the range invariant
// holds everywhere else.
type FieldElement struct {
	v big.Int
}

// NewFieldElement validates v and wraps it. Values that are negative or not
// strictly below the field modulus fail with ErrNotInField.
func NewFieldElement(v *big.Int) (*FieldElement, error) {
	if v == nil || v.Sign() < 0 || !utils.CheckBigIntInField(v) {
		return nil, fmt.Errorf("%w: %v", ErrNotInField, v)
	}
	fe := &FieldElement{}
	fe.v.Set(v)
	return fe, nil
}

// FieldElementFromBytes interprets b as a big-endian unsigned integer.
// b must not be longer than FieldElementLen.
func FieldElementFromBytes(b []byte) (*FieldElement, error) {
	if len(b) > FieldElementLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotInField, len(b))
	}
	return NewFieldElement(new(big.Int).SetBytes(b))
}

// ParseFieldElement parses a decimal or 0x-prefixed hexadecimal string.
func ParseFieldElement(s string) (*FieldElement, error) {
	v := new(big.Int)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		if _, ok := v.SetString(s[2:], 16); !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotInField, s)
		}
	} else if _, ok := v.SetString(s, 10); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotInField, s)
	}
	return NewFieldElement(v)
}

// FieldZero returns the zero element.
func FieldZero() *FieldElement {
	return &FieldElement{}
}

// FieldModulus returns a copy of the BN254 scalar field modulus.
func FieldModulus() *big.Int {
	return new(big.Int).Set(constants.Q)
}

// BigInt returns a copy of the underlying integer.
func (fe *FieldElement) BigInt() *big.Int {
	return new(big.Int).Set(&fe.v)
}

// Bytes returns the canonical fixed-width big-endian encoding.
func (fe *FieldElement) Bytes() []byte {
	b := make([]byte, FieldElementLen)
	fe.v.FillBytes(b)
	return b
}

// Equal reports whether both elements hold the same value.
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if other == nil {
		return false
	}
	return fe.v.Cmp(&other.v) == 0
}

// IsZero reports whether the element is the field's zero.
func (fe *FieldElement) IsZero() bool {
	return fe.v.Sign() == 0
}

func (fe *FieldElement) String() string {
	return fe.v.String()
}

// MarshalText encodes the element as its decimal string.
func (fe *FieldElement) MarshalText() ([]byte, error) {
	return []byte(fe.v.String()), nil
}

// UnmarshalText parses and validates a decimal or hexadecimal string.
func (fe *FieldElement) UnmarshalText(b []byte) error {
	parsed, err := ParseFieldElement(string(b))
	if err != nil {
		return err
	}
	fe.v.Set(&parsed.v)
	return nil
}

// MarshalJSON encodes the element as a JSON string, keeping full precision
// for callers that cannot represent 254-bit integers natively.
func (fe *FieldElement) MarshalJSON() ([]byte, error) {
	return []byte(`"` + fe.v.String() + `"`), nil
}

// UnmarshalJSON parses a JSON string or bare number.
func (fe *FieldElement) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return fe.UnmarshalText([]byte(s))
}

// MarshalCBOR encodes the canonical byte representation.
func (fe *FieldElement) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(fe.Bytes())
}

// UnmarshalCBOR decodes and validates the canonical byte representation.
func (fe *FieldElement) UnmarshalCBOR(b []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := FieldElementFromBytes(raw)
	if err != nil {
		return err
	}
	fe.v.Set(&parsed.v)
	return nil
}
