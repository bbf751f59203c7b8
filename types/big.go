package types

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt wraps big.Int to marshal as a decimal string in JSON and CBOR,
// which is what the circom witness calculator and most JS tooling expect.
// Unlike FieldElement it carries no range guarantee.
type BigInt big.Int

// MathBigInt converts b back to a standard big.Int pointer.
func (b *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(b)
}

func (b *BigInt) String() string {
	return b.MathBigInt().String()
}

// SetString parses a base-10 number into b.
func (b *BigInt) SetString(s string) (*BigInt, error) {
	if _, ok := b.MathBigInt().SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid decimal number %q", s)
	}
	return b, nil
}

func (b *BigInt) MarshalText() ([]byte, error) {
	return b.MathBigInt().MarshalText()
}

func (b *BigInt) UnmarshalText(data []byte) error {
	return b.MathBigInt().UnmarshalText(data)
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return b.UnmarshalText([]byte(s))
}

func (b *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(b.String())
}

func (b *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	return b.UnmarshalText([]byte(s))
}
