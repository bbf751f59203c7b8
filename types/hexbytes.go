package types

import (
	"encoding/hex"
	"fmt"
)

// HexBytes is a byte slice that marshals as a 0x-prefixed, even-length
// hexadecimal string. Used for identifiers and canonical encodings crossing
// the HTTP boundary.
type HexBytes []byte

func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid hex string %q", data)
	}
	return b.FromString(string(data[1 : len(data)-1]))
}

// HexStringToHexBytes decodes a hex string with or without the 0x prefix.
// Invalid input yields nil.
func HexStringToHexBytes(s string) HexBytes {
	var b HexBytes
	if err := b.FromString(s); err != nil {
		return nil
	}
	return b
}

// FromString decodes a hex string with or without the 0x prefix. An odd
// number of digits is left-padded with a zero.
func (b *HexBytes) FromString(s string) error {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
