package types

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestFieldElementRange(t *testing.T) {
	c := qt.New(t)

	fe, err := NewFieldElement(big.NewInt(42))
	c.Assert(err, qt.IsNil)
	c.Assert(fe.BigInt().Int64(), qt.Equals, int64(42))

	// the modulus itself is not a canonical element
	_, err = NewFieldElement(FieldModulus())
	c.Assert(err, qt.ErrorIs, ErrNotInField)

	over := new(big.Int).Add(FieldModulus(), big.NewInt(1))
	_, err = NewFieldElement(over)
	c.Assert(err, qt.ErrorIs, ErrNotInField)

	_, err = NewFieldElement(big.NewInt(-1))
	c.Assert(err, qt.ErrorIs, ErrNotInField)

	// largest canonical value
	max := new(big.Int).Sub(FieldModulus(), big.NewInt(1))
	fe, err = NewFieldElement(max)
	c.Assert(err, qt.IsNil)
	c.Assert(fe.BigInt().Cmp(max), qt.Equals, 0)
}

func TestFieldElementBytesRoundTrip(t *testing.T) {
	c := qt.New(t)

	fe, err := ParseFieldElement(ZeroLeafSeed)
	c.Assert(err, qt.IsNil)

	b := fe.Bytes()
	c.Assert(b, qt.HasLen, FieldElementLen)

	back, err := FieldElementFromBytes(b)
	c.Assert(err, qt.IsNil)
	c.Assert(back.Equal(fe), qt.IsTrue)

	_, err = FieldElementFromBytes(make([]byte, FieldElementLen+1))
	c.Assert(err, qt.ErrorIs, ErrNotInField)
}

func TestFieldElementParse(t *testing.T) {
	c := qt.New(t)

	dec, err := ParseFieldElement("255")
	c.Assert(err, qt.IsNil)
	hex, err := ParseFieldElement("0xff")
	c.Assert(err, qt.IsNil)
	c.Assert(dec.Equal(hex), qt.IsTrue)

	_, err = ParseFieldElement("not a number")
	c.Assert(err, qt.ErrorIs, ErrNotInField)
}

func TestFieldElementMarshalJSONAndCBOR(t *testing.T) {
	c := qt.New(t)

	fe, err := NewFieldElement(big.NewInt(1234567890))
	c.Assert(err, qt.IsNil)

	jb, err := json.Marshal(fe)
	c.Assert(err, qt.IsNil)
	c.Assert(string(jb), qt.Equals, `"1234567890"`)

	var fromJSON FieldElement
	c.Assert(json.Unmarshal(jb, &fromJSON), qt.IsNil)
	c.Assert(fromJSON.Equal(fe), qt.IsTrue)

	cb, err := cbor.Marshal(fe)
	c.Assert(err, qt.IsNil)
	var fromCBOR FieldElement
	c.Assert(cbor.Unmarshal(cb, &fromCBOR), qt.IsNil)
	c.Assert(fromCBOR.Equal(fe), qt.IsTrue)
}
