package mimcsponge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iden3/go-iden3-crypto/constants"
)

const (
	// constantsSeed is the ASCII seed the round constants are derived from.
	// Changing it changes every digest the circuit expects.
	constantsSeed = "mimcsponge"
	// nRounds is the number of Feistel rounds of the permutation.
	nRounds = 220
)

// q is the BN254 scalar field modulus. All permutation arithmetic is mod q.
var q = constants.Q

// cts holds the round constants: a keccak256 chain over the seed, reduced
// into the field, with the first and last constants pinned to zero.
var cts = generateConstants()

func generateConstants() []*big.Int {
	out := make([]*big.Int, nRounds)
	out[0] = big.NewInt(0)
	c := crypto.Keccak256([]byte(constantsSeed))
	for i := 1; i < nRounds; i++ {
		c = crypto.Keccak256(c)
		out[i] = new(big.Int).Mod(new(big.Int).SetBytes(c), q)
	}
	out[nRounds-1] = big.NewInt(0)
	return out
}

// Constants returns a copy of the round constants in application order. The
// in-circuit gadget consumes the same list, which is what keeps native and
// proved hashes in agreement.
func Constants() []*big.Int {
	out := make([]*big.Int, len(cts))
	for i, c := range cts {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

// NumRounds returns the number of Feistel rounds of the permutation.
func NumRounds() int {
	return nRounds
}
