package witness

import (
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Sponge parameters shared with the circuit.
const (
	spongeWidth   = 3
	spongeRate    = 2
	fullRounds    = 8
	partialRounds = 56
)

var permutation = sync.OnceValue(func() *poseidon2.Permutation {
	return poseidon2.NewPermutation(spongeWidth, fullRounds, partialRounds)
})

var twoTo64 = func() fr.Element {
	var e fr.Element
	e.SetBigInt(new(big.Int).Lsh(big.NewInt(1), 64))
	return e
}()

// Hash runs the Poseidon2 sponge over inputs: the capacity element starts at
// len(inputs) * 2^64, each pair of inputs is added into the rate elements
// and permuted, and the first state element is squeezed.
func Hash(inputs ...fr.Element) fr.Element {
	var state [spongeWidth]fr.Element
	state[spongeRate].SetUint64(uint64(len(inputs)))
	state[spongeRate].Mul(&state[spongeRate], &twoTo64)

	perm := permutation()
	for i := 0; i < len(inputs) || i == 0; i += spongeRate {
		for j := 0; j < spongeRate && i+j < len(inputs); j++ {
			state[j].Add(&state[j], &inputs[i+j])
		}
		// The state slice always matches the permutation width.
		if err := perm.Permutation(state[:]); err != nil {
			panic(err)
		}
	}

	return state[0]
}

// IssuerRoot commits to the issuer's P-256 key coordinates.
func IssuerRoot(x, y []byte) (fr.Element, error) {
	px, err := PadLeft(x, CoordinateWidth)
	if err != nil {
		return fr.Element{}, err
	}
	py, err := PadLeft(y, CoordinateWidth)
	if err != nil {
		return fr.Element{}, err
	}
	return Hash(FieldFromBytes(px), FieldFromBytes(py)), nil
}

// Nullifier binds a hidden document number to an event and an issuer.
func Nullifier(documentNumber, eventID, issuerRoot fr.Element) fr.Element {
	return Hash(documentNumber, eventID, issuerRoot)
}

// Binding ties a nullifier to the address the proof is bound to.
func Binding(nullifier, boundAddress fr.Element) fr.Element {
	return Hash(nullifier, boundAddress)
}
