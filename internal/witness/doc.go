// Package witness assembles the fixed-width inputs and public outputs of the
// age and jurisdiction proof circuit from a parsed credential.
//
// Every buffer has a width fixed by the circuit. Field elements live in the
// BN254 scalar field, and the issuer root, nullifier and address binding use
// a Poseidon2 sponge that mirrors the circuit's own computation.
package witness
