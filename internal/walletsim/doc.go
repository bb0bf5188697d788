// Package walletsim plays the wallet and issuer side of an mDL presentation
// for tests and demos. It issues a signed DeviceResponse under a throwaway
// P-256 document signer and seals it to a verifier's encryption info with an
// independent HPKE implementation.
//
// It encodes everything itself and shares no code with the verifier's
// parser, so round trips exercise both sides of the wire format.
package walletsim
