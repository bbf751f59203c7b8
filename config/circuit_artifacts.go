package config

const (
	// Membership circuit artifacts: witness calculator, proving key and
	// verification key of the external circom circuit.
	//
	// Development placeholders: the membership circuit has not been released
	// yet, so these URLs do not resolve and the hashes match no published
	// file. Point them at the released artifacts and their sha256 sums
	// before enabling artifact downloads.
	MembershipCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/dev/membership.wasm"
	MembershipCircuitHash         = "4c6f1dd1e05f4b01c9cf375edcbd538c76a0cfa37a9e29db5b69b9f4e9c21f2a"
	MembershipProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/dev/membership_pkey.zkey"
	MembershipProvingKeyHash      = "b2b07b8a4adadf9b0534c654a75eea7b84b1b9e2f2ac8f6c7deff95b29f9fe11"
	MembershipVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/circuits/dev/membership_vkey.json"
	MembershipVerificationKeyHash = "9c2f38cb4e62e3ea2f83cd671ef4f92ab1c9f68b9a7c15a6a03de14aab06d710"
)
