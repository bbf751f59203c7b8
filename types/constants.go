package types

const (
	// CommitmentTreeDepth is the number of levels of the commitment
	// accumulator. With depth 20 the registry holds up to 2^20 commitments.
	CommitmentTreeDepth = 20
	// RootHistorySize is the number of recent roots kept by the root history
	// ring. A proof generated against an older root must be regenerated.
	RootHistorySize = 30
)

// ZeroLeafSeed is the public constant placed at every empty leaf position of
// the commitment accumulator, the "commitment of nothing". Together with the
// tree depth and the root history size it is part of the proving scheme:
// changing any of them invalidates every stored root and proof and requires
// an explicit version bump.
const ZeroLeafSeed = "21663839004416932945382355908790599225266501822907911457504978515578255421292"
