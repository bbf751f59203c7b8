package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// CommitmentsEndpoint is the endpoint for registering a new commitment
	// and listing the insertion event log
	CommitmentsEndpoint = "/commitments"
	// CommitmentPathEndpoint is the endpoint to get the membership path of a
	// registered commitment
	LeafIndexURLParam      = "index"
	CommitmentPathEndpoint = "/commitments/{" + LeafIndexURLParam + "}/path"
	// RootEndpoint is the endpoint to get the current accumulator root
	RootEndpoint = "/root"
	// RootKnownEndpoint is the endpoint to check a root against the recent
	// history window
	RootURLParam      = "root"
	RootKnownEndpoint = "/roots/{" + RootURLParam + "}"
	// NullifiersEndpoint is the endpoint for spending a nullifier
	NullifiersEndpoint = "/nullifiers"
	// NullifierEndpoint is the endpoint to check whether a nullifier hash
	// has been spent
	NullifierURLParam = "nullifierHash"
	NullifierEndpoint = "/nullifiers/{" + NullifierURLParam + "}"
)
