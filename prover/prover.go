package prover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	snarkprover "github.com/iden3/go-rapidsnark/prover"
	snarktypes "github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/witness"

	"github.com/vocdoni/anonvote/log"
	"github.com/vocdoni/anonvote/types"
)

var (
	// ErrProverUnavailable is returned when the circuit artifacts needed to
	// generate a proof are not loaded.
	ErrProverUnavailable = errors.New("prover artifacts not available")
	// ErrProverTimeout is returned when proof generation exceeds the
	// configured deadline. It is distinct from a proving failure: the
	// witness may be perfectly valid.
	ErrProverTimeout = errors.New("proof generation timed out")
	// ErrInvalidPublicSignals is returned when the prover emits a public
	// signal list of the wrong shape. Signal order is a fixed contract, a
	// miscount means the proof cannot be interpreted at all.
	ErrInvalidPublicSignals = errors.New("unexpected public signal shape")
)

// DefaultProveTimeout bounds proof generation when the caller does not set
// an explicit timeout.
const DefaultProveTimeout = 3 * time.Minute

// Proof is a generated membership proof with its two public signals already
// decoded: the nullifier hash at position 0 and the accumulator root at
// position 1.
type Proof struct {
	ZKProof       *snarktypes.ZKProof
	NullifierHash *types.FieldElement
	Root          *types.FieldElement

	// raw prover output, kept verbatim for format conversions
	rawProof   string
	rawSignals string
}

// Prover generates membership proofs through the rapidsnark groth16 prover
// using the circom witness calculator. It is safe for concurrent use.
type Prover struct {
	wasm    []byte
	zkey    []byte
	vkey    []byte
	timeout time.Duration

	// overridable for tests
	calcWitness func(inputs []byte) ([]byte, error)
	prove       func(zkey, wtns []byte) (string, string, error)
}

// New creates a Prover over the circuit artifacts: the wasm witness
// calculator, the proving key and the verification key. A non-positive
// timeout selects DefaultProveTimeout.
func New(wasm, zkey, vkey []byte, timeout time.Duration) *Prover {
	if timeout <= 0 {
		timeout = DefaultProveTimeout
	}
	p := &Prover{
		wasm:    wasm,
		zkey:    zkey,
		vkey:    vkey,
		timeout: timeout,
	}
	p.calcWitness = p.defaultCalcWitness
	p.prove = snarkprover.Groth16ProverRaw
	return p
}

func (p *Prover) defaultCalcWitness(inputs []byte) ([]byte, error) {
	parsed, err := witness.ParseInputs(inputs)
	if err != nil {
		return nil, fmt.Errorf("parse witness inputs: %w", err)
	}
	calc, err := witness.NewCircom2WitnessCalculator(p.wasm, true)
	if err != nil {
		return nil, fmt.Errorf("instance witness calculator: %w", err)
	}
	return calc.CalculateWTNSBin(parsed, true)
}

// Prove generates a membership proof for the given inputs. The call is
// bounded by the configured timeout and by ctx; on expiry it returns
// ErrProverTimeout (or the context error) while the underlying prover
// goroutine is left to finish and be discarded.
func (p *Prover) Prove(ctx context.Context, inputs *ProverInputs) (*Proof, error) {
	if len(p.wasm) == 0 || len(p.zkey) == 0 {
		return nil, ErrProverUnavailable
	}
	encoded, err := inputs.Encode()
	if err != nil {
		return nil, err
	}

	type proveResult struct {
		proof   string
		signals string
		err     error
	}
	resCh := make(chan proveResult, 1)
	start := time.Now()
	go func() {
		wtns, err := p.calcWitness(encoded)
		if err != nil {
			resCh <- proveResult{err: fmt.Errorf("calculate witness: %w", err)}
			return
		}
		proof, signals, err := p.prove(p.zkey, wtns)
		resCh <- proveResult{proof: proof, signals: signals, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.timeout):
		return nil, fmt.Errorf("%w: after %s", ErrProverTimeout, p.timeout)
	case res := <-resCh:
		if res.err != nil {
			return nil, res.err
		}
		proof, err := decodeProof(res.proof, res.signals)
		if err != nil {
			return nil, err
		}
		log.Debugw("membership proof generated",
			"took", time.Since(start).String(),
			"nullifierHash", proof.NullifierHash.String(),
			"root", proof.Root.String())
		return proof, nil
	}
}

// decodeProof parses the raw prover output and validates the public signal
// contract: exactly two signals, nullifier hash first, root second.
func decodeProof(rawProof, rawSignals string) (*Proof, error) {
	proofData := &snarktypes.ProofData{}
	if err := json.Unmarshal([]byte(rawProof), proofData); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	var signals []string
	if err := json.Unmarshal([]byte(rawSignals), &signals); err != nil {
		return nil, fmt.Errorf("decode public signals: %w", err)
	}
	if len(signals) != 2 {
		return nil, fmt.Errorf("%w: got %d signals, want 2", ErrInvalidPublicSignals, len(signals))
	}
	nullifierHash, err := types.ParseFieldElement(signals[0])
	if err != nil {
		return nil, fmt.Errorf("%w: nullifier hash: %v", ErrInvalidPublicSignals, err)
	}
	root, err := types.ParseFieldElement(signals[1])
	if err != nil {
		return nil, fmt.Errorf("%w: root: %v", ErrInvalidPublicSignals, err)
	}
	return &Proof{
		ZKProof: &snarktypes.ZKProof{
			Proof:      proofData,
			PubSignals: signals,
		},
		NullifierHash: nullifierHash,
		Root:          root,
		rawProof:      rawProof,
		rawSignals:    rawSignals,
	}, nil
}
