package solvency

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/holiman/uint256"
)

var (
	ErrTooManyEntries = errors.New("solvency: pool exceeds circuit entry slots")
	ErrNotSolvent     = errors.New("solvency: ratio does not hold, no proof possible")
)

// Attestor compiles the ratio circuit once and generates proofs against
// it. Compilation and trusted setup are expensive, so one Attestor is
// meant to be shared across attestations.
type Attestor struct {
	mu    sync.RWMutex
	slots int
	curve ecc.ID

	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// Attestation is a proof that a ledger with the given supply was backed at
// the minimum ratio. The collateral composition stays private.
type Attestation struct {
	Supply      uint64
	Proof       groth16.Proof
	Constraints int
}

// NewAttestor compiles the circuit with MaxEntries slots and runs trusted
// setup.
func NewAttestor() (*Attestor, error) {
	return NewAttestorWithSlots(MaxEntries)
}

// NewAttestorWithSlots compiles a circuit sized for pools of up to slots
// entries.
func NewAttestorWithSlots(slots int) (*Attestor, error) {
	a := &Attestor{slots: slots, curve: ecc.BN254}

	cs, err := frontend.Compile(a.curve.ScalarField(), r1cs.NewBuilder, NewRatioCircuit(slots))
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}

	// Trusted setup (in production, use ceremony or universal setup)
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}

	a.cs = cs
	a.pk = pk
	a.vk = vk
	return a, nil
}

// Constraints returns the compiled constraint count.
func (a *Attestor) Constraints() int {
	return a.cs.GetNbConstraints()
}

// Attest proves that the given collateral entry values back the supply at
// the minimum ratio. An under-collateralized state has no satisfying
// witness; that case is rejected up front with ErrNotSolvent rather than
// surfacing as an opaque proving failure.
func (a *Attestor) Attest(entryValues []uint64, supply uint64) (*Attestation, error) {
	if len(entryValues) > a.slots {
		return nil, ErrTooManyEntries
	}
	if !ratioHolds(entryValues, supply) {
		return nil, ErrNotSolvent
	}

	assignment := NewRatioCircuit(a.slots)
	for i := 0; i < a.slots; i++ {
		if i < len(entryValues) {
			assignment.Entries[i] = entryValues[i]
		} else {
			assignment.Entries[i] = 0
		}
	}
	assignment.Supply = supply

	witness, err := frontend.NewWitness(assignment, a.curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}

	a.mu.RLock()
	proof, err := groth16.Prove(a.cs, a.pk, witness)
	a.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}

	return &Attestation{
		Supply:      supply,
		Proof:       proof,
		Constraints: a.cs.GetNbConstraints(),
	}, nil
}

// Verify checks an attestation against its public supply.
func (a *Attestor) Verify(att *Attestation) error {
	// Rebuild the public witness from the attested supply. Entry slots
	// are private and absent from the public witness.
	assignment := NewRatioCircuit(a.slots)
	for i := range assignment.Entries {
		assignment.Entries[i] = 0
	}
	assignment.Supply = att.Supply

	witness, err := frontend.NewWitness(assignment, a.curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	return groth16.Verify(att.Proof, a.vk, witness)
}

// ratioHolds mirrors the in-circuit check out of circuit: sum*100 >=
// supply*150, computed in 256-bit width so the sum and multiply are exact.
func ratioHolds(entryValues []uint64, supply uint64) bool {
	sum := new(uint256.Int)
	v := new(uint256.Int)
	for _, e := range entryValues {
		sum.Add(sum, v.SetUint64(e))
	}
	lhs := sum.Mul(sum, uint256.NewInt(100))
	rhs := new(uint256.Int).Mul(uint256.NewInt(supply), uint256.NewInt(150))
	return !lhs.Lt(rhs)
}
