package provisioner

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
)

// InstructionKind identifies a step of the provisioning transaction.
// Kinds are declared in the order they must appear in a batch.
type InstructionKind int

const (
	CreateMintAccount InstructionKind = iota
	InitializeMint
	CreateMetadataAccount
	CreateHolderAccount
	MintToHolder
)

// String returns the instruction kind name.
func (k InstructionKind) String() string {
	switch k {
	case CreateMintAccount:
		return "create-mint-account"
	case InitializeMint:
		return "initialize-mint"
	case CreateMetadataAccount:
		return "create-metadata-account"
	case CreateHolderAccount:
		return "create-holder-account"
	case MintToHolder:
		return "mint-to-holder"
	default:
		return fmt.Sprintf("instruction(%d)", int(k))
	}
}

// ErrInvalidBatch is returned by Batch.Validate.
var ErrInvalidBatch = errors.New("invalid instruction batch")

// Batch is the ordered instruction list of one provisioning transaction.
type Batch struct {
	kinds        []InstructionKind
	instructions []types.Instruction
}

// Append adds an instruction of the given kind to the end of the batch.
func (b *Batch) Append(kind InstructionKind, instruction types.Instruction) {
	b.kinds = append(b.kinds, kind)
	b.instructions = append(b.instructions, instruction)
}

// Kinds returns the kinds of the appended instructions in order.
func (b *Batch) Kinds() []InstructionKind {
	return append([]InstructionKind(nil), b.kinds...)
}

// Instructions returns the appended instructions in order.
func (b *Batch) Instructions() []types.Instruction {
	return append([]types.Instruction(nil), b.instructions...)
}

// Has reports whether the batch contains an instruction of kind.
func (b *Batch) Has(kind InstructionKind) bool {
	for _, k := range b.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate checks that every kind appears at most once and in declaration order,
// and that all kinds except CreateHolderAccount are present.
func (b *Batch) Validate() error {
	for i := 1; i < len(b.kinds); i++ {
		if b.kinds[i] <= b.kinds[i-1] {
			return fmt.Errorf("%w: %s after %s", ErrInvalidBatch, b.kinds[i], b.kinds[i-1])
		}
	}

	for _, required := range []InstructionKind{CreateMintAccount, InitializeMint, CreateMetadataAccount, MintToHolder} {
		if !b.Has(required) {
			return fmt.Errorf("%w: missing %s", ErrInvalidBatch, required)
		}
	}
	return nil
}

// Names returns the kind names in order, as reported in receipts.
func (b *Batch) Names() []string {
	names := make([]string, len(b.kinds))
	for i, k := range b.kinds {
		names[i] = k.String()
	}
	return names
}
