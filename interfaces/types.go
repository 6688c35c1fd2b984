// Package interfaces defines the capability interfaces and shared types of the
// token provisioner, without implementation details.
package interfaces

import (
	"fmt"
	"math/bits"

	"github.com/blocto/solana-go-sdk/common"
)

// Metaplex token metadata field limits.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200

	// MaxDecimals bounds decimals so that one whole token stays far from uint64 overflow.
	MaxDecimals = 9
)

// TokenSpec describes the fungible token to provision.
type TokenSpec struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Decimals    uint8  `json:"decimals"`
	// Amount is the initial supply in display units.
	Amount uint64 `json:"amount"`
}

// Validate checks the display fields against on-chain limits and verifies
// the base-unit amount is representable.
func (s TokenSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidTokenSpec)
	}
	if len(s.Name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d bytes", ErrInvalidTokenSpec, MaxNameLength)
	}
	if s.Symbol == "" {
		return fmt.Errorf("%w: symbol is empty", ErrInvalidTokenSpec)
	}
	if len(s.Symbol) > MaxSymbolLength {
		return fmt.Errorf("%w: symbol longer than %d bytes", ErrInvalidTokenSpec, MaxSymbolLength)
	}
	if s.Decimals > MaxDecimals {
		return fmt.Errorf("%w: decimals must be at most %d", ErrInvalidTokenSpec, MaxDecimals)
	}
	if _, err := s.BaseAmount(); err != nil {
		return err
	}
	return nil
}

// BaseAmount returns Amount * 10^Decimals, failing on uint64 overflow.
func (s TokenSpec) BaseAmount() (uint64, error) {
	return ToBaseUnits(s.Amount, s.Decimals)
}

// ToBaseUnits scales a display amount to base units.
func ToBaseUnits(amount uint64, decimals uint8) (uint64, error) {
	result := amount
	for i := uint8(0); i < decimals; i++ {
		hi, lo := bits.Mul64(result, 10)
		if hi != 0 {
			return 0, fmt.Errorf("%w: %d with %d decimals overflows uint64", ErrInvalidTokenSpec, amount, decimals)
		}
		result = lo
	}
	return result, nil
}

// Asset is a file to upload, such as the token image.
type Asset struct {
	FileName string
	Data     []byte
}

// ProvisionRequest is the input of a provisioning run.
type ProvisionRequest struct {
	Token TokenSpec
	Image Asset
	// Owner receives the minted supply. Defaults to the signing identity.
	Owner *common.PublicKey
}

// Receipt reports the outcome of a successful provisioning run.
type Receipt struct {
	Signature            string   `json:"signature"`
	Mint                 string   `json:"mint"`
	MetadataAccount      string   `json:"metadata_account"`
	HolderAccount        string   `json:"holder_account"`
	Owner                string   `json:"owner"`
	ImageURI             string   `json:"image_uri"`
	MetadataURI          string   `json:"metadata_uri"`
	Decimals             uint8    `json:"decimals"`
	BaseAmount           uint64   `json:"base_amount"`
	CreatedHolderAccount bool     `json:"created_holder_account"`
	Instructions         []string `json:"instructions"`
	ExplorerURL          string   `json:"explorer_url,omitempty"`
}
