package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
)

// GenesisAsset is a unique asset minted to its first owner
type GenesisAsset struct {
	Asset domain.AssetRef
	Owner common.Address
}

// GenesisBalance is a payment token balance credited to a holder
type GenesisBalance struct {
	Token  common.Address
	Holder common.Address
	Amount *big.Int
}

// Genesis is the initial state of a sandbox ledger
type Genesis struct {
	Assets   []GenesisAsset
	Balances []GenesisBalance
}

// IsEmpty reports whether the genesis seeds nothing
func (g *Genesis) IsEmpty() bool {
	return g == nil || (len(g.Assets) == 0 && len(g.Balances) == 0)
}

// Apply mints every genesis entry through the faucet and stops at the first failure
func (g *Genesis) Apply(ctx context.Context, f Faucet) error {
	if g == nil {
		return nil
	}
	for _, a := range g.Assets {
		if err := f.MintAsset(ctx, a.Asset, a.Owner); err != nil {
			return fmt.Errorf("failed to mint asset %s: %w", a.Asset, err)
		}
	}
	for _, b := range g.Balances {
		if domain.IsZeroAddress(b.Token) {
			return fmt.Errorf("failed to credit %s: %w", b.Holder.Hex(), domain.ErrNullAddress)
		}
		if err := f.MintValue(ctx, b.Token, b.Holder, b.Amount); err != nil {
			return fmt.Errorf("failed to credit %s of %s: %w", b.Holder.Hex(), b.Token.Hex(), err)
		}
	}
	return nil
}
