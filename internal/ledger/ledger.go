package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
)

// FractionLedger is the multi-asset fungible balance service keyed by (holder, sale id)
type FractionLedger interface {
	// Mint credits newly created fractions of id to an account
	Mint(ctx context.Context, to common.Address, id domain.SaleID, amount uint64) error
	// BalanceOf returns the fractions of id held by holder
	BalanceOf(ctx context.Context, holder common.Address, id domain.SaleID) (uint64, error)
	// TotalSupply returns the outstanding fractions of id
	TotalSupply(ctx context.Context, id domain.SaleID) (uint64, error)
	// OperatorTransfer moves fractions on behalf of a registered operator, bypassing the transfer guard
	OperatorTransfer(ctx context.Context, operator, from, to common.Address, id domain.SaleID, amount uint64) error
	// SafeTransferFrom is a holder-initiated peer transfer, subject to the transfer guard
	SafeTransferFrom(ctx context.Context, operator, from, to common.Address, id domain.SaleID, amount uint64) error
	// OperatorBurn destroys fractions held by from
	OperatorBurn(ctx context.Context, operator, from common.Address, id domain.SaleID, amount uint64) error
	// SetTransferGuard installs the hook consulted on every peer transfer
	SetTransferGuard(guard TransferGuard)
}

// TransferGuard decides whether a peer transfer of fractions may happen
type TransferGuard interface {
	CheckFractionTransfer(ctx context.Context, operator, from, to common.Address, id domain.SaleID, amount uint64) error
}

// TransferGuardFunc adapts a function to TransferGuard
type TransferGuardFunc func(ctx context.Context, operator, from, to common.Address, id domain.SaleID, amount uint64) error

func (f TransferGuardFunc) CheckFractionTransfer(ctx context.Context, operator, from, to common.Address, id domain.SaleID, amount uint64) error {
	return f(ctx, operator, from, to, id, amount)
}

// ValueToken is the fungible payment asset with allowance semantics
type ValueToken interface {
	Balance(ctx context.Context, token, holder common.Address) (*big.Int, error)
	// Transfer moves funds owned by from, which is the acting account
	Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error
	// TransferFrom pulls funds from an owner that approved spender
	TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount *big.Int) error
	Approve(ctx context.Context, token, owner, spender common.Address, amount *big.Int) error
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// AssetCustody tracks ownership of unique assets
type AssetCustody interface {
	OwnerOf(ctx context.Context, asset domain.AssetRef) (common.Address, error)
	TransferAsset(ctx context.Context, operator, from, to common.Address, asset domain.AssetRef) error
	// SetReceiver installs the hook notified when an asset is sent to addr
	SetReceiver(addr common.Address, receiver AssetReceiver)
}

// AssetReceiver gates custody handoffs into an account
type AssetReceiver interface {
	OnAssetReceived(ctx context.Context, operator, from common.Address, asset domain.AssetRef) error
}

// AssetReceiverFunc adapts a function to AssetReceiver
type AssetReceiverFunc func(ctx context.Context, operator, from common.Address, asset domain.AssetRef) error

func (f AssetReceiverFunc) OnAssetReceived(ctx context.Context, operator, from common.Address, asset domain.AssetRef) error {
	return f(ctx, operator, from, asset)
}

// AllowList gates who may buy fractions
type AllowList interface {
	IsAddressAllowed(ctx context.Context, addr common.Address) (bool, error)
}

// Permissions answers capability checks
type Permissions interface {
	Has(ctx context.Context, capability domain.Capability, principal common.Address) (bool, error)
}

// Host runs a state transition atomically against the ledgers.
// fn either commits every effect or none; calls must not be nested.
type Host interface {
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}

// Faucet credits balances out of thin air. Only sandbox ledgers provide it.
type Faucet interface {
	MintValue(ctx context.Context, token, to common.Address, amount *big.Int) error
	MintAsset(ctx context.Context, asset domain.AssetRef, owner common.Address) error
}

// RequireCapability fails with a missing capability error unless principal holds capability
func RequireCapability(ctx context.Context, perms Permissions, capability domain.Capability, principal common.Address) error {
	ok, err := perms.Has(ctx, capability, principal)
	if err != nil {
		return err
	}
	if !ok {
		return domain.MissingCapability(principal, capability)
	}
	return nil
}
