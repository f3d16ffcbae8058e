package ledger_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/ledger"
)

var (
	operator = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000002")
	token    = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	asset    = domain.AssetRef{Collection: common.HexToAddress("0x00000000000000000000000000000000000000ee"), TokenNumber: "1"}
)

func TestWorld_Fractions(t *testing.T) {
	ctx := context.Background()
	w := ledger.NewWorld()
	w.AddOperator(operator)

	require.NoError(t, w.Mint(ctx, alice, 1, 100))

	t.Run("operator transfer", func(t *testing.T) {
		require.NoError(t, w.OperatorTransfer(ctx, operator, alice, bob, 1, 40))
		bal, _ := w.BalanceOf(ctx, bob, 1)
		assert.Equal(t, uint64(40), bal)
	})

	t.Run("non operator rejected", func(t *testing.T) {
		err := w.OperatorTransfer(ctx, bob, alice, bob, 1, 1)
		assert.ErrorIs(t, err, domain.ErrNotOperator)
	})

	t.Run("peer transfer requires holder", func(t *testing.T) {
		err := w.SafeTransferFrom(ctx, bob, alice, bob, 1, 1)
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("burn exceeding balance", func(t *testing.T) {
		err := w.OperatorBurn(ctx, operator, bob, 1, 41)
		assert.ErrorIs(t, err, domain.ErrBurnExceedsBalance)
	})

	t.Run("burn reduces supply", func(t *testing.T) {
		require.NoError(t, w.OperatorBurn(ctx, operator, bob, 1, 40))
		supply, _ := w.TotalSupply(ctx, 1)
		assert.Equal(t, uint64(60), supply)
	})
}

func TestWorld_TransferGuard(t *testing.T) {
	ctx := context.Background()
	w := ledger.NewWorld()
	require.NoError(t, w.Mint(ctx, alice, 7, 10))

	blocked := errors.New("blocked")
	w.SetTransferGuard(ledger.TransferGuardFunc(func(_ context.Context, _, _, to common.Address, _ domain.SaleID, _ uint64) error {
		if to == bob {
			return blocked
		}
		return nil
	}))

	assert.ErrorIs(t, w.SafeTransferFrom(ctx, alice, alice, bob, 7, 1), blocked)
	require.NoError(t, w.SafeTransferFrom(ctx, alice, alice, operator, 7, 3))

	bal, _ := w.BalanceOf(ctx, operator, 7)
	assert.Equal(t, uint64(3), bal)
}

func TestWorld_ValueToken(t *testing.T) {
	ctx := context.Background()
	w := ledger.NewWorld()
	require.NoError(t, w.MintValue(ctx, token, alice, big.NewInt(1000)))

	err := w.TransferFrom(ctx, token, bob, alice, bob, big.NewInt(10))
	assert.ErrorIs(t, err, domain.ErrRequestExceedsAllowance)

	require.NoError(t, w.Approve(ctx, token, alice, bob, big.NewInt(2000)))
	err = w.TransferFrom(ctx, token, bob, alice, bob, big.NewInt(1500))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	require.NoError(t, w.TransferFrom(ctx, token, bob, alice, bob, big.NewInt(600)))
	allowance, _ := w.Allowance(ctx, token, alice, bob)
	assert.Equal(t, int64(1400), allowance.Int64())

	balA, _ := w.Balance(ctx, token, alice)
	balB, _ := w.Balance(ctx, token, bob)
	assert.Equal(t, int64(400), balA.Int64())
	assert.Equal(t, int64(600), balB.Int64())
}

func TestWorld_AssetCustody(t *testing.T) {
	ctx := context.Background()
	w := ledger.NewWorld()
	w.AddOperator(operator)
	require.NoError(t, w.MintAsset(ctx, asset, alice))

	w.SetReceiver(operator, ledger.AssetReceiverFunc(func(_ context.Context, op, _ common.Address, _ domain.AssetRef) error {
		if op != operator {
			return domain.ErrCannotSendAsset
		}
		return nil
	}))

	err := w.TransferAsset(ctx, alice, alice, operator, asset)
	assert.ErrorIs(t, err, domain.ErrCannotSendAsset)

	err = w.TransferAsset(ctx, bob, alice, bob, asset)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	require.NoError(t, w.TransferAsset(ctx, operator, alice, operator, asset))
	owner, err := w.OwnerOf(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, operator, owner)

	_, err = w.OwnerOf(ctx, domain.AssetRef{Collection: asset.Collection, TokenNumber: "2"})
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestWorld_AtomicallyRestoresOnError(t *testing.T) {
	ctx := context.Background()
	w := ledger.NewWorld()
	w.AddOperator(operator)
	require.NoError(t, w.MintValue(ctx, token, alice, big.NewInt(100)))

	err := w.Atomically(ctx, func(ctx context.Context) error {
		require.NoError(t, w.Transfer(ctx, token, alice, bob, big.NewInt(60)))
		require.NoError(t, w.Mint(ctx, bob, 3, 5))
		return w.Transfer(ctx, token, alice, bob, big.NewInt(60))
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	balA, _ := w.Balance(ctx, token, alice)
	balB, _ := w.Balance(ctx, token, bob)
	supply, _ := w.TotalSupply(ctx, 3)
	assert.Equal(t, int64(100), balA.Int64())
	assert.Equal(t, int64(0), balB.Int64())
	assert.Equal(t, uint64(0), supply)

	require.NoError(t, w.Atomically(ctx, func(ctx context.Context) error {
		return w.Transfer(ctx, token, alice, bob, big.NewInt(60))
	}))
	balB, _ = w.Balance(ctx, token, bob)
	assert.Equal(t, int64(60), balB.Int64())
}

func TestWorld_AtomicallyRestoresOnPanic(t *testing.T) {
	ctx := context.Background()
	w := ledger.NewWorld()

	assert.Panics(t, func() {
		_ = w.Atomically(ctx, func(ctx context.Context) error {
			_ = w.Mint(ctx, alice, 1, 10)
			panic("boom")
		})
	})

	supply, _ := w.TotalSupply(ctx, 1)
	assert.Equal(t, uint64(0), supply)
}

func TestRequireCapability(t *testing.T) {
	ctx := context.Background()
	perms := permsFunc(func(_ context.Context, c domain.Capability, p common.Address) (bool, error) {
		return c == domain.CapabilityAdmin && p == alice, nil
	})

	assert.NoError(t, ledger.RequireCapability(ctx, perms, domain.CapabilityAdmin, alice))
	err := ledger.RequireCapability(ctx, perms, domain.CapabilityAdmin, bob)
	assert.ErrorIs(t, err, domain.ErrMissingCapability)
	assert.Contains(t, err.Error(), "admin")
}

type permsFunc func(ctx context.Context, capability domain.Capability, principal common.Address) (bool, error)

func (f permsFunc) Has(ctx context.Context, capability domain.Capability, principal common.Address) (bool, error) {
	return f(ctx, capability, principal)
}
