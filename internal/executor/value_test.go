package executor_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
)

func TestFaucetAndApproval_DriveASale(t *testing.T) {
	h := newHarness(t)
	ref := h.asset("7")

	// Everything below goes through the executor as an API caller would
	require.NoError(t, h.exec.MintAsset(h.ctx, admin, ref, issuer))
	require.NoError(t, h.exec.MintValue(h.ctx, admin, usdc, alice, big.NewInt(1_000_000)))

	view, err := h.exec.SetupSale(h.ctx, issuer, h.saleInput(ref, 100, 400))
	require.NoError(t, err)

	_, err = h.exec.BuyFractions(h.ctx, alice, view.ID, 100)
	assert.ErrorIs(t, err, domain.ErrRequestExceedsAllowance)

	require.NoError(t, h.exec.ApproveValue(h.ctx, alice, usdc, h.addrs.SaleManager, big.NewInt(200_000)))
	account, err := h.exec.GetValueAccount(h.ctx, usdc, alice, h.addrs.SaleManager)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000), account.Balance)
	assert.Equal(t, big.NewInt(200_000), account.Allowance)

	_, err = h.exec.BuyFractions(h.ctx, alice, view.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), h.fractions(alice, view.ID))

	account, err = h.exec.GetValueAccount(h.ctx, usdc, alice, h.addrs.SaleManager)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(800_000), account.Balance)
	assert.Zero(t, account.Allowance.Sign())
}

func TestFaucetAndApproval_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		run         func(h *harness) error
		expectedErr error
	}{
		{
			name: "value mint without admin capability",
			run: func(h *harness) error {
				return h.exec.MintValue(h.ctx, alice, usdc, alice, big.NewInt(1))
			},
			expectedErr: domain.ErrMissingCapability,
		},
		{
			name: "asset mint without admin capability",
			run: func(h *harness) error {
				return h.exec.MintAsset(h.ctx, issuer, h.asset("1"), issuer)
			},
			expectedErr: domain.ErrMissingCapability,
		},
		{
			name: "asset minted twice",
			run: func(h *harness) error {
				h.mintAsset("1")
				return h.exec.MintAsset(h.ctx, admin, h.asset("1"), alice)
			},
			expectedErr: domain.ErrAssetAlreadyMinted,
		},
		{
			name: "value mint of the null token",
			run: func(h *harness) error {
				return h.exec.MintValue(h.ctx, admin, common.Address{}, alice, big.NewInt(1))
			},
			expectedErr: domain.ErrNullAddress,
		},
		{
			name: "value mint of nothing",
			run: func(h *harness) error {
				return h.exec.MintValue(h.ctx, admin, usdc, alice, big.NewInt(0))
			},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative approval",
			run: func(h *harness) error {
				return h.exec.ApproveValue(h.ctx, alice, usdc, h.addrs.SaleManager, big.NewInt(-1))
			},
			expectedErr: domain.ErrInvalidAmount,
		},
		{
			name: "approval of the null spender",
			run: func(h *harness) error {
				return h.exec.ApproveValue(h.ctx, alice, usdc, common.Address{}, big.NewInt(1))
			},
			expectedErr: domain.ErrNullAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := tt.run(h)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, int64(0), h.value(alice))
		})
	}
}
