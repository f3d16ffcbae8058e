package executor_test

import (
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/sale"
	"github.com/feral-file/ff-fractions/internal/store"
)

func TestSetupSale(t *testing.T) {
	h := newHarness(t)

	view := h.openSale("1")
	assert.Equal(t, domain.SaleID(0), view.ID)
	assert.Equal(t, issuer, view.Initiator)
	assert.Equal(t, uint64(500), view.FractionsAmount)
	assert.Equal(t, big.NewInt(2000), view.FractionPrice)
	assert.Equal(t, escrow.TimedAddress(h.addrs.SaleManager, 0), view.EscrowAddress)
	assert.Equal(t, domain.SaleStatusOpen, view.Status)
	assert.True(t, view.IsOpen)
	assert.Equal(t, uint64(400), view.FractionsAvailable)

	// Custody and mint split
	assert.Equal(t, h.addrs.SaleManager, h.owner(view.Asset))
	assert.Equal(t, uint64(100), h.fractions(h.addrs.SaleManager, view.ID))
	assert.Equal(t, uint64(400), h.fractions(view.EscrowAddress, view.ID))

	esc, err := h.exec.GetEscrow(h.ctx, view.EscrowAddress)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowKindTimed, esc.Kind)
	assert.Equal(t, uint64(domain.DEFAULT_SALE_FEE_BPS), esc.ProtocolFeeBps)
	assert.Equal(t, treasury, esc.GovernanceTreasury)

	assert.Equal(t, []domain.NotificationType{domain.NotificationNewFractionsSale}, h.notificationTypes())
}

func TestSetupSale_Tiers(t *testing.T) {
	unit := big.NewInt(1_000_000)
	units := func(v int64) *big.Int { return new(big.Int).Mul(big.NewInt(v), unit) }

	tests := []struct {
		name      string
		price     *big.Int
		fractions uint64
	}{
		{name: "smallest tier", price: units(1), fractions: 500},
		{name: "limit itself stays in the lower tier", price: units(500_000), fractions: 500},
		{name: "just above the second limit", price: new(big.Int).Add(units(500_000), big.NewInt(1)), fractions: 1000},
		{name: "third tier", price: units(2_000_000), fractions: 4000},
		{name: "fourth tier", price: units(3_000_000), fractions: 6000},
		{name: "top tier", price: units(10_000_000), fractions: 10000},
	}

	h := newHarness(t)
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := h.saleInput(h.mintAsset(strconv.Itoa(100 + i)), 0, 1)
			input.Price = tt.price

			view, err := h.exec.SetupSale(h.ctx, issuer, input)
			require.NoError(t, err)
			assert.Equal(t, tt.fractions, view.FractionsAmount)
			assert.Equal(t, new(big.Int).Quo(tt.price, new(big.Int).SetUint64(tt.fractions)), view.FractionPrice)
		})
	}
}

func TestSetupSale_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		input       func(h *harness) (sale.SetupSaleInput, bool)
		expectedErr error
	}{
		{
			name: "caller without sale issuer capability",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				return h.saleInput(h.mintAsset("1"), 100, 400), false
			},
			expectedErr: domain.ErrMissingCapability,
		},
		{
			name: "zero price",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				in := h.saleInput(h.mintAsset("1"), 100, 400)
				in.Price = big.NewInt(0)
				return in, true
			},
			expectedErr: domain.ErrInvalidPrice,
		},
		{
			name: "price below one unit per fraction",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				in := h.saleInput(h.mintAsset("1"), 100, 400)
				in.Price = big.NewInt(499)
				return in, true
			},
			expectedErr: domain.ErrInvalidPrice,
		},
		{
			name: "null payment token",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				in := h.saleInput(h.mintAsset("1"), 100, 400)
				in.PaymentToken = [20]byte{}
				return in, true
			},
			expectedErr: domain.ErrNullAddress,
		},
		{
			name: "sale min fractions zero",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				return h.saleInput(h.mintAsset("1"), 0, 0), true
			},
			expectedErr: domain.ErrSaleMinFractionsOutOfRange,
		},
		{
			name: "sale min fractions above supply",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				return h.saleInput(h.mintAsset("1"), 0, 501), true
			},
			expectedErr: domain.ErrSaleMinFractionsOutOfRange,
		},
		{
			name: "kept fractions cover the whole supply",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				return h.saleInput(h.mintAsset("1"), 500, 500), true
			},
			expectedErr: domain.ErrMinFractionsKeptOutOfRange,
		},
		{
			name: "sale min fractions not above kept",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				return h.saleInput(h.mintAsset("1"), 100, 100), true
			},
			expectedErr: domain.ErrSaleMinFractionsOutOfRange,
		},
		{
			name: "empty window",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				in := h.saleInput(h.mintAsset("1"), 100, 400)
				in.ClosingTime = in.OpeningTime
				return in, true
			},
			expectedErr: domain.ErrInvalidSaleWindow,
		},
		{
			name: "closing time in the past",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				in := h.saleInput(h.mintAsset("1"), 100, 400)
				in.OpeningTime = h.now.Add(-2 * time.Hour)
				in.ClosingTime = h.now.Add(-time.Hour)
				return in, true
			},
			expectedErr: domain.ErrClosingTimeInPast,
		},
		{
			name: "asset owned by someone else",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				ref := h.asset("1")
				require.NoError(h.t, h.world.MintAsset(h.ctx, ref, alice))
				return h.saleInput(ref, 100, 400), true
			},
			expectedErr: domain.ErrNotOwner,
		},
		{
			name: "unknown asset",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				return h.saleInput(h.asset("404"), 100, 400), true
			},
			expectedErr: domain.ErrAssetNotFound,
		},
		{
			name: "asset already in sale",
			input: func(h *harness) (sale.SetupSaleInput, bool) {
				view := h.openSale("1")
				return h.saleInput(view.Asset, 100, 400), true
			},
			expectedErr: domain.ErrAssetAlreadyInSale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			input, asIssuer := tt.input(h)
			caller := alice
			if asIssuer {
				caller = issuer
			}
			before := len(h.notificationTypes())

			_, err := h.exec.SetupSale(h.ctx, caller, input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Len(t, h.notificationTypes(), before)
		})
	}
}

func TestBuyFractions(t *testing.T) {
	h := newHarness(t)
	view := h.openSale("1")

	h.fund(alice, h.addrs.SaleManager, 400_000)
	updated, err := h.exec.BuyFractions(h.ctx, alice, view.ID, 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), updated.FractionsSold)
	assert.Equal(t, uint64(200), updated.FractionsAvailable)
	assert.False(t, updated.IsSuccessful)

	assert.Equal(t, uint64(200), h.fractions(alice, view.ID))
	assert.Equal(t, uint64(200), h.fractions(view.EscrowAddress, view.ID))
	assert.Equal(t, int64(0), h.value(alice))
	assert.Equal(t, int64(400_000), h.value(view.EscrowAddress))

	// Kept fractions count toward the minimum
	h.buy(bob, view.ID, 100)
	successful, err := h.exec.IsSaleSuccessful(h.ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, successful)
	open, err := h.exec.IsSaleOpen(h.ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestBuyFractions_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		run         func(h *harness, id domain.SaleID) error
		expectedErr error
	}{
		{
			name: "unknown sale",
			run: func(h *harness, id domain.SaleID) error {
				_, err := h.exec.BuyFractions(h.ctx, alice, id+1, 1)
				return err
			},
			expectedErr: domain.ErrInvalidSaleID,
		},
		{
			name: "before opening",
			run: func(h *harness, _ domain.SaleID) error {
				in := h.saleInput(h.mintAsset("2"), 100, 400)
				in.OpeningTime = h.now.Add(time.Minute)
				in.ClosingTime = h.now.Add(time.Hour)
				view, err := h.exec.SetupSale(h.ctx, issuer, in)
				require.NoError(h.t, err)
				h.fund(alice, h.addrs.SaleManager, 2000)
				_, err = h.exec.BuyFractions(h.ctx, alice, view.ID, 1)
				return err
			},
			expectedErr: domain.ErrSaleNotOpen,
		},
		{
			name: "after closing",
			run: func(h *harness, id domain.SaleID) error {
				h.fund(alice, h.addrs.SaleManager, 2000)
				h.advance(time.Hour)
				_, err := h.exec.BuyFractions(h.ctx, alice, id, 1)
				return err
			},
			expectedErr: domain.ErrSaleNotOpen,
		},
		{
			name: "buyer not allowed",
			run: func(h *harness, id domain.SaleID) error {
				h.fund(issuer, h.addrs.SaleManager, 2000)
				_, err := h.exec.BuyFractions(h.ctx, issuer, id, 1)
				return err
			},
			expectedErr: domain.ErrAddressNotAllowed,
		},
		{
			name: "zero amount",
			run: func(h *harness, id domain.SaleID) error {
				_, err := h.exec.BuyFractions(h.ctx, alice, id, 0)
				return err
			},
			expectedErr: domain.ErrNotEnoughFractionsAvailable,
		},
		{
			name: "more than available",
			run: func(h *harness, id domain.SaleID) error {
				h.fund(alice, h.addrs.SaleManager, 401*2000)
				_, err := h.exec.BuyFractions(h.ctx, alice, id, 401)
				return err
			},
			expectedErr: domain.ErrNotEnoughFractionsAvailable,
		},
		{
			name: "allowance shortfall",
			run: func(h *harness, id domain.SaleID) error {
				h.fund(alice, h.addrs.SaleManager, 1999)
				_, err := h.exec.BuyFractions(h.ctx, alice, id, 1)
				return err
			},
			expectedErr: domain.ErrRequestExceedsAllowance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			view := h.openSale("1")

			err := tt.run(h, view.ID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)

			// Nothing moved
			current, err := h.exec.GetSale(h.ctx, view.ID)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), current.FractionsSold)
			assert.Equal(t, uint64(400), h.fractions(view.EscrowAddress, view.ID))
			assert.Equal(t, int64(0), h.value(view.EscrowAddress))
		})
	}
}

func TestSellOutClosesEarly(t *testing.T) {
	h := newHarness(t)
	view := h.openSale("1")

	h.buy(alice, view.ID, 250)
	h.buy(bob, view.ID, 150)

	current, err := h.exec.GetSale(h.ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, current.IsOpen)
	assert.Equal(t, domain.SaleStatusSuccessful, current.Status)

	h.fund(carol, h.addrs.SaleManager, 2000)
	_, err = h.exec.BuyFractions(h.ctx, carol, view.ID, 1)
	assert.ErrorIs(t, err, domain.ErrSaleNotOpen)

	// Settlement does not wait for the closing time
	res, err := h.exec.ReleaseSeller(h.ctx, carol, view.EscrowAddress)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(800_000-32_000), res.SellerAmount)

	require.NoError(t, h.exec.TransferFractions(h.ctx, alice, carol, view.ID, 10))
	assert.Equal(t, uint64(10), h.fractions(carol, view.ID))
}

func TestSuccessfulSale_SettlementAndFeeConservation(t *testing.T) {
	h := newHarness(t)
	view := h.successfulSale("1")

	// Paid in: 350 fractions at 2000
	assert.Equal(t, int64(700_000), h.value(view.EscrowAddress))

	settleable, err := h.exec.ListSettleableSales(h.ctx, 10)
	require.NoError(t, err)
	require.Len(t, settleable, 1)
	assert.Equal(t, view.ID, settleable[0].ID)

	// Anyone may trigger the release; funds always go to the initiator
	res, err := h.exec.ReleaseSeller(h.ctx, carol, view.EscrowAddress)
	require.NoError(t, err)
	assert.Equal(t, issuer, res.Initiator)
	assert.Equal(t, big.NewInt(28_000), res.Fee)
	assert.Equal(t, big.NewInt(672_000), res.SellerAmount)

	assert.Equal(t, int64(28_000), h.value(treasury))
	assert.Equal(t, int64(672_000), h.value(issuer))
	assert.Equal(t, int64(0), h.value(view.EscrowAddress))
	assert.Equal(t, int64(0), h.value(carol))

	_, err = h.exec.ReleaseSeller(h.ctx, issuer, view.EscrowAddress)
	assert.ErrorIs(t, err, domain.ErrSellerAlreadyReleased)

	settleable, err = h.exec.ListSettleableSales(h.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, settleable)

	// A successful sale cannot refund holders nor return the asset
	_, err = h.exec.Release(h.ctx, alice, view.EscrowAddress, []common.Address{alice})
	assert.ErrorIs(t, err, domain.ErrSaleDidNotFail)
	_, err = h.exec.WithdrawFailedSaleNft(h.ctx, issuer, view.ID)
	assert.ErrorIs(t, err, domain.ErrCannotTradeNftBack)
}

func TestWithdrawFractionsKept(t *testing.T) {
	h := newHarness(t)
	view := h.openSale("1")
	h.buy(alice, view.ID, 200)
	h.buy(bob, view.ID, 150)

	_, err := h.exec.WithdrawFractionsKept(h.ctx, issuer, view.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFinished)

	h.advance(2 * time.Hour)

	_, err = h.exec.WithdrawFractionsKept(h.ctx, alice, view.ID)
	assert.ErrorIs(t, err, domain.ErrMustBeSaleInitiator)

	// Kept plus unsold
	amount, err := h.exec.WithdrawFractionsKept(h.ctx, issuer, view.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), amount)
	assert.Equal(t, uint64(150), h.fractions(issuer, view.ID))
	assert.Equal(t, uint64(0), h.fractions(h.addrs.SaleManager, view.ID))
	assert.Equal(t, uint64(0), h.fractions(view.EscrowAddress, view.ID))

	// Conservation of fractions
	supply, err := h.world.TotalSupply(h.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.FractionsAmount, supply)
	assert.Equal(t, supply, h.fractions(alice, view.ID)+h.fractions(bob, view.ID)+h.fractions(issuer, view.ID))

	_, err = h.exec.WithdrawFractionsKept(h.ctx, issuer, view.ID)
	assert.ErrorIs(t, err, domain.ErrFractionsKeptAlreadyWithdrawn)
}

func TestFailedSale_RefundsAndAssetReturn(t *testing.T) {
	h := newHarness(t)
	view := h.openSale("1")
	h.buy(alice, view.ID, 100)
	h.buy(bob, view.ID, 50)

	_, err := h.exec.Release(h.ctx, alice, view.EscrowAddress, []common.Address{alice})
	assert.ErrorIs(t, err, domain.ErrSaleNotFinished)

	h.advance(2 * time.Hour)

	current, err := h.exec.GetSale(h.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusFailed, current.Status)

	_, err = h.exec.WithdrawFractionsKept(h.ctx, issuer, view.ID)
	assert.ErrorIs(t, err, domain.ErrSaleUnsuccessful)
	_, err = h.exec.ReleaseSeller(h.ctx, issuer, view.EscrowAddress)
	assert.ErrorIs(t, err, domain.ErrSaleUnsuccessful)

	_, err = h.exec.Release(h.ctx, carol, view.EscrowAddress, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyHolders)
	_, err = h.exec.Release(h.ctx, carol, view.EscrowAddress, []common.Address{view.EscrowAddress})
	assert.ErrorIs(t, err, domain.ErrInvalidHolder)

	// Anyone may release any holders; each holder is refunded at the sale price
	res, err := h.exec.Release(h.ctx, carol, view.EscrowAddress, []common.Address{alice, bob})
	require.NoError(t, err)
	assert.Equal(t, []uint64{100, 50}, res.Amounts)
	assert.Equal(t, big.NewInt(300_000), res.Paid)
	assert.Equal(t, int64(200_000), h.value(alice))
	assert.Equal(t, int64(100_000), h.value(bob))
	assert.Equal(t, int64(0), h.value(view.EscrowAddress))
	assert.Equal(t, uint64(0), h.fractions(alice, view.ID))

	// No double release, and a zero balance fails the whole call
	_, err = h.exec.Release(h.ctx, carol, view.EscrowAddress, []common.Address{alice})
	assert.ErrorIs(t, err, domain.ErrFractionsAmountZero)

	_, err = h.exec.WithdrawFailedSaleNft(h.ctx, alice, view.ID)
	assert.ErrorIs(t, err, domain.ErrMustBeSaleInitiator)

	returned, err := h.exec.WithdrawFailedSaleNft(h.ctx, issuer, view.ID)
	require.NoError(t, err)
	assert.True(t, returned.NftWithdrawn)
	assert.Equal(t, issuer, h.owner(view.Asset))

	_, err = h.exec.WithdrawFailedSaleNft(h.ctx, issuer, view.ID)
	assert.ErrorIs(t, err, domain.ErrNftAlreadyWithdrawn)

	// The asset can be fractionalized again
	again, err := h.exec.SetupSale(h.ctx, issuer, h.saleInput(view.Asset, 100, 400))
	require.NoError(t, err)
	assert.Equal(t, domain.SaleID(1), again.ID)
}

func TestFailedSale_PartialReleaseFailsAtomically(t *testing.T) {
	h := newHarness(t)
	view := h.openSale("1")
	h.buy(alice, view.ID, 100)
	h.advance(2 * time.Hour)

	// bob holds nothing: alice's refund must be rolled back too
	_, err := h.exec.Release(h.ctx, carol, view.EscrowAddress, []common.Address{alice, bob})
	assert.ErrorIs(t, err, domain.ErrFractionsAmountZero)
	assert.Equal(t, uint64(100), h.fractions(alice, view.ID))
	assert.Equal(t, int64(0), h.value(alice))
	assert.Equal(t, int64(200_000), h.value(view.EscrowAddress))
}

func TestTransferRestriction(t *testing.T) {
	h := newHarness(t)
	view := h.openSale("1")
	h.buy(alice, view.ID, 300)

	// While the sale runs
	err := h.exec.TransferFractions(h.ctx, alice, bob, view.ID, 1)
	assert.ErrorIs(t, err, domain.ErrSaleNotFinished)
	// The guard also applies to direct ledger transfers
	err = h.world.SafeTransferFrom(h.ctx, alice, alice, bob, view.ID, 1)
	assert.ErrorIs(t, err, domain.ErrSaleNotFinished)

	h.advance(2 * time.Hour)

	err = h.exec.TransferFractions(h.ctx, alice, h.addrs.SaleManager, view.ID, 1)
	assert.ErrorIs(t, err, domain.ErrCannotSendFractions)
	err = h.exec.TransferFractions(h.ctx, alice, bob, view.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	err = h.exec.TransferFractions(h.ctx, alice, bob, view.ID, 301)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	require.NoError(t, h.exec.TransferFractions(h.ctx, alice, bob, view.ID, 100))
	assert.Equal(t, uint64(200), h.fractions(alice, view.ID))
	assert.Equal(t, uint64(100), h.fractions(bob, view.ID))
	require.NoError(t, h.world.SafeTransferFrom(h.ctx, bob, bob, carol, view.ID, 1))

	// Failed sale tokens are frozen
	failed := h.openSale("2")
	h.buy(alice, failed.ID, 10)
	h.advance(2 * time.Hour)
	err = h.exec.TransferFractions(h.ctx, alice, bob, failed.ID, 1)
	assert.ErrorIs(t, err, domain.ErrCannotTradeFailedSaleToken)
}

func TestDirectAssetTransferToSaleManagerIsRejected(t *testing.T) {
	h := newHarness(t)
	ref := h.mintAsset("1")

	err := h.world.TransferAsset(h.ctx, issuer, issuer, h.addrs.SaleManager, ref)
	assert.ErrorIs(t, err, domain.ErrCannotSendAsset)
	assert.Equal(t, issuer, h.owner(ref))
}

func TestListSales(t *testing.T) {
	h := newHarness(t)
	first := h.openSale("1")
	h.buy(alice, first.ID, 400)
	h.openSale("2")

	all, total, err := h.exec.ListSales(h.ctx, store.SaleQueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	require.Len(t, all, 2)

	status := domain.SaleStatusOpen
	open, total, err := h.exec.ListSales(h.ctx, store.SaleQueryFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, open, 1)
	assert.Equal(t, domain.SaleID(1), open[0].ID)

	initiator := alice
	none, total, err := h.exec.ListSales(h.ctx, store.SaleQueryFilter{Initiator: &initiator})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestTransferFractions_ProtocolAccounts(t *testing.T) {
	h := newHarness(t)
	view := h.successfulSale("1")

	tests := []struct {
		name        string
		from        common.Address
		to          common.Address
		expectedErr error
	}{
		{name: "from the timed escrow", from: view.EscrowAddress, to: carol, expectedErr: domain.ErrProtocolAccountSend},
		{name: "from the sale manager", from: h.addrs.SaleManager, to: carol, expectedErr: domain.ErrProtocolAccountSend},
		{name: "from the buyout manager", from: h.addrs.BuyoutManager, to: carol, expectedErr: domain.ErrProtocolAccountSend},
		{name: "to the timed escrow", from: alice, to: view.EscrowAddress, expectedErr: domain.ErrCannotSendFractions},
		{name: "to the buyout manager", from: alice, to: h.addrs.BuyoutManager, expectedErr: domain.ErrCannotSendFractions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.exec.TransferFractions(h.ctx, tt.from, tt.to, view.ID, 1)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}

	// The ledger guard applies the same rule
	err := h.world.SafeTransferFrom(h.ctx, view.EscrowAddress, view.EscrowAddress, carol, view.ID, 1)
	assert.ErrorIs(t, err, domain.ErrProtocolAccountSend)

	assert.Equal(t, uint64(0), h.fractions(carol, view.ID))
	assert.Equal(t, uint64(50), h.fractions(view.EscrowAddress, view.ID))
	assert.Equal(t, uint64(100), h.fractions(h.addrs.SaleManager, view.ID))

	amount, err := h.exec.WithdrawFractionsKept(h.ctx, issuer, view.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), amount)
}

func TestSaleLifecycle_KeptBounds(t *testing.T) {
	type purchase struct {
		amount      uint64
		expectedErr error
		successful  bool
		open        bool
	}

	tests := []struct {
		name      string
		kept      uint64
		saleMin   uint64
		purchases []purchase
	}{
		{
			name:    "nothing kept and one fraction to succeed",
			kept:    0,
			saleMin: 1,
			purchases: []purchase{
				{amount: 1, successful: true, open: true},
				{amount: 499, successful: true, open: false},
				{amount: 1, expectedErr: domain.ErrSaleNotOpen, successful: true, open: false},
			},
		},
		{
			name:    "all but one fraction kept",
			kept:    499,
			saleMin: 500,
			purchases: []purchase{
				{amount: 1, successful: true, open: false},
				{amount: 1, expectedErr: domain.ErrSaleNotOpen, successful: true, open: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			input := h.saleInput(h.mintAsset("1"), tt.kept, tt.saleMin)
			input.Price = big.NewInt(5_000_000)

			view, err := h.exec.SetupSale(h.ctx, issuer, input)
			require.NoError(t, err)
			assert.Equal(t, uint64(500), view.FractionsAmount)
			assert.Equal(t, big.NewInt(10_000), view.FractionPrice)
			assert.Equal(t, 500-tt.kept, h.fractions(view.EscrowAddress, view.ID))

			successful, err := h.exec.IsSaleSuccessful(h.ctx, view.ID)
			require.NoError(t, err)
			assert.False(t, successful)

			for i, p := range tt.purchases {
				h.fund(alice, h.addrs.SaleManager, int64(p.amount)*10_000)
				_, err := h.exec.BuyFractions(h.ctx, alice, view.ID, p.amount)
				if p.expectedErr != nil {
					assert.ErrorIs(t, err, p.expectedErr, "purchase %d", i)
				} else {
					require.NoError(t, err, "purchase %d", i)
				}

				successful, err := h.exec.IsSaleSuccessful(h.ctx, view.ID)
				require.NoError(t, err)
				assert.Equal(t, p.successful, successful, "purchase %d", i)
				open, err := h.exec.IsSaleOpen(h.ctx, view.ID)
				require.NoError(t, err)
				assert.Equal(t, p.open, open, "purchase %d", i)
			}

			current, err := h.exec.GetSale(h.ctx, view.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.SaleStatusSuccessful, current.Status)
			assert.Equal(t, 500-tt.kept, current.FractionsSold)
			assert.Equal(t, 500-tt.kept, h.fractions(alice, view.ID))
		})
	}
}
