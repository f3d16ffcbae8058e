package executor_test

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/executor"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/mocks"
	"github.com/feral-file/ff-fractions/internal/registry"
	"github.com/feral-file/ff-fractions/internal/sale"
	"github.com/feral-file/ff-fractions/internal/store"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	admin      = common.HexToAddress("0x000000000000000000000000000000000000ad01")
	issuer     = common.HexToAddress("0x0000000000000000000000000000000000001551")
	alice      = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob        = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol      = common.HexToAddress("0x000000000000000000000000000000000000ca01")
	treasury   = common.HexToAddress("0x000000000000000000000000000000000000f00d")
	usdc       = common.HexToAddress("0x000000000000000000000000000000000000c0de")
	collection = common.HexToAddress("0x0000000000000000000000000000000000c011ec")
)

var startTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// oneUnit is 1 payment token unit at 6 decimals. It prices a sale in the first tier: 500 fractions of 2000.
var oneUnit = big.NewInt(1_000_000)

// harness runs the protocol over an in-memory world with a controllable clock
type harness struct {
	t     *testing.T
	ctx   context.Context
	ctrl  *gomock.Controller
	clock *mocks.MockClock
	now   time.Time

	world     *ledger.World
	store     store.Store
	allowList registry.AllowListRegistry
	roles     registry.RoleRegistry
	addrs     executor.Addresses
	exec      executor.Executor
}

func newHarness(t *testing.T) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		t:     t,
		ctx:   context.Background(),
		ctrl:  ctrl,
		clock: mocks.NewMockClock(ctrl),
		now:   startTime,
		world: ledger.NewWorld(),
		store: store.NewMemoryStore(),
		addrs: executor.DefaultAddresses(),
	}
	h.clock.EXPECT().Now().DoAndReturn(func() time.Time { return h.now }).AnyTimes()

	h.allowList = registry.NewAllowListRegistry(alice, bob, carol)
	roles, err := registry.NewRoleRegistry(map[domain.Capability][]common.Address{
		domain.CapabilityAdmin:      {admin},
		domain.CapabilitySaleIssuer: {issuer},
	})
	require.NoError(t, err)
	h.roles = roles

	h.exec = executor.NewWorldExecutor(h.world, h.store, h.allowList, h.roles, h.addrs, h.clock)
	require.NoError(t, h.exec.Bootstrap(h.ctx, defaultParams()))

	t.Cleanup(ctrl.Finish)
	return h
}

func defaultParams() *domain.ProtocolParams {
	return &domain.ProtocolParams{
		SaleFeeBps:            domain.DEFAULT_SALE_FEE_BPS,
		BuyoutFeeBps:          domain.DEFAULT_BUYOUT_FEE_BPS,
		BuyoutMinFractionsBps: domain.DEFAULT_BUYOUT_MIN_FRACTIONS_BPS,
		BuyoutOpenTimePeriod:  domain.DEFAULT_BUYOUT_OPEN_TIME_PERIOD,
		GovernanceTreasury:    treasury,
		Tiers:                 domain.DefaultTierSchedule(),
	}
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func (h *harness) asset(tokenNumber string) domain.AssetRef {
	ref, err := domain.NewAssetRef(collection, tokenNumber)
	require.NoError(h.t, err)
	return ref
}

// mintAsset gives a fresh asset to the issuer
func (h *harness) mintAsset(tokenNumber string) domain.AssetRef {
	ref := h.asset(tokenNumber)
	require.NoError(h.t, h.world.MintAsset(h.ctx, ref, issuer))
	return ref
}

// fund mints payment tokens to holder and approves spender for the whole amount
func (h *harness) fund(holder, spender common.Address, amount int64) {
	require.NoError(h.t, h.world.MintValue(h.ctx, usdc, holder, big.NewInt(amount)))
	allowance, err := h.world.Allowance(h.ctx, usdc, holder, spender)
	require.NoError(h.t, err)
	require.NoError(h.t, h.world.Approve(h.ctx, usdc, holder, spender, new(big.Int).Add(allowance, big.NewInt(amount))))
}

func (h *harness) saleInput(asset domain.AssetRef, kept, saleMin uint64) sale.SetupSaleInput {
	return sale.SetupSaleInput{
		Asset:            asset,
		PaymentToken:     usdc,
		OpeningTime:      h.now,
		ClosingTime:      h.now.Add(time.Hour),
		Price:            oneUnit,
		MinFractionsKept: kept,
		SaleMinFractions: saleMin,
	}
}

// openSale sets up a one hour sale of a fresh asset: 500 fractions at 2000, 100 kept, 400 to succeed
func (h *harness) openSale(tokenNumber string) *executor.SaleView {
	view, err := h.exec.SetupSale(h.ctx, issuer, h.saleInput(h.mintAsset(tokenNumber), 100, 400))
	require.NoError(h.t, err)
	return view
}

func (h *harness) buy(buyer common.Address, id domain.SaleID, amount uint64) {
	h.fund(buyer, h.addrs.SaleManager, int64(amount)*2000)
	_, err := h.exec.BuyFractions(h.ctx, buyer, id, amount)
	require.NoError(h.t, err)
}

func (h *harness) fractions(holder common.Address, id domain.SaleID) uint64 {
	b, err := h.world.BalanceOf(h.ctx, holder, id)
	require.NoError(h.t, err)
	return b
}

func (h *harness) value(holder common.Address) int64 {
	b, err := h.world.Balance(h.ctx, usdc, holder)
	require.NoError(h.t, err)
	return b.Int64()
}

func (h *harness) owner(asset domain.AssetRef) common.Address {
	o, err := h.world.OwnerOf(h.ctx, asset)
	require.NoError(h.t, err)
	return o
}

func (h *harness) notificationTypes() []domain.NotificationType {
	ns, err := h.exec.GetNotifications(h.ctx, store.NotificationQueryFilter{Limit: store.MAX_QUERY_LIMIT})
	require.NoError(h.t, err)
	out := make([]domain.NotificationType, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Type)
	}
	return out
}

// successfulSale runs a sale to success: alice buys 200, bob buys 150, then the sale closes
func (h *harness) successfulSale(tokenNumber string) *executor.SaleView {
	view := h.openSale(tokenNumber)
	h.buy(alice, view.ID, 200)
	h.buy(bob, view.ID, 150)
	h.advance(2 * time.Hour)
	return view
}
