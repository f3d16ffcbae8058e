package store

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
)

var (
	testInitiator = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testBuyer     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testToken     = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testTreasury  = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testNow       = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestSale creates an open sale: 500 fractions, 100 kept, 300 needed
func buildTestSale(id domain.SaleID, tokenNumber string) *domain.Sale {
	return &domain.Sale{
		ID:               id,
		Initiator:        testInitiator,
		EscrowAddress:    common.BigToAddress(big.NewInt(int64(1000 + id))),
		Asset:            domain.AssetRef{Collection: common.HexToAddress("0x5555555555555555555555555555555555555555"), TokenNumber: tokenNumber},
		PaymentToken:     testToken,
		OpeningTime:      testNow.Add(-time.Hour),
		ClosingTime:      testNow.Add(time.Hour),
		FractionPrice:    big.NewInt(10_000_000),
		FractionsAmount:  500,
		MinFractionsKept: 100,
		SaleMinFractions: 300,
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
}

func buildTestEscrow(sale *domain.Sale) *domain.Escrow {
	return &domain.Escrow{
		Address:            sale.EscrowAddress,
		Kind:               domain.EscrowKindTimed,
		SaleID:             sale.ID,
		PaymentToken:       sale.PaymentToken,
		PricePerFraction:   sale.FractionPrice,
		ProtocolFeeBps:     400,
		GovernanceTreasury: testTreasury,
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	}
}

func mustNotification(t *testing.T, nt domain.NotificationType, subjectID string) *domain.Notification {
	n, err := domain.NewNotification(nt, domain.SubjectTypeSale, subjectID, testNow, map[string]string{"sale_id": subjectID})
	require.NoError(t, err)
	return n
}

// =============================================================================
// Tests
// =============================================================================

func testSales(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("ids increase", func(t *testing.T) {
		first, err := store.NextSaleID(ctx)
		require.NoError(t, err)
		second, err := store.NextSaleID(ctx)
		require.NoError(t, err)
		assert.Equal(t, first+1, second)
	})

	t.Run("create and get", func(t *testing.T) {
		sale := buildTestSale(10, "1")
		require.NoError(t, store.CreateSale(ctx, sale))

		got, err := store.GetSale(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sale.Initiator, got.Initiator)
		assert.Equal(t, sale.EscrowAddress, got.EscrowAddress)
		assert.Equal(t, sale.Asset, got.Asset)
		assert.Equal(t, 0, sale.FractionPrice.Cmp(got.FractionPrice))
		assert.Equal(t, uint64(500), got.FractionsAmount)
		assert.True(t, sale.ClosingTime.Equal(got.ClosingTime))
	})

	t.Run("get non-existent sale returns nil", func(t *testing.T) {
		got, err := store.GetSale(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update mutable fields", func(t *testing.T) {
		sale := buildTestSale(11, "2")
		require.NoError(t, store.CreateSale(ctx, sale))

		sale.FractionsSold = 250
		sale.BoughtOut = true
		sale.FractionsKeptWithdrawn = true
		require.NoError(t, store.UpdateSale(ctx, sale))

		got, err := store.GetSale(ctx, 11)
		require.NoError(t, err)
		assert.Equal(t, uint64(250), got.FractionsSold)
		assert.True(t, got.BoughtOut)
		assert.True(t, got.FractionsKeptWithdrawn)
		assert.False(t, got.NftWithdrawn)
	})

	t.Run("update non-existent sale fails", func(t *testing.T) {
		err := store.UpdateSale(ctx, buildTestSale(9998, "x"))
		assert.ErrorIs(t, err, ErrMissing)
	})

	t.Run("latest sale by asset", func(t *testing.T) {
		require.NoError(t, store.CreateSale(ctx, buildTestSale(12, "3")))
		again := buildTestSale(13, "3")
		require.NoError(t, store.CreateSale(ctx, again))

		got, err := store.GetLatestSaleByAsset(ctx, again.Asset)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.SaleID(13), got.ID)

		none, err := store.GetLatestSaleByAsset(ctx, domain.AssetRef{Collection: testToken, TokenNumber: "1"})
		require.NoError(t, err)
		assert.Nil(t, none)
	})
}

func testListSales(t *testing.T, store Store) {
	ctx := context.Background()

	open := buildTestSale(20, "20")

	upcoming := buildTestSale(21, "21")
	upcoming.OpeningTime = testNow.Add(time.Hour)
	upcoming.ClosingTime = testNow.Add(2 * time.Hour)

	successful := buildTestSale(22, "22")
	successful.ClosingTime = testNow.Add(-time.Minute)
	successful.FractionsSold = 200

	failed := buildTestSale(23, "23")
	failed.ClosingTime = testNow.Add(-time.Minute)
	failed.FractionsSold = 199

	soldOut := buildTestSale(24, "24")
	soldOut.FractionsSold = 400

	boughtOut := buildTestSale(25, "25")
	boughtOut.ClosingTime = testNow.Add(-time.Minute)
	boughtOut.FractionsSold = 300
	boughtOut.BoughtOut = true
	boughtOut.Initiator = testBuyer

	for _, s := range []*domain.Sale{open, upcoming, successful, failed, soldOut, boughtOut} {
		require.NoError(t, store.CreateSale(ctx, s))
	}

	statusOf := func(s domain.SaleStatus) *domain.SaleStatus { return &s }

	tests := []struct {
		name     string
		filter   SaleQueryFilter
		expected []domain.SaleID
		total    uint64
	}{
		{"all", SaleQueryFilter{Now: testNow}, []domain.SaleID{20, 21, 22, 23, 24, 25}, 6},
		{"open", SaleQueryFilter{Now: testNow, Status: statusOf(domain.SaleStatusOpen)}, []domain.SaleID{20}, 1},
		{"upcoming", SaleQueryFilter{Now: testNow, Status: statusOf(domain.SaleStatusUpcoming)}, []domain.SaleID{21}, 1},
		{"successful", SaleQueryFilter{Now: testNow, Status: statusOf(domain.SaleStatusSuccessful)}, []domain.SaleID{22, 24}, 2},
		{"failed", SaleQueryFilter{Now: testNow, Status: statusOf(domain.SaleStatusFailed)}, []domain.SaleID{23}, 1},
		{"bought out", SaleQueryFilter{Now: testNow, Status: statusOf(domain.SaleStatusBoughtOut)}, []domain.SaleID{25}, 1},
		{"by initiator", SaleQueryFilter{Now: testNow, Initiator: &testBuyer}, []domain.SaleID{25}, 1},
		{"paginated", SaleQueryFilter{Now: testNow, Limit: 2, Offset: 2}, []domain.SaleID{22, 23}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales, total, err := store.ListSales(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)

			ids := make([]domain.SaleID, 0, len(sales))
			for _, s := range sales {
				ids = append(ids, s.ID)
				if tt.filter.Status != nil {
					assert.Equal(t, *tt.filter.Status, s.Status(testNow))
				}
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func testSettleableSales(t *testing.T, store Store) {
	ctx := context.Background()

	closed := buildTestSale(30, "30")
	closed.ClosingTime = testNow.Add(-time.Minute)
	closed.FractionsSold = 250

	stillOpen := buildTestSale(31, "31")
	stillOpen.FractionsSold = 250

	failed := buildTestSale(32, "32")
	failed.ClosingTime = testNow.Add(-time.Minute)

	released := buildTestSale(33, "33")
	released.FractionsSold = 400

	for _, s := range []*domain.Sale{closed, stillOpen, failed, released} {
		require.NoError(t, store.CreateSale(ctx, s))
		require.NoError(t, store.CreateEscrow(ctx, buildTestEscrow(s)))
	}

	escrow, err := store.GetEscrow(ctx, released.EscrowAddress)
	require.NoError(t, err)
	escrow.SellerReleased = true
	require.NoError(t, store.UpdateEscrow(ctx, escrow))

	sales, err := store.ListSettleableSales(ctx, testNow, 10)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, domain.SaleID(30), sales[0].ID)
}

func testBuyouts(t *testing.T, store Store) {
	ctx := context.Background()

	sale := buildTestSale(40, "40")
	require.NoError(t, store.CreateSale(ctx, sale))

	first, err := store.NextBuyoutID(ctx)
	require.NoError(t, err)
	second, err := store.NextBuyoutID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first+1, second)

	requested := &domain.Buyout{
		ID:             first,
		FractionSaleID: sale.ID,
		Initiator:      testBuyer,
		BuyoutPrice:    new(big.Int),
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
	require.NoError(t, store.CreateBuyout(ctx, requested))

	got, err := store.GetBuyout(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.ParamsSet())
	assert.Equal(t, domain.BuyoutStatusRequested, got.Status(testNow))
	assert.True(t, domain.IsZeroAddress(got.BuyoutToken))

	got.BuyoutPrice = big.NewInt(12_000_000)
	got.OpeningTime = testNow
	got.ClosingTime = testNow.Add(48 * time.Hour)
	require.NoError(t, store.UpdateBuyout(ctx, got))

	proposed, err := store.GetBuyout(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.BuyoutStatusProposed, proposed.Status(testNow))
	assert.Equal(t, int64(12_000_000), proposed.BuyoutPrice.Int64())
	assert.True(t, got.ClosingTime.Equal(proposed.ClosingTime))

	later := &domain.Buyout{
		ID:             second,
		FractionSaleID: sale.ID,
		Initiator:      testInitiator,
		BuyoutPrice:    new(big.Int),
		IsSuccessful:   true,
		Unsupervised:   true,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
	require.NoError(t, store.CreateBuyout(ctx, later))

	latest, err := store.GetLatestBuyoutBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second, latest.ID)
	assert.True(t, latest.Unsupervised)

	none, err := store.GetLatestBuyoutBySale(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, none)

	missing, err := store.GetBuyout(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testEscrows(t *testing.T, store Store) {
	ctx := context.Background()

	sale := buildTestSale(50, "50")
	require.NoError(t, store.CreateSale(ctx, sale))

	buyoutID, err := store.NextBuyoutID(ctx)
	require.NoError(t, err)
	require.NoError(t, store.CreateBuyout(ctx, &domain.Buyout{
		ID:             buyoutID,
		FractionSaleID: sale.ID,
		Initiator:      testBuyer,
		BuyoutPrice:    big.NewInt(1),
	}))

	timed := buildTestEscrow(sale)
	require.NoError(t, store.CreateEscrow(ctx, timed))

	buyoutEscrow := &domain.Escrow{
		Address:          common.HexToAddress("0x6666666666666666666666666666666666666666"),
		Kind:             domain.EscrowKindBuyout,
		SaleID:           sale.ID,
		BuyoutID:         &buyoutID,
		PaymentToken:     testToken,
		PricePerFraction: big.NewInt(12_000_000),
	}
	require.NoError(t, store.CreateEscrow(ctx, buyoutEscrow))

	got, err := store.GetEscrow(ctx, timed.Address)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.EscrowKindTimed, got.Kind)
	assert.Equal(t, uint64(400), got.ProtocolFeeBps)
	assert.Equal(t, testTreasury, got.GovernanceTreasury)
	assert.Nil(t, got.BuyoutID)

	gotBuyout, err := store.GetEscrow(ctx, buyoutEscrow.Address)
	require.NoError(t, err)
	require.NotNil(t, gotBuyout.BuyoutID)
	assert.Equal(t, buyoutID, *gotBuyout.BuyoutID)
	assert.True(t, domain.IsZeroAddress(gotBuyout.GovernanceTreasury))

	got.SellerReleased = true
	require.NoError(t, store.UpdateEscrow(ctx, got))
	got, err = store.GetEscrow(ctx, timed.Address)
	require.NoError(t, err)
	assert.True(t, got.SellerReleased)

	missing, err := store.GetEscrow(ctx, common.HexToAddress("0x7777777777777777777777777777777777777777"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testNotifications(t *testing.T, store Store) {
	ctx := context.Background()

	batch := []*domain.Notification{
		mustNotification(t, domain.NotificationNewFractionsSale, "1"),
		mustNotification(t, domain.NotificationFractionsPurchased, "1"),
		mustNotification(t, domain.NotificationFractionsPurchased, "1"),
	}
	require.NoError(t, store.AppendNotifications(ctx, batch))
	assert.Less(t, batch[0].Cursor, batch[1].Cursor)
	assert.Less(t, batch[1].Cursor, batch[2].Cursor)

	anchor := batch[0].Cursor - 1
	all, err := store.GetNotifications(ctx, NotificationQueryFilter{Anchor: &anchor, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, batch[0].ID, all[0].ID)
	assert.Equal(t, domain.NotificationFractionsPurchased, all[1].Type)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(all[0].Payload, &payload))
	assert.Equal(t, "1", payload["sale_id"])

	after := batch[1].Cursor
	rest, err := store.GetNotifications(ctx, NotificationQueryFilter{Anchor: &after, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, batch[2].Cursor, rest[0].Cursor)

	limited, err := store.GetNotifications(ctx, NotificationQueryFilter{Anchor: &anchor, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func testProtocolParams(t *testing.T, store Store) {
	ctx := context.Background()

	params, err := store.GetProtocolParams(ctx)
	require.NoError(t, err)
	assert.Nil(t, params)

	saved := &domain.ProtocolParams{
		SaleFeeBps:            400,
		BuyoutFeeBps:          500,
		BuyoutMinFractionsBps: 5000,
		BuyoutOpenTimePeriod:  48 * time.Hour,
		GovernanceTreasury:    testTreasury,
		Tiers:                 domain.DefaultTierSchedule(),
	}
	require.NoError(t, store.SaveProtocolParams(ctx, saved))

	params, err = store.GetProtocolParams(ctx)
	require.NoError(t, err)
	require.NotNil(t, params)
	assert.Equal(t, saved.BuyoutFeeBps, params.BuyoutFeeBps)
	assert.Equal(t, saved.BuyoutOpenTimePeriod, params.BuyoutOpenTimePeriod)
	assert.Equal(t, saved.GovernanceTreasury, params.GovernanceTreasury)
	assert.Equal(t, saved.Tiers.FractionsAmounts, params.Tiers.FractionsAmounts)
	require.Len(t, params.Tiers.PriceLimits, len(saved.Tiers.PriceLimits))
	for i := range saved.Tiers.PriceLimits {
		assert.Equal(t, 0, saved.Tiers.PriceLimits[i].Cmp(params.Tiers.PriceLimits[i]))
	}
}

func testKeyValueStore(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("set and get key-value", func(t *testing.T) {
		require.NoError(t, store.SetKeyValue(ctx, KEY_RELAY_CURSOR, "42"))
		value, err := store.GetKeyValue(ctx, KEY_RELAY_CURSOR)
		require.NoError(t, err)
		assert.Equal(t, "42", value)
	})

	t.Run("get non-existent key returns empty string", func(t *testing.T) {
		value, err := store.GetKeyValue(ctx, "nonexistent:key")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})

	t.Run("update existing key", func(t *testing.T) {
		require.NoError(t, store.SetKeyValue(ctx, KEY_RELAY_CURSOR, "43"))
		value, err := store.GetKeyValue(ctx, KEY_RELAY_CURSOR)
		require.NoError(t, err)
		assert.Equal(t, "43", value)
	})
}

func testWithTx(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx Store) error {
			if err := tx.CreateSale(ctx, buildTestSale(60, "60")); err != nil {
				return err
			}
			return tx.AppendNotifications(ctx, []*domain.Notification{mustNotification(t, domain.NotificationNewFractionsSale, "60")})
		})
		require.NoError(t, err)

		got, err := store.GetSale(ctx, 60)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("rollback on error", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx Store) error {
			if err := tx.CreateSale(ctx, buildTestSale(61, "61")); err != nil {
				return err
			}
			if err := tx.SetKeyValue(ctx, "tx:key", "value"); err != nil {
				return err
			}
			return domain.ErrSaleNotOpen
		})
		assert.ErrorIs(t, err, domain.ErrSaleNotOpen)

		got, err := store.GetSale(ctx, 61)
		require.NoError(t, err)
		assert.Nil(t, got)

		value, err := store.GetKeyValue(ctx, "tx:key")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("reads inside tx see tx writes", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx Store) error {
			sale := buildTestSale(62, "62")
			if err := tx.CreateSale(ctx, sale); err != nil {
				return err
			}
			sale.FractionsSold = 10
			if err := tx.UpdateSale(ctx, sale); err != nil {
				return err
			}
			got, err := tx.GetSale(ctx, 62)
			if err != nil {
				return err
			}
			assert.Equal(t, uint64(10), got.FractionsSold)
			return nil
		})
		require.NoError(t, err)
	})
}

// RunStoreTests runs all store tests against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"Sales", testSales},
		{"ListSales", testListSales},
		{"SettleableSales", testSettleableSales},
		{"Buyouts", testBuyouts},
		{"Escrows", testEscrows},
		{"Notifications", testNotifications},
		{"ProtocolParams", testProtocolParams},
		{"KeyValueStore", testKeyValueStore},
		{"WithTx", testWithTx},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
