package buyout

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/store"
)

// ExecutionResult describes an executed buyout
type ExecutionResult struct {
	Buyout        *domain.Buyout
	Sale          *domain.Sale
	Escrow        *domain.Escrow
	CallerBalance uint64
	TotalPayment  *big.Int
	Fee           *big.Int
}

// Manager runs buyouts of successful sales
type Manager interface {
	// Address is the buyout manager account: buyout escrow owner and fraction operator
	Address() common.Address

	RequestBuyout(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (*domain.Buyout, error)
	SetBuyoutParams(ctx context.Context, tx store.Store, caller common.Address, buyoutID domain.BuyoutID, price *big.Int) (*domain.Buyout, error)
	ExecuteBuyout(ctx context.Context, tx store.Store, caller common.Address, buyoutID domain.BuyoutID) (*ExecutionResult, error)
	// BuyoutUnsupervised reclaims the asset for a caller holding every fraction
	BuyoutUnsupervised(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (*ExecutionResult, error)

	SetBuyoutFee(ctx context.Context, tx store.Store, caller common.Address, bps uint64) error
	SetBuyoutMinFractions(ctx context.Context, tx store.Store, caller common.Address, bps uint64) error
	SetBuyoutOpenTimePeriod(ctx context.Context, tx store.Store, caller common.Address, seconds int64) error
}

// Deps are the collaborators of the buyout manager
type Deps struct {
	Fractions   ledger.FractionLedger
	Value       ledger.ValueToken
	Assets      ledger.AssetCustody
	Permissions ledger.Permissions
	Escrows     escrow.Manager
	Clock       adapter.Clock
	// SaleManager is the custodian of fractionalized assets
	SaleManager common.Address
}

type manager struct {
	address common.Address
	deps    Deps
}

// NewManager creates a buyout manager acting as address
func NewManager(address common.Address, deps Deps) Manager {
	return &manager{address: address, deps: deps}
}

func (m *manager) Address() common.Address {
	return m.address
}

func (m *manager) emit(ctx context.Context, tx store.Store, t domain.NotificationType, id domain.BuyoutID, payload any) error {
	_, err := store.AppendNotification(ctx, tx, t, domain.SubjectTypeBuyout, id.String(), m.deps.Clock.Now(), payload)
	return err
}

func (m *manager) getSale(ctx context.Context, tx store.Store, id domain.SaleID) (*domain.Sale, error) {
	sale, err := tx.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSaleID, id)
	}
	return sale, nil
}

func (m *manager) getBuyout(ctx context.Context, tx store.Store, id domain.BuyoutID) (*domain.Buyout, error) {
	b, err := tx.GetBuyout(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidBuyoutID, id)
	}
	return b, nil
}

// checkBuyable gates both buyout flavors on the state of the sale
func (m *manager) checkBuyable(sale *domain.Sale) error {
	if sale.BoughtOut {
		return domain.ErrSaleAlreadyBoughtOut
	}
	if !sale.IsClosed(m.deps.Clock.Now()) {
		return domain.ErrSaleNotFinished
	}
	if !sale.IsSuccessful() {
		return domain.ErrSaleUnsuccessful
	}
	return nil
}

func (m *manager) RequestBuyout(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (*domain.Buyout, error) {
	sale, err := m.getSale(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	if err := m.checkBuyable(sale); err != nil {
		return nil, err
	}

	now := m.deps.Clock.Now()
	latest, err := tx.GetLatestBuyoutBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsPending(now) {
		return nil, domain.ErrBuyoutAlreadyStarted
	}

	id, err := tx.NextBuyoutID(ctx)
	if err != nil {
		return nil, err
	}
	b := &domain.Buyout{
		ID:             id,
		FractionSaleID: saleID,
		Initiator:      caller,
		BuyoutPrice:    new(big.Int),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.CreateBuyout(ctx, b); err != nil {
		return nil, err
	}

	err = m.emit(ctx, tx, domain.NotificationBuyoutRequested, id, domain.BuyoutRequestedPayload{
		SaleID:    saleID,
		Initiator: caller,
		BuyoutID:  id,
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (m *manager) SetBuyoutParams(ctx context.Context, tx store.Store, caller common.Address, buyoutID domain.BuyoutID, price *big.Int) (*domain.Buyout, error) {
	if err := ledger.RequireCapability(ctx, m.deps.Permissions, domain.CapabilityAdmin, caller); err != nil {
		return nil, err
	}

	b, err := m.getBuyout(ctx, tx, buyoutID)
	if err != nil {
		return nil, err
	}
	if b.ParamsSet() || b.IsSuccessful {
		return nil, domain.ErrBuyoutAlreadyStarted
	}
	if price == nil || price.Sign() < 0 {
		return nil, domain.ErrInvalidPrice
	}

	sale, err := m.getSale(ctx, tx, b.FractionSaleID)
	if err != nil {
		return nil, err
	}
	if sale.BoughtOut {
		return nil, domain.ErrSaleAlreadyBoughtOut
	}

	params, err := store.LoadProtocolParams(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := m.deps.Clock.Now()
	b.BuyoutPrice = domain.CloneBig(price)
	b.OpeningTime = now
	b.ClosingTime = now.Add(params.BuyoutOpenTimePeriod)
	b.UpdatedAt = now
	if err := tx.UpdateBuyout(ctx, b); err != nil {
		return nil, err
	}

	err = m.emit(ctx, tx, domain.NotificationBuyoutParamsSet, buyoutID, domain.BuyoutParamsSetPayload{
		BuyoutID: buyoutID,
		Buyout:   b,
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

// reclaim burns the caller's fractions and hands them the asset out of custody
func (m *manager) reclaim(ctx context.Context, caller common.Address, sale *domain.Sale, balance uint64) error {
	if balance > 0 {
		if err := m.deps.Fractions.OperatorBurn(ctx, m.address, caller, sale.ID, balance); err != nil {
			return err
		}
	}
	return m.deps.Assets.TransferAsset(ctx, m.address, m.deps.SaleManager, caller, sale.Asset)
}

func (m *manager) ExecuteBuyout(ctx context.Context, tx store.Store, caller common.Address, buyoutID domain.BuyoutID) (*ExecutionResult, error) {
	b, err := m.getBuyout(ctx, tx, buyoutID)
	if err != nil {
		return nil, err
	}

	now := m.deps.Clock.Now()
	if b.Status(now) != domain.BuyoutStatusProposed {
		return nil, domain.ErrBuyoutNotOpen
	}

	sale, err := m.getSale(ctx, tx, b.FractionSaleID)
	if err != nil {
		return nil, err
	}
	if sale.BoughtOut {
		return nil, domain.ErrSaleAlreadyBoughtOut
	}

	params, err := store.LoadProtocolParams(ctx, tx)
	if err != nil {
		return nil, err
	}

	balance, err := m.deps.Fractions.BalanceOf(ctx, caller, sale.ID)
	if err != nil {
		return nil, err
	}
	required := sale.FractionsAmount * params.BuyoutMinFractionsBps / domain.BPS_DENOMINATOR
	if balance < required {
		return nil, fmt.Errorf("%w: holds %d, needs %d", domain.ErrNotEnoughFractions, balance, required)
	}
	if balance >= sale.FractionsAmount {
		return nil, domain.ErrFullOwnershipHeld
	}

	totalPayment := domain.MulFractions(sale.FractionsAmount-balance, b.BuyoutPrice)
	fee := domain.MulBps(totalPayment, params.BuyoutFeeBps)
	escrowAddress := escrow.BuyoutAddress(m.address, buyoutID)

	if err := m.deps.Value.TransferFrom(ctx, sale.PaymentToken, m.address, caller, escrowAddress, totalPayment); err != nil {
		return nil, err
	}
	if fee.Sign() > 0 {
		if err := m.deps.Value.TransferFrom(ctx, sale.PaymentToken, m.address, caller, params.GovernanceTreasury, fee); err != nil {
			return nil, err
		}
	}
	if err := m.reclaim(ctx, caller, sale, balance); err != nil {
		return nil, err
	}

	b.IsSuccessful = true
	b.BuyoutToken = escrowAddress
	b.UpdatedAt = now
	if err := tx.UpdateBuyout(ctx, b); err != nil {
		return nil, err
	}

	sale.BoughtOut = true
	sale.UpdatedAt = now
	if err := tx.UpdateSale(ctx, sale); err != nil {
		return nil, err
	}

	e, err := m.deps.Escrows.OpenBuyout(ctx, tx, sale, b)
	if err != nil {
		return nil, err
	}

	err = m.emit(ctx, tx, domain.NotificationBuyoutExecuted, buyoutID, domain.BuyoutExecutedPayload{
		BuyoutID:      buyoutID,
		SaleID:        sale.ID,
		Caller:        caller,
		CallerBalance: balance,
		TotalPayment:  totalPayment,
		Fee:           fee,
	})
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Buyout executed",
		zap.Uint64("buyout_id", uint64(buyoutID)),
		zap.Uint64("sale_id", uint64(sale.ID)),
		zap.String("caller", caller.Hex()),
		zap.String("total_payment", totalPayment.String()),
		zap.String("fee", fee.String()))

	return &ExecutionResult{
		Buyout:        b,
		Sale:          sale,
		Escrow:        e,
		CallerBalance: balance,
		TotalPayment:  totalPayment,
		Fee:           fee,
	}, nil
}

func (m *manager) BuyoutUnsupervised(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (*ExecutionResult, error) {
	sale, err := m.getSale(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	if err := m.checkBuyable(sale); err != nil {
		return nil, err
	}

	balance, err := m.deps.Fractions.BalanceOf(ctx, caller, saleID)
	if err != nil {
		return nil, err
	}
	if balance < sale.FractionsAmount {
		return nil, fmt.Errorf("%w: holds %d of %d", domain.ErrNotEnoughFractions, balance, sale.FractionsAmount)
	}

	now := m.deps.Clock.Now()

	// A pending supervised attempt can never execute once the sale is bought out; close its window
	latest, err := tx.GetLatestBuyoutBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsPending(now) {
		if !latest.ParamsSet() {
			latest.OpeningTime = now
		}
		latest.ClosingTime = now
		latest.UpdatedAt = now
		if err := tx.UpdateBuyout(ctx, latest); err != nil {
			return nil, err
		}
	}

	id, err := tx.NextBuyoutID(ctx)
	if err != nil {
		return nil, err
	}
	b := &domain.Buyout{
		ID:             id,
		FractionSaleID: saleID,
		Initiator:      caller,
		BuyoutPrice:    new(big.Int),
		OpeningTime:    now,
		ClosingTime:    now,
		IsSuccessful:   true,
		Unsupervised:   true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.CreateBuyout(ctx, b); err != nil {
		return nil, err
	}

	if err := m.reclaim(ctx, caller, sale, balance); err != nil {
		return nil, err
	}

	sale.BoughtOut = true
	sale.UpdatedAt = now
	if err := tx.UpdateSale(ctx, sale); err != nil {
		return nil, err
	}

	err = m.emit(ctx, tx, domain.NotificationBuyoutExecuted, id, domain.BuyoutExecutedPayload{
		BuyoutID:      id,
		SaleID:        saleID,
		Caller:        caller,
		CallerBalance: balance,
		TotalPayment:  new(big.Int),
		Fee:           new(big.Int),
		Unsupervised:  true,
	})
	if err != nil {
		return nil, err
	}

	return &ExecutionResult{
		Buyout:        b,
		Sale:          sale,
		CallerBalance: balance,
		TotalPayment:  new(big.Int),
		Fee:           new(big.Int),
	}, nil
}
