package escrow

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/store"
)

// TimedAddress derives the timed escrow address of a sale
func TimedAddress(saleManager common.Address, saleID domain.SaleID) common.Address {
	return crypto.CreateAddress(saleManager, uint64(saleID))
}

// BuyoutAddress derives the escrow address of an executed buyout
func BuyoutAddress(buyoutManager common.Address, buyoutID domain.BuyoutID) common.Address {
	return crypto.CreateAddress(buyoutManager, uint64(buyoutID))
}

// Config holds the protocol accounts escrows act through
type Config struct {
	// SaleManager owns timed escrows and custodies kept fractions
	SaleManager common.Address
	// BuyoutManager owns buyout escrows
	BuyoutManager common.Address
}

// ReleaseResult describes a completed holder release
type ReleaseResult struct {
	Escrow  *domain.Escrow
	Holders []common.Address
	Amounts []uint64
	Paid    *big.Int
}

// SellerReleaseResult describes a completed seller release
type SellerReleaseResult struct {
	Escrow       *domain.Escrow
	Initiator    common.Address
	SellerAmount *big.Int
	Fee          *big.Int
}

// Manager settles sale and buyout proceeds
type Manager interface {
	// OpenTimed records the timed escrow of a new sale, capturing the current sale fee and treasury
	OpenTimed(ctx context.Context, tx store.Store, sale *domain.Sale, params *domain.ProtocolParams) (*domain.Escrow, error)

	// OpenBuyout records the escrow of an executed buyout
	OpenBuyout(ctx context.Context, tx store.Store, sale *domain.Sale, buyout *domain.Buyout) (*domain.Escrow, error)

	// Release burns each holder's fractions and pays them out at the escrow price
	Release(ctx context.Context, tx store.Store, caller, address common.Address, holders []common.Address) (*ReleaseResult, error)

	// ReleaseSeller pays the proceeds of a successful sale to its initiator, minus the protocol fee
	ReleaseSeller(ctx context.Context, tx store.Store, caller, address common.Address) (*SellerReleaseResult, error)

	// IsProtocolAccount reports whether addr is a manager account or an escrow, including the
	// timed escrow of saleID whether or not it was recorded yet
	IsProtocolAccount(ctx context.Context, s store.Store, addr common.Address, saleID domain.SaleID) (bool, error)
}

type manager struct {
	cfg       Config
	fractions ledger.FractionLedger
	value     ledger.ValueToken
	clock     adapter.Clock
}

// NewManager creates an escrow manager
func NewManager(cfg Config, fractions ledger.FractionLedger, value ledger.ValueToken, clock adapter.Clock) Manager {
	return &manager{
		cfg:       cfg,
		fractions: fractions,
		value:     value,
		clock:     clock,
	}
}

func (m *manager) OpenTimed(ctx context.Context, tx store.Store, sale *domain.Sale, params *domain.ProtocolParams) (*domain.Escrow, error) {
	now := m.clock.Now()
	e := &domain.Escrow{
		Address:            sale.EscrowAddress,
		Kind:               domain.EscrowKindTimed,
		SaleID:             sale.ID,
		PaymentToken:       sale.PaymentToken,
		PricePerFraction:   domain.CloneBig(sale.FractionPrice),
		ProtocolFeeBps:     params.SaleFeeBps,
		GovernanceTreasury: params.GovernanceTreasury,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := tx.CreateEscrow(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (m *manager) OpenBuyout(ctx context.Context, tx store.Store, sale *domain.Sale, buyout *domain.Buyout) (*domain.Escrow, error) {
	now := m.clock.Now()
	id := buyout.ID
	e := &domain.Escrow{
		Address:          buyout.BuyoutToken,
		Kind:             domain.EscrowKindBuyout,
		SaleID:           sale.ID,
		BuyoutID:         &id,
		PaymentToken:     sale.PaymentToken,
		PricePerFraction: domain.CloneBig(buyout.BuyoutPrice),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.CreateEscrow(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (m *manager) load(ctx context.Context, tx store.Store, address common.Address) (*domain.Escrow, error) {
	e, err := tx.GetEscrow(ctx, address)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEscrowNotFound, address.Hex())
	}
	return e, nil
}

// operatorOf returns the manager account that burns on behalf of an escrow
func (m *manager) operatorOf(e *domain.Escrow) common.Address {
	if e.Kind == domain.EscrowKindBuyout {
		return m.cfg.BuyoutManager
	}
	return m.cfg.SaleManager
}

func (m *manager) IsProtocolAccount(ctx context.Context, s store.Store, addr common.Address, saleID domain.SaleID) (bool, error) {
	if addr == m.cfg.SaleManager || addr == m.cfg.BuyoutManager || addr == TimedAddress(m.cfg.SaleManager, saleID) {
		return true, nil
	}
	e, err := s.GetEscrow(ctx, addr)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// checkReleasable enforces the variant specific gate of a holder release
func (m *manager) checkReleasable(ctx context.Context, tx store.Store, e *domain.Escrow) error {
	switch e.Kind {
	case domain.EscrowKindTimed:
		sale, err := tx.GetSale(ctx, e.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrInvalidSaleID
		}
		if !sale.IsClosed(m.clock.Now()) {
			return domain.ErrSaleNotFinished
		}
		if sale.IsSuccessful() {
			return domain.ErrSaleDidNotFail
		}
	case domain.EscrowKindBuyout:
		if e.BuyoutID == nil {
			return domain.ErrInvalidBuyoutID
		}
		buyout, err := tx.GetBuyout(ctx, *e.BuyoutID)
		if err != nil {
			return err
		}
		if buyout == nil {
			return domain.ErrInvalidBuyoutID
		}
		if !buyout.IsSuccessful {
			return domain.ErrBuyoutNotExecuted
		}
	default:
		return fmt.Errorf("unknown escrow kind: %s", e.Kind)
	}
	return nil
}

func (m *manager) Release(ctx context.Context, tx store.Store, caller, address common.Address, holders []common.Address) (*ReleaseResult, error) {
	e, err := m.load(ctx, tx, address)
	if err != nil {
		return nil, err
	}
	if err := m.checkReleasable(ctx, tx, e); err != nil {
		return nil, err
	}
	if len(holders) == 0 {
		return nil, domain.ErrEmptyHolders
	}

	operator := m.operatorOf(e)
	amounts := make([]uint64, len(holders))
	paid := new(big.Int)

	for i, holder := range holders {
		protocol, err := m.IsProtocolAccount(ctx, tx, holder, e.SaleID)
		if err != nil {
			return nil, err
		}
		if protocol {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidHolder, holder.Hex())
		}

		balance, err := m.fractions.BalanceOf(ctx, holder, e.SaleID)
		if err != nil {
			return nil, err
		}
		if balance == 0 {
			return nil, fmt.Errorf("%w: holder %s", domain.ErrFractionsAmountZero, holder.Hex())
		}

		if err := m.fractions.OperatorBurn(ctx, operator, holder, e.SaleID, balance); err != nil {
			return nil, err
		}

		payment := domain.MulFractions(balance, e.PricePerFraction)
		if err := m.value.Transfer(ctx, e.PaymentToken, e.Address, holder, payment); err != nil {
			return nil, err
		}

		amounts[i] = balance
		paid.Add(paid, payment)
	}

	_, err = store.AppendNotification(ctx, tx,
		domain.NotificationTokensReleased,
		domain.SubjectTypeEscrow,
		e.Address.Hex(),
		m.clock.Now(),
		domain.TokensReleasedPayload{
			Escrow:       e.Address,
			Holders:      holders,
			PaymentToken: e.PaymentToken,
			SaleID:       e.SaleID,
			Amounts:      amounts,
			Price:        e.PricePerFraction,
		})
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Released escrow holders",
		zap.String("escrow", e.Address.Hex()),
		zap.String("caller", caller.Hex()),
		zap.Int("holders", len(holders)),
		zap.String("paid", paid.String()))

	return &ReleaseResult{Escrow: e, Holders: holders, Amounts: amounts, Paid: paid}, nil
}

func (m *manager) ReleaseSeller(ctx context.Context, tx store.Store, caller, address common.Address) (*SellerReleaseResult, error) {
	e, err := m.load(ctx, tx, address)
	if err != nil {
		return nil, err
	}
	if e.Kind != domain.EscrowKindTimed {
		return nil, domain.ErrNotTimedEscrow
	}

	sale, err := tx.GetSale(ctx, e.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrInvalidSaleID
	}
	if !sale.IsClosed(m.clock.Now()) {
		return nil, domain.ErrSaleNotFinished
	}
	if !sale.IsSuccessful() {
		return nil, domain.ErrSaleUnsuccessful
	}
	if e.SellerReleased {
		return nil, domain.ErrSellerAlreadyReleased
	}

	balance, err := m.value.Balance(ctx, e.PaymentToken, e.Address)
	if err != nil {
		return nil, err
	}
	fee := domain.MulBps(balance, e.ProtocolFeeBps)
	sellerAmount := new(big.Int).Sub(balance, fee)

	if fee.Sign() > 0 {
		if err := m.value.Transfer(ctx, e.PaymentToken, e.Address, e.GovernanceTreasury, fee); err != nil {
			return nil, err
		}
	}
	if sellerAmount.Sign() > 0 {
		if err := m.value.Transfer(ctx, e.PaymentToken, e.Address, sale.Initiator, sellerAmount); err != nil {
			return nil, err
		}
	}

	e.SellerReleased = true
	e.UpdatedAt = m.clock.Now()
	if err := tx.UpdateEscrow(ctx, e); err != nil {
		return nil, err
	}

	_, err = store.AppendNotification(ctx, tx,
		domain.NotificationTokensSellerReleased,
		domain.SubjectTypeEscrow,
		e.Address.Hex(),
		m.clock.Now(),
		domain.TokensSellerReleasedPayload{
			Initiator:    sale.Initiator,
			Escrow:       e.Address,
			SaleID:       e.SaleID,
			SellerAmount: sellerAmount,
			Fee:          fee,
		})
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Released seller proceeds",
		zap.String("escrow", e.Address.Hex()),
		zap.String("caller", caller.Hex()),
		zap.String("seller_amount", sellerAmount.String()),
		zap.String("fee", fee.String()))

	return &SellerReleaseResult{Escrow: e, Initiator: sale.Initiator, SellerAmount: sellerAmount, Fee: fee}, nil
}
