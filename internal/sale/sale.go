package sale

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/store"
)

// SetupSaleInput holds the parameters of a new sale. Price is the aggregate sale value.
type SetupSaleInput struct {
	Asset            domain.AssetRef
	PaymentToken     common.Address
	OpeningTime      time.Time
	ClosingTime      time.Time
	Price            *big.Int
	MinFractionsKept uint64
	SaleMinFractions uint64
}

// Manager runs the sale lifecycle
type Manager interface {
	// Address is the sale manager account: asset custodian, kept fractions holder and fraction operator
	Address() common.Address

	SetupSale(ctx context.Context, tx store.Store, caller common.Address, input SetupSaleInput) (*domain.Sale, error)
	BuyFractions(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID, amount uint64) (*domain.Sale, error)
	WithdrawFailedSaleNft(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (*domain.Sale, error)
	// WithdrawFractionsKept moves the kept and unsold fractions to the initiator and returns the amount
	WithdrawFractionsKept(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (uint64, error)
	// TransferFractions is a holder initiated peer transfer
	TransferFractions(ctx context.Context, tx store.Store, caller, to common.Address, saleID domain.SaleID, amount uint64) error

	// CheckTransfer applies the peer transfer restriction. Protocol accounts can neither send nor receive.
	CheckTransfer(ctx context.Context, s store.Store, from, to common.Address, saleID domain.SaleID) error
	// OnAssetReceived accepts custody only from the sale manager itself
	OnAssetReceived(ctx context.Context, operator, from common.Address, asset domain.AssetRef) error

	SetSaleFee(ctx context.Context, tx store.Store, caller common.Address, bps uint64) error
	SetGovernanceTreasury(ctx context.Context, tx store.Store, caller, treasury common.Address) error
	SetTierSchedule(ctx context.Context, tx store.Store, caller common.Address, tiers domain.TierSchedule) error
}

// Deps are the collaborators of the sale manager
type Deps struct {
	Fractions   ledger.FractionLedger
	Value       ledger.ValueToken
	Assets      ledger.AssetCustody
	AllowList   ledger.AllowList
	Permissions ledger.Permissions
	Escrows     escrow.Manager
	Clock       adapter.Clock
}

type manager struct {
	address common.Address
	deps    Deps
}

// NewManager creates a sale manager acting as address
func NewManager(address common.Address, deps Deps) Manager {
	return &manager{address: address, deps: deps}
}

func (m *manager) Address() common.Address {
	return m.address
}

func (m *manager) getSale(ctx context.Context, s store.Store, id domain.SaleID) (*domain.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSaleID, id)
	}
	return sale, nil
}

func (m *manager) emit(ctx context.Context, tx store.Store, t domain.NotificationType, saleID domain.SaleID, payload any) error {
	_, err := store.AppendNotification(ctx, tx, t, domain.SubjectTypeSale, saleID.String(), m.deps.Clock.Now(), payload)
	return err
}

func validateSetup(input SetupSaleInput, fractionsAmount uint64, now time.Time) error {
	if input.SaleMinFractions == 0 || input.SaleMinFractions > fractionsAmount {
		return fmt.Errorf("%w: %d not in (0, %d]", domain.ErrSaleMinFractionsOutOfRange, input.SaleMinFractions, fractionsAmount)
	}
	if input.MinFractionsKept >= fractionsAmount {
		return fmt.Errorf("%w: %d >= %d", domain.ErrMinFractionsKeptOutOfRange, input.MinFractionsKept, fractionsAmount)
	}
	if input.SaleMinFractions <= input.MinFractionsKept {
		return fmt.Errorf("%w: must exceed the %d fractions kept", domain.ErrSaleMinFractionsOutOfRange, input.MinFractionsKept)
	}
	if !input.OpeningTime.Before(input.ClosingTime) {
		return domain.ErrInvalidSaleWindow
	}
	if input.ClosingTime.Before(now) {
		return domain.ErrClosingTimeInPast
	}
	return nil
}

func (m *manager) SetupSale(ctx context.Context, tx store.Store, caller common.Address, input SetupSaleInput) (*domain.Sale, error) {
	if err := ledger.RequireCapability(ctx, m.deps.Permissions, domain.CapabilitySaleIssuer, caller); err != nil {
		return nil, err
	}
	if domain.IsZeroAddress(input.PaymentToken) {
		return nil, fmt.Errorf("payment token: %w", domain.ErrNullAddress)
	}

	params, err := store.LoadProtocolParams(ctx, tx)
	if err != nil {
		return nil, err
	}

	fractionsAmount, err := params.Tiers.FractionsFor(input.Price)
	if err != nil {
		return nil, err
	}
	fractionPrice := new(big.Int).Quo(input.Price, new(big.Int).SetUint64(fractionsAmount))
	if fractionPrice.Sign() <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	now := m.deps.Clock.Now()
	if err := validateSetup(input, fractionsAmount, now); err != nil {
		return nil, err
	}

	previous, err := tx.GetLatestSaleByAsset(ctx, input.Asset)
	if err != nil {
		return nil, err
	}
	if previous != nil && !previous.NftWithdrawn && !previous.BoughtOut {
		return nil, domain.ErrAssetAlreadyInSale
	}

	owner, err := m.deps.Assets.OwnerOf(ctx, input.Asset)
	if err != nil {
		return nil, err
	}
	if owner != caller {
		return nil, domain.ErrNotOwner
	}
	if err := m.deps.Assets.TransferAsset(ctx, m.address, caller, m.address, input.Asset); err != nil {
		return nil, fmt.Errorf("failed to take custody of %s: %w", input.Asset, err)
	}

	id, err := tx.NextSaleID(ctx)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ID:               id,
		Initiator:        caller,
		EscrowAddress:    escrow.TimedAddress(m.address, id),
		Asset:            input.Asset,
		PaymentToken:     input.PaymentToken,
		OpeningTime:      input.OpeningTime.UTC(),
		ClosingTime:      input.ClosingTime.UTC(),
		FractionPrice:    fractionPrice,
		FractionsAmount:  fractionsAmount,
		MinFractionsKept: input.MinFractionsKept,
		SaleMinFractions: input.SaleMinFractions,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if sale.MinFractionsKept > 0 {
		if err := m.deps.Fractions.Mint(ctx, m.address, id, sale.MinFractionsKept); err != nil {
			return nil, err
		}
	}
	if err := m.deps.Fractions.Mint(ctx, sale.EscrowAddress, id, sale.FractionsForSale()); err != nil {
		return nil, err
	}

	if err := tx.CreateSale(ctx, sale); err != nil {
		return nil, err
	}
	if _, err := m.deps.Escrows.OpenTimed(ctx, tx, sale, params); err != nil {
		return nil, err
	}

	err = m.emit(ctx, tx, domain.NotificationNewFractionsSale, id, domain.NewFractionsSalePayload{
		SaleID: id,
		Escrow: sale.EscrowAddress,
		Sale:   sale,
	})
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Sale set up",
		zap.Uint64("sale_id", uint64(id)),
		zap.String("asset", input.Asset.String()),
		zap.Uint64("fractions_amount", fractionsAmount),
		zap.String("fraction_price", fractionPrice.String()))

	return sale, nil
}

func (m *manager) BuyFractions(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID, amount uint64) (*domain.Sale, error) {
	sale, err := m.getSale(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}

	now := m.deps.Clock.Now()
	if !sale.IsOpen(now) {
		return nil, domain.ErrSaleNotOpen
	}

	allowed, err := m.deps.AllowList.IsAddressAllowed(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrAddressNotAllowed
	}

	if amount == 0 || amount > sale.FractionsAvailable() {
		return nil, fmt.Errorf("%w: requested %d, available %d", domain.ErrNotEnoughFractionsAvailable, amount, sale.FractionsAvailable())
	}

	payment := domain.MulFractions(amount, sale.FractionPrice)
	if err := m.deps.Value.TransferFrom(ctx, sale.PaymentToken, m.address, caller, sale.EscrowAddress, payment); err != nil {
		return nil, err
	}
	if err := m.deps.Fractions.OperatorTransfer(ctx, m.address, sale.EscrowAddress, caller, saleID, amount); err != nil {
		return nil, err
	}

	sale.FractionsSold += amount
	sale.UpdatedAt = now
	if err := tx.UpdateSale(ctx, sale); err != nil {
		return nil, err
	}

	err = m.emit(ctx, tx, domain.NotificationFractionsPurchased, saleID, domain.FractionsPurchasedPayload{
		SaleID:  saleID,
		Buyer:   caller,
		Amount:  amount,
		Payment: payment,
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func (m *manager) WithdrawFailedSaleNft(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (*domain.Sale, error) {
	sale, err := m.getSale(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	if caller != sale.Initiator {
		return nil, domain.ErrMustBeSaleInitiator
	}

	now := m.deps.Clock.Now()
	if !sale.IsClosed(now) {
		return nil, domain.ErrSaleNotFinished
	}
	if sale.IsSuccessful() {
		return nil, domain.ErrCannotTradeNftBack
	}
	if sale.NftWithdrawn {
		return nil, domain.ErrNftAlreadyWithdrawn
	}

	if err := m.deps.Assets.TransferAsset(ctx, m.address, m.address, sale.Initiator, sale.Asset); err != nil {
		return nil, err
	}

	sale.NftWithdrawn = true
	sale.UpdatedAt = now
	if err := tx.UpdateSale(ctx, sale); err != nil {
		return nil, err
	}

	err = m.emit(ctx, tx, domain.NotificationFailedSaleNftWithdrawn, saleID, domain.FailedSaleNftWithdrawnPayload{
		SaleID:      saleID,
		Initiator:   sale.Initiator,
		Collection:  sale.Asset.Collection,
		TokenNumber: sale.Asset.TokenNumber,
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func (m *manager) WithdrawFractionsKept(ctx context.Context, tx store.Store, caller common.Address, saleID domain.SaleID) (uint64, error) {
	sale, err := m.getSale(ctx, tx, saleID)
	if err != nil {
		return 0, err
	}
	if caller != sale.Initiator {
		return 0, domain.ErrMustBeSaleInitiator
	}

	now := m.deps.Clock.Now()
	if !sale.IsClosed(now) {
		return 0, domain.ErrSaleNotFinished
	}
	if !sale.IsSuccessful() {
		return 0, domain.ErrSaleUnsuccessful
	}
	if sale.FractionsKeptWithdrawn {
		return 0, domain.ErrFractionsKeptAlreadyWithdrawn
	}

	if sale.MinFractionsKept > 0 {
		if err := m.deps.Fractions.OperatorTransfer(ctx, m.address, m.address, sale.Initiator, saleID, sale.MinFractionsKept); err != nil {
			return 0, err
		}
	}
	unsold := sale.FractionsAvailable()
	if unsold > 0 {
		if err := m.deps.Fractions.OperatorTransfer(ctx, m.address, sale.EscrowAddress, sale.Initiator, saleID, unsold); err != nil {
			return 0, err
		}
	}
	amount := sale.MinFractionsKept + unsold

	sale.FractionsKeptWithdrawn = true
	sale.UpdatedAt = now
	if err := tx.UpdateSale(ctx, sale); err != nil {
		return 0, err
	}

	err = m.emit(ctx, tx, domain.NotificationFractionsKeptWithdrawn, saleID, domain.FractionsKeptWithdrawnPayload{
		SaleID:    saleID,
		Initiator: sale.Initiator,
		Amount:    amount,
	})
	if err != nil {
		return 0, err
	}

	return amount, nil
}

func (m *manager) CheckTransfer(ctx context.Context, s store.Store, from, to common.Address, saleID domain.SaleID) error {
	protocolSender, err := m.deps.Escrows.IsProtocolAccount(ctx, s, from, saleID)
	if err != nil {
		return err
	}
	if protocolSender {
		return fmt.Errorf("%w: %s", domain.ErrProtocolAccountSend, from.Hex())
	}
	protocolRecipient, err := m.deps.Escrows.IsProtocolAccount(ctx, s, to, saleID)
	if err != nil {
		return err
	}
	if protocolRecipient {
		return domain.ErrCannotSendFractions
	}

	sale, err := m.getSale(ctx, s, saleID)
	if err != nil {
		return err
	}
	if !sale.IsClosed(m.deps.Clock.Now()) {
		return domain.ErrSaleNotFinished
	}
	if !sale.IsSuccessful() {
		return domain.ErrCannotTradeFailedSaleToken
	}
	if sale.BoughtOut {
		return domain.ErrCannotTransferBoughtOutToken
	}
	return nil
}

func (m *manager) TransferFractions(ctx context.Context, tx store.Store, caller, to common.Address, saleID domain.SaleID, amount uint64) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	if domain.IsZeroAddress(to) {
		return domain.ErrNullAddress
	}
	if err := m.CheckTransfer(ctx, tx, caller, to, saleID); err != nil {
		return err
	}
	if err := m.deps.Fractions.SafeTransferFrom(ctx, caller, caller, to, saleID, amount); err != nil {
		return err
	}

	return m.emit(ctx, tx, domain.NotificationFractionsTransferred, saleID, domain.FractionsTransferredPayload{
		SaleID: saleID,
		From:   caller,
		To:     to,
		Amount: amount,
	})
}

func (m *manager) OnAssetReceived(ctx context.Context, operator, from common.Address, asset domain.AssetRef) error {
	if operator != m.address {
		return domain.ErrCannotSendAsset
	}
	return nil
}
