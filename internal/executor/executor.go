package executor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/buyout"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/registry"
	"github.com/feral-file/ff-fractions/internal/sale"
	"github.com/feral-file/ff-fractions/internal/store"
)

// SaleView is a sale with its derived state evaluated at query time
type SaleView struct {
	*domain.Sale
	Status             domain.SaleStatus `json:"status"`
	IsOpen             bool              `json:"is_open"`
	IsSuccessful       bool              `json:"is_successful"`
	IsBoughtOut        bool              `json:"is_bought_out"`
	FractionsAvailable uint64            `json:"fractions_available"`
}

// BuyoutView is a buyout with its derived status evaluated at query time
type BuyoutView struct {
	*domain.Buyout
	Status domain.BuyoutStatus `json:"status"`
}

// ProtocolParamsUpdate carries the admin setters to apply; nil fields are left unchanged
type ProtocolParamsUpdate struct {
	SaleFeeBps                  *uint64
	BuyoutFeeBps                *uint64
	BuyoutMinFractionsBps       *uint64
	BuyoutOpenTimePeriodSeconds *int64
	GovernanceTreasury          *common.Address
	Tiers                       *domain.TierSchedule
}

// Executor runs every protocol operation atomically across the ledger and the store
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor.go -package=mocks -mock_names=Executor=MockExecutor
type Executor interface {
	// Bootstrap stores the initial protocol parameters unless they already exist
	Bootstrap(ctx context.Context, params *domain.ProtocolParams) error

	SetupSale(ctx context.Context, caller common.Address, input sale.SetupSaleInput) (*SaleView, error)
	BuyFractions(ctx context.Context, caller common.Address, saleID domain.SaleID, amount uint64) (*SaleView, error)
	WithdrawFailedSaleNft(ctx context.Context, caller common.Address, saleID domain.SaleID) (*SaleView, error)
	WithdrawFractionsKept(ctx context.Context, caller common.Address, saleID domain.SaleID) (uint64, error)
	TransferFractions(ctx context.Context, caller, to common.Address, saleID domain.SaleID, amount uint64) error

	RequestBuyout(ctx context.Context, caller common.Address, saleID domain.SaleID) (*BuyoutView, error)
	SetBuyoutParams(ctx context.Context, caller common.Address, buyoutID domain.BuyoutID, price *big.Int) (*BuyoutView, error)
	ExecuteBuyout(ctx context.Context, caller common.Address, buyoutID domain.BuyoutID) (*buyout.ExecutionResult, error)
	BuyoutUnsupervised(ctx context.Context, caller common.Address, saleID domain.SaleID) (*buyout.ExecutionResult, error)

	Release(ctx context.Context, caller, escrowAddress common.Address, holders []common.Address) (*escrow.ReleaseResult, error)
	ReleaseSeller(ctx context.Context, caller, escrowAddress common.Address) (*escrow.SellerReleaseResult, error)

	UpdateProtocolParams(ctx context.Context, caller common.Address, update ProtocolParamsUpdate) (*domain.ProtocolParams, error)
	UpdateAllowList(ctx context.Context, caller common.Address, allow, disallow []common.Address) error
	UpdateRole(ctx context.Context, caller common.Address, capability domain.Capability, principal common.Address, grant bool) error

	// ApproveValue sets the payment token allowance spender may pull from the caller
	ApproveValue(ctx context.Context, caller, token, spender common.Address, amount *big.Int) error
	// MintValue credits payment tokens through the ledger faucet. Admin only.
	MintValue(ctx context.Context, caller, token, to common.Address, amount *big.Int) error
	// MintAsset creates a unique asset through the ledger faucet. Admin only.
	MintAsset(ctx context.Context, caller common.Address, asset domain.AssetRef, owner common.Address) error
	GetValueAccount(ctx context.Context, token, holder, spender common.Address) (*ValueAccount, error)

	GetSale(ctx context.Context, id domain.SaleID) (*SaleView, error)
	ListSales(ctx context.Context, filter store.SaleQueryFilter) ([]*SaleView, uint64, error)
	IsSaleSuccessful(ctx context.Context, id domain.SaleID) (bool, error)
	IsTokenIdBoughtOut(ctx context.Context, id domain.SaleID) (bool, error)
	IsSaleOpen(ctx context.Context, id domain.SaleID) (bool, error)
	ListSettleableSales(ctx context.Context, limit int) ([]*domain.Sale, error)
	GetBuyout(ctx context.Context, id domain.BuyoutID) (*BuyoutView, error)
	GetEscrow(ctx context.Context, address common.Address) (*domain.Escrow, error)
	GetNotifications(ctx context.Context, filter store.NotificationQueryFilter) ([]*domain.Notification, error)
	GetProtocolParams(ctx context.Context) (*domain.ProtocolParams, error)
}

// ValueAccount is a payment token balance and the allowance granted to one spender
type ValueAccount struct {
	Token     common.Address `json:"token"`
	Holder    common.Address `json:"holder"`
	Balance   *big.Int       `json:"balance"`
	Spender   common.Address `json:"spender"`
	Allowance *big.Int       `json:"allowance"`
}

// Deps are the components the executor coordinates. Faucet is optional.
type Deps struct {
	Host      ledger.Host
	Store     store.Store
	Fractions ledger.FractionLedger
	Assets    ledger.AssetCustody
	Value     ledger.ValueToken
	Faucet    ledger.Faucet
	Sales     sale.Manager
	Buyouts   buyout.Manager
	Escrows   escrow.Manager
	AllowList registry.AllowListRegistry
	Roles     registry.RoleRegistry
	Clock     adapter.Clock
}

type executor struct {
	host      ledger.Host
	store     store.Store
	sales     sale.Manager
	buyouts   buyout.Manager
	escrows   escrow.Manager
	value     ledger.ValueToken
	faucet    ledger.Faucet
	allowList registry.AllowListRegistry
	roles     registry.RoleRegistry
	clock     adapter.Clock
}

// New creates an executor and installs the fraction transfer guard and the custody receiver
func New(deps Deps) Executor {
	e := &executor{
		host:      deps.Host,
		store:     deps.Store,
		sales:     deps.Sales,
		buyouts:   deps.Buyouts,
		escrows:   deps.Escrows,
		value:     deps.Value,
		faucet:    deps.Faucet,
		allowList: deps.AllowList,
		roles:     deps.Roles,
		clock:     deps.Clock,
	}

	deps.Fractions.SetTransferGuard(ledger.TransferGuardFunc(e.checkFractionTransfer))
	deps.Assets.SetReceiver(deps.Sales.Address(), deps.Sales)

	return e
}

type txKey struct{}

// txFrom returns the store of the operation in flight, or the base store
func (e *executor) txFrom(ctx context.Context) store.Store {
	if tx, ok := ctx.Value(txKey{}).(store.Store); ok {
		return tx
	}
	return e.store
}

func (e *executor) checkFractionTransfer(ctx context.Context, _, from, to common.Address, id domain.SaleID, _ uint64) error {
	return e.sales.CheckTransfer(ctx, e.txFrom(ctx), from, to, id)
}

// run executes fn under the host lock and a store transaction.
// onCommit runs once both committed and must not fail.
func (e *executor) run(ctx context.Context, op string, fields []zap.Field, fn func(ctx context.Context, tx store.Store) error, onCommit func()) error {
	ctx = logger.WithFields(ctx, append(fields, zap.String("op", op))...)
	logger.DebugCtx(ctx, "Executing operation")

	err := e.host.Atomically(ctx, func(ctx context.Context) error {
		err := e.store.WithTx(ctx, func(tx store.Store) error {
			return fn(context.WithValue(ctx, txKey{}, tx), tx)
		})
		if err != nil {
			return err
		}
		if onCommit != nil {
			onCommit()
		}
		return nil
	})
	if err != nil {
		if kind, ok := domain.KindOf(err); ok {
			logger.WarnCtx(ctx, "Operation rejected",
				zap.String("kind", string(kind)),
				zap.String("code", domain.CodeOf(err)),
				zap.Error(err))
		} else {
			logger.ErrorCtx(ctx, fmt.Errorf("operation %s failed: %w", op, err))
		}
		return err
	}

	logger.InfoCtx(ctx, "Operation committed")
	return nil
}

func callerField(caller common.Address) zap.Field {
	return zap.String("caller", caller.Hex())
}

func saleField(id domain.SaleID) zap.Field {
	return zap.Uint64("sale_id", uint64(id))
}

func buyoutField(id domain.BuyoutID) zap.Field {
	return zap.Uint64("buyout_id", uint64(id))
}

func escrowField(address common.Address) zap.Field {
	return zap.String("escrow", address.Hex())
}

func tokenField(token common.Address) zap.Field {
	return zap.String("token", token.Hex())
}

func (e *executor) Bootstrap(ctx context.Context, params *domain.ProtocolParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return e.run(ctx, "bootstrap", nil, func(ctx context.Context, tx store.Store) error {
		existing, err := tx.GetProtocolParams(ctx)
		if err != nil {
			return err
		}
		if existing != nil {
			logger.InfoCtx(ctx, "Protocol parameters already initialized")
			return nil
		}
		return tx.SaveProtocolParams(ctx, params)
	}, nil)
}

func (e *executor) view(s *domain.Sale) *SaleView {
	now := e.clock.Now()
	return &SaleView{
		Sale:               s,
		Status:             s.Status(now),
		IsOpen:             s.IsOpen(now),
		IsSuccessful:       s.IsSuccessful(),
		IsBoughtOut:        s.BoughtOut,
		FractionsAvailable: s.FractionsAvailable(),
	}
}

func (e *executor) buyoutView(b *domain.Buyout) *BuyoutView {
	return &BuyoutView{Buyout: b, Status: b.Status(e.clock.Now())}
}

func (e *executor) SetupSale(ctx context.Context, caller common.Address, input sale.SetupSaleInput) (*SaleView, error) {
	var s *domain.Sale
	err := e.run(ctx, "setup_sale", []zap.Field{callerField(caller), zap.String("asset", input.Asset.String())}, func(ctx context.Context, tx store.Store) error {
		var err error
		s, err = e.sales.SetupSale(ctx, tx, caller, input)
		return err
	}, nil)
	if err != nil {
		return nil, err
	}
	return e.view(s), nil
}

func (e *executor) BuyFractions(ctx context.Context, caller common.Address, saleID domain.SaleID, amount uint64) (*SaleView, error) {
	var s *domain.Sale
	err := e.run(ctx, "buy_fractions", []zap.Field{callerField(caller), saleField(saleID), zap.Uint64("amount", amount)}, func(ctx context.Context, tx store.Store) error {
		var err error
		s, err = e.sales.BuyFractions(ctx, tx, caller, saleID, amount)
		return err
	}, nil)
	if err != nil {
		return nil, err
	}
	return e.view(s), nil
}

func (e *executor) WithdrawFailedSaleNft(ctx context.Context, caller common.Address, saleID domain.SaleID) (*SaleView, error) {
	var s *domain.Sale
	err := e.run(ctx, "withdraw_failed_sale_nft", []zap.Field{callerField(caller), saleField(saleID)}, func(ctx context.Context, tx store.Store) error {
		var err error
		s, err = e.sales.WithdrawFailedSaleNft(ctx, tx, caller, saleID)
		return err
	}, nil)
	if err != nil {
		return nil, err
	}
	return e.view(s), nil
}

func (e *executor) WithdrawFractionsKept(ctx context.Context, caller common.Address, saleID domain.SaleID) (uint64, error) {
	var amount uint64
	err := e.run(ctx, "withdraw_fractions_kept", []zap.Field{callerField(caller), saleField(saleID)}, func(ctx context.Context, tx store.Store) error {
		var err error
		amount, err = e.sales.WithdrawFractionsKept(ctx, tx, caller, saleID)
		return err
	}, nil)
	return amount, err
}

func (e *executor) TransferFractions(ctx context.Context, caller, to common.Address, saleID domain.SaleID, amount uint64) error {
	fields := []zap.Field{callerField(caller), saleField(saleID), zap.String("to", to.Hex()), zap.Uint64("amount", amount)}
	return e.run(ctx, "transfer_fractions", fields, func(ctx context.Context, tx store.Store) error {
		return e.sales.TransferFractions(ctx, tx, caller, to, saleID, amount)
	}, nil)
}

func (e *executor) RequestBuyout(ctx context.Context, caller common.Address, saleID domain.SaleID) (*BuyoutView, error) {
	var b *domain.Buyout
	err := e.run(ctx, "request_buyout", []zap.Field{callerField(caller), saleField(saleID)}, func(ctx context.Context, tx store.Store) error {
		var err error
		b, err = e.buyouts.RequestBuyout(ctx, tx, caller, saleID)
		return err
	}, nil)
	if err != nil {
		return nil, err
	}
	return e.buyoutView(b), nil
}

func (e *executor) SetBuyoutParams(ctx context.Context, caller common.Address, buyoutID domain.BuyoutID, price *big.Int) (*BuyoutView, error) {
	var b *domain.Buyout
	err := e.run(ctx, "set_buyout_params", []zap.Field{callerField(caller), buyoutField(buyoutID)}, func(ctx context.Context, tx store.Store) error {
		var err error
		b, err = e.buyouts.SetBuyoutParams(ctx, tx, caller, buyoutID, price)
		return err
	}, nil)
	if err != nil {
		return nil, err
	}
	return e.buyoutView(b), nil
}

func (e *executor) ExecuteBuyout(ctx context.Context, caller common.Address, buyoutID domain.BuyoutID) (*buyout.ExecutionResult, error) {
	var res *buyout.ExecutionResult
	err := e.run(ctx, "execute_buyout", []zap.Field{callerField(caller), buyoutField(buyoutID)}, func(ctx context.Context, tx store.Store) error {
		var err error
		res, err = e.buyouts.ExecuteBuyout(ctx, tx, caller, buyoutID)
		return err
	}, nil)
	return res, err
}

func (e *executor) BuyoutUnsupervised(ctx context.Context, caller common.Address, saleID domain.SaleID) (*buyout.ExecutionResult, error) {
	var res *buyout.ExecutionResult
	err := e.run(ctx, "buyout_unsupervised", []zap.Field{callerField(caller), saleField(saleID)}, func(ctx context.Context, tx store.Store) error {
		var err error
		res, err = e.buyouts.BuyoutUnsupervised(ctx, tx, caller, saleID)
		return err
	}, nil)
	return res, err
}

func (e *executor) Release(ctx context.Context, caller, escrowAddress common.Address, holders []common.Address) (*escrow.ReleaseResult, error) {
	var res *escrow.ReleaseResult
	fields := []zap.Field{callerField(caller), escrowField(escrowAddress), zap.Int("holders", len(holders))}
	err := e.run(ctx, "release", fields, func(ctx context.Context, tx store.Store) error {
		var err error
		res, err = e.escrows.Release(ctx, tx, caller, escrowAddress, holders)
		return err
	}, nil)
	return res, err
}

func (e *executor) ReleaseSeller(ctx context.Context, caller, escrowAddress common.Address) (*escrow.SellerReleaseResult, error) {
	var res *escrow.SellerReleaseResult
	err := e.run(ctx, "release_seller", []zap.Field{callerField(caller), escrowField(escrowAddress)}, func(ctx context.Context, tx store.Store) error {
		var err error
		res, err = e.escrows.ReleaseSeller(ctx, tx, caller, escrowAddress)
		return err
	}, nil)
	return res, err
}

func (e *executor) UpdateProtocolParams(ctx context.Context, caller common.Address, update ProtocolParamsUpdate) (*domain.ProtocolParams, error) {
	var params *domain.ProtocolParams
	err := e.run(ctx, "update_protocol_params", []zap.Field{callerField(caller)}, func(ctx context.Context, tx store.Store) error {
		if update.SaleFeeBps != nil {
			if err := e.sales.SetSaleFee(ctx, tx, caller, *update.SaleFeeBps); err != nil {
				return err
			}
		}
		if update.BuyoutFeeBps != nil {
			if err := e.buyouts.SetBuyoutFee(ctx, tx, caller, *update.BuyoutFeeBps); err != nil {
				return err
			}
		}
		if update.BuyoutMinFractionsBps != nil {
			if err := e.buyouts.SetBuyoutMinFractions(ctx, tx, caller, *update.BuyoutMinFractionsBps); err != nil {
				return err
			}
		}
		if update.BuyoutOpenTimePeriodSeconds != nil {
			if err := e.buyouts.SetBuyoutOpenTimePeriod(ctx, tx, caller, *update.BuyoutOpenTimePeriodSeconds); err != nil {
				return err
			}
		}
		if update.GovernanceTreasury != nil {
			if err := e.sales.SetGovernanceTreasury(ctx, tx, caller, *update.GovernanceTreasury); err != nil {
				return err
			}
		}
		if update.Tiers != nil {
			if err := e.sales.SetTierSchedule(ctx, tx, caller, *update.Tiers); err != nil {
				return err
			}
		}

		var err error
		params, err = store.LoadProtocolParams(ctx, tx)
		return err
	}, nil)
	return params, err
}

func (e *executor) UpdateAllowList(ctx context.Context, caller common.Address, allow, disallow []common.Address) error {
	if err := ledger.RequireCapability(ctx, e.roles, domain.CapabilityAdmin, caller); err != nil {
		return err
	}
	for _, addr := range append(append([]common.Address{}, allow...), disallow...) {
		if domain.IsZeroAddress(addr) {
			return domain.ErrNullAddress
		}
	}

	fields := []zap.Field{callerField(caller), zap.Int("allowed", len(allow)), zap.Int("disallowed", len(disallow))}
	return e.run(ctx, "update_allow_list", fields, func(ctx context.Context, tx store.Store) error {
		_, err := store.AppendNotification(ctx, tx,
			domain.NotificationAllowListUpdated,
			domain.SubjectTypeProtocol,
			domain.PROTOCOL_PARAMS_SUBJECT_ID,
			e.clock.Now(),
			domain.AllowListUpdatedPayload{Allowed: allow, Disallowed: disallow})
		return err
	}, func() {
		// Addresses were checked above so neither call can fail
		_ = e.allowList.Allow(allow)
		_ = e.allowList.Disallow(disallow)
	})
}

func (e *executor) UpdateRole(ctx context.Context, caller common.Address, capability domain.Capability, principal common.Address, grant bool) error {
	if err := ledger.RequireCapability(ctx, e.roles, domain.CapabilityAdmin, caller); err != nil {
		return err
	}
	if !domain.IsValidCapability(capability) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCapability, capability)
	}
	if domain.IsZeroAddress(principal) {
		return domain.ErrNullAddress
	}

	t := domain.NotificationPermissionRevoked
	if grant {
		t = domain.NotificationPermissionGranted
	}

	fields := []zap.Field{callerField(caller), zap.String("capability", string(capability)), zap.String("principal", principal.Hex()), zap.Bool("grant", grant)}
	return e.run(ctx, "update_role", fields, func(ctx context.Context, tx store.Store) error {
		_, err := store.AppendNotification(ctx, tx, t,
			domain.SubjectTypeProtocol,
			domain.PROTOCOL_PARAMS_SUBJECT_ID,
			e.clock.Now(),
			domain.PermissionChangedPayload{Capability: capability, Principal: principal})
		return err
	}, func() {
		if grant {
			_ = e.roles.Grant(capability, principal)
		} else {
			_ = e.roles.Revoke(capability, principal)
		}
	})
}

func (e *executor) ApproveValue(ctx context.Context, caller, token, spender common.Address, amount *big.Int) error {
	if domain.IsZeroAddress(token) {
		return domain.ErrNullAddress
	}
	if amount == nil {
		return domain.ErrInvalidAmount
	}
	fields := []zap.Field{callerField(caller), tokenField(token), zap.String("spender", spender.Hex()), zap.String("amount", amount.String())}
	return e.run(ctx, "approve_value", fields, func(ctx context.Context, _ store.Store) error {
		return e.value.Approve(ctx, token, caller, spender, amount)
	}, nil)
}

func (e *executor) MintValue(ctx context.Context, caller, token, to common.Address, amount *big.Int) error {
	if err := e.requireFaucet(ctx, caller); err != nil {
		return err
	}
	if domain.IsZeroAddress(token) {
		return domain.ErrNullAddress
	}
	if amount == nil {
		return domain.ErrInvalidAmount
	}
	fields := []zap.Field{callerField(caller), tokenField(token), zap.String("to", to.Hex()), zap.String("amount", amount.String())}
	return e.run(ctx, "mint_value", fields, func(ctx context.Context, _ store.Store) error {
		return e.faucet.MintValue(ctx, token, to, amount)
	}, nil)
}

func (e *executor) MintAsset(ctx context.Context, caller common.Address, asset domain.AssetRef, owner common.Address) error {
	if err := e.requireFaucet(ctx, caller); err != nil {
		return err
	}
	fields := []zap.Field{callerField(caller), zap.String("asset", asset.String()), zap.String("owner", owner.Hex())}
	return e.run(ctx, "mint_asset", fields, func(ctx context.Context, _ store.Store) error {
		return e.faucet.MintAsset(ctx, asset, owner)
	}, nil)
}

func (e *executor) requireFaucet(ctx context.Context, caller common.Address) error {
	if err := ledger.RequireCapability(ctx, e.roles, domain.CapabilityAdmin, caller); err != nil {
		return err
	}
	if e.faucet == nil {
		return domain.ErrFaucetDisabled
	}
	return nil
}

func (e *executor) GetValueAccount(ctx context.Context, token, holder, spender common.Address) (*ValueAccount, error) {
	balance, err := e.value.Balance(ctx, token, holder)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	allowance, err := e.value.Allowance(ctx, token, holder, spender)
	if err != nil {
		return nil, fmt.Errorf("failed to get allowance: %w", err)
	}
	return &ValueAccount{Token: token, Holder: holder, Balance: balance, Spender: spender, Allowance: allowance}, nil
}

func (e *executor) getSale(ctx context.Context, id domain.SaleID) (*domain.Sale, error) {
	s, err := e.store.GetSale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSaleID, id)
	}
	return s, nil
}

func (e *executor) GetSale(ctx context.Context, id domain.SaleID) (*SaleView, error) {
	s, err := e.getSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.view(s), nil
}

func (e *executor) ListSales(ctx context.Context, filter store.SaleQueryFilter) ([]*SaleView, uint64, error) {
	filter.Now = e.clock.Now()
	sales, total, err := e.store.ListSales(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	views := make([]*SaleView, 0, len(sales))
	for _, s := range sales {
		views = append(views, e.view(s))
	}
	return views, total, nil
}

func (e *executor) IsSaleSuccessful(ctx context.Context, id domain.SaleID) (bool, error) {
	s, err := e.getSale(ctx, id)
	if err != nil {
		return false, err
	}
	return s.IsSuccessful(), nil
}

func (e *executor) IsTokenIdBoughtOut(ctx context.Context, id domain.SaleID) (bool, error) {
	s, err := e.getSale(ctx, id)
	if err != nil {
		return false, err
	}
	return s.BoughtOut, nil
}

func (e *executor) IsSaleOpen(ctx context.Context, id domain.SaleID) (bool, error) {
	s, err := e.getSale(ctx, id)
	if err != nil {
		return false, err
	}
	return s.IsOpen(e.clock.Now()), nil
}

func (e *executor) ListSettleableSales(ctx context.Context, limit int) ([]*domain.Sale, error) {
	sales, err := e.store.ListSettleableSales(ctx, e.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list settleable sales: %w", err)
	}
	return sales, nil
}

func (e *executor) GetBuyout(ctx context.Context, id domain.BuyoutID) (*BuyoutView, error) {
	b, err := e.store.GetBuyout(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get buyout: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidBuyoutID, id)
	}
	return e.buyoutView(b), nil
}

func (e *executor) GetEscrow(ctx context.Context, address common.Address) (*domain.Escrow, error) {
	esc, err := e.store.GetEscrow(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow: %w", err)
	}
	if esc == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEscrowNotFound, address.Hex())
	}
	return esc, nil
}

func (e *executor) GetNotifications(ctx context.Context, filter store.NotificationQueryFilter) ([]*domain.Notification, error) {
	notifications, err := e.store.GetNotifications(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

func (e *executor) GetProtocolParams(ctx context.Context) (*domain.ProtocolParams, error) {
	return store.LoadProtocolParams(ctx, e.store)
}
