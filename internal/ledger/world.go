package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
)

type fractionKey struct {
	id     domain.SaleID
	holder common.Address
}

type valueKey struct {
	token  common.Address
	holder common.Address
}

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

type worldState struct {
	fractions  map[fractionKey]uint64
	supply     map[domain.SaleID]uint64
	values     map[valueKey]*big.Int
	allowances map[allowanceKey]*big.Int
	assets     map[domain.AssetRef]common.Address
}

func newWorldState() worldState {
	return worldState{
		fractions:  make(map[fractionKey]uint64),
		supply:     make(map[domain.SaleID]uint64),
		values:     make(map[valueKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
		assets:     make(map[domain.AssetRef]common.Address),
	}
}

func (s worldState) clone() worldState {
	c := newWorldState()
	for k, v := range s.fractions {
		c.fractions[k] = v
	}
	for k, v := range s.supply {
		c.supply[k] = v
	}
	for k, v := range s.values {
		c.values[k] = new(big.Int).Set(v)
	}
	for k, v := range s.allowances {
		c.allowances[k] = new(big.Int).Set(v)
	}
	for k, v := range s.assets {
		c.assets[k] = v
	}
	return c
}

// World is an in-memory ledger host. It implements every collaborator interface of
// this package over a single state that Atomically snapshots and restores.
type World struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	state     worldState
	operators map[common.Address]bool
	guard     TransferGuard
	receivers map[common.Address]AssetReceiver
}

var (
	_ FractionLedger = (*World)(nil)
	_ ValueToken     = (*World)(nil)
	_ AssetCustody   = (*World)(nil)
	_ Host           = (*World)(nil)
	_ Faucet         = (*World)(nil)
)

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{
		state:     newWorldState(),
		operators: make(map[common.Address]bool),
		receivers: make(map[common.Address]AssetReceiver),
	}
}

// AddOperator registers a privileged account allowed to move and burn fractions and
// to move assets it does not own
func (w *World) AddOperator(addr common.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.operators[addr] = true
}

// Atomically runs fn and restores the ledger state if fn fails or panics
func (w *World) Atomically(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	w.txMu.Lock()
	defer w.txMu.Unlock()

	w.mu.RLock()
	snapshot := w.state.clone()
	w.mu.RUnlock()

	restore := func() {
		w.mu.Lock()
		w.state = snapshot
		w.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			restore()
			panic(r)
		}
	}()

	if err = fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

// SetTransferGuard installs the hook consulted on peer transfers
func (w *World) SetTransferGuard(guard TransferGuard) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.guard = guard
}

// SetReceiver installs the custody hook for addr
func (w *World) SetReceiver(addr common.Address, receiver AssetReceiver) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.receivers[addr] = receiver
}

func (w *World) Mint(ctx context.Context, to common.Address, id domain.SaleID, amount uint64) error {
	if domain.IsZeroAddress(to) {
		return domain.ErrNullAddress
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.fractions[fractionKey{id: id, holder: to}] += amount
	w.state.supply[id] += amount
	return nil
}

func (w *World) BalanceOf(ctx context.Context, holder common.Address, id domain.SaleID) (uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.fractions[fractionKey{id: id, holder: holder}], nil
}

func (w *World) TotalSupply(ctx context.Context, id domain.SaleID) (uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.supply[id], nil
}

func (w *World) OperatorTransfer(ctx context.Context, operator, from, to common.Address, id domain.SaleID, amount uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.operators[operator] {
		return domain.ErrNotOperator
	}
	return w.moveFractions(from, to, id, amount)
}

func (w *World) SafeTransferFrom(ctx context.Context, operator, from, to common.Address, id domain.SaleID, amount uint64) error {
	if operator != from {
		return domain.ErrNotOwner
	}

	w.mu.RLock()
	guard := w.guard
	w.mu.RUnlock()
	if guard != nil {
		if err := guard.CheckFractionTransfer(ctx, operator, from, to, id, amount); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.moveFractions(from, to, id, amount)
}

func (w *World) OperatorBurn(ctx context.Context, operator, from common.Address, id domain.SaleID, amount uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.operators[operator] {
		return domain.ErrNotOperator
	}
	k := fractionKey{id: id, holder: from}
	if w.state.fractions[k] < amount {
		return domain.ErrBurnExceedsBalance
	}
	w.state.fractions[k] -= amount
	w.state.supply[id] -= amount
	return nil
}

func (w *World) moveFractions(from, to common.Address, id domain.SaleID, amount uint64) error {
	if domain.IsZeroAddress(to) {
		return domain.ErrNullAddress
	}
	src := fractionKey{id: id, holder: from}
	if w.state.fractions[src] < amount {
		return domain.ErrInsufficientBalance
	}
	w.state.fractions[src] -= amount
	w.state.fractions[fractionKey{id: id, holder: to}] += amount
	return nil
}

func (w *World) valueBalance(token, holder common.Address) *big.Int {
	if v, ok := w.state.values[valueKey{token: token, holder: holder}]; ok {
		return v
	}
	return new(big.Int)
}

func (w *World) Balance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return new(big.Int).Set(w.valueBalance(token, holder)), nil
}

func (w *World) Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.moveValue(token, from, to, amount)
}

func (w *World) TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	k := allowanceKey{token: token, owner: from, spender: spender}
	allowance, ok := w.state.allowances[k]
	if !ok {
		allowance = new(big.Int)
	}
	if allowance.Cmp(amount) < 0 {
		return domain.ErrRequestExceedsAllowance
	}
	if err := w.moveValue(token, from, to, amount); err != nil {
		return err
	}
	w.state.allowances[k] = new(big.Int).Sub(allowance, amount)
	return nil
}

func (w *World) Approve(ctx context.Context, token, owner, spender common.Address, amount *big.Int) error {
	if domain.IsZeroAddress(spender) {
		return domain.ErrNullAddress
	}
	if amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.allowances[allowanceKey{token: token, owner: owner, spender: spender}] = new(big.Int).Set(amount)
	return nil
}

func (w *World) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if v, ok := w.state.allowances[allowanceKey{token: token, owner: owner, spender: spender}]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (w *World) moveValue(token, from, to common.Address, amount *big.Int) error {
	if domain.IsZeroAddress(to) {
		return domain.ErrNullAddress
	}
	if amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	bal := w.valueBalance(token, from)
	if bal.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	w.state.values[valueKey{token: token, holder: from}] = new(big.Int).Sub(bal, amount)
	w.state.values[valueKey{token: token, holder: to}] = new(big.Int).Add(w.valueBalance(token, to), amount)
	return nil
}

func (w *World) OwnerOf(ctx context.Context, asset domain.AssetRef) (common.Address, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	owner, ok := w.state.assets[asset]
	if !ok {
		return common.Address{}, domain.ErrAssetNotFound
	}
	return owner, nil
}

func (w *World) TransferAsset(ctx context.Context, operator, from, to common.Address, asset domain.AssetRef) error {
	if domain.IsZeroAddress(to) {
		return domain.ErrNullAddress
	}

	w.mu.RLock()
	owner, ok := w.state.assets[asset]
	privileged := w.operators[operator]
	receiver := w.receivers[to]
	w.mu.RUnlock()

	if !ok {
		return domain.ErrAssetNotFound
	}
	if owner != from || (operator != from && !privileged) {
		return domain.ErrNotOwner
	}
	if receiver != nil {
		if err := receiver.OnAssetReceived(ctx, operator, from, asset); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.assets[asset] = to
	return nil
}

func (w *World) MintValue(ctx context.Context, token, to common.Address, amount *big.Int) error {
	if domain.IsZeroAddress(to) {
		return domain.ErrNullAddress
	}
	if amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.values[valueKey{token: token, holder: to}] = new(big.Int).Add(w.valueBalance(token, to), amount)
	return nil
}

func (w *World) MintAsset(ctx context.Context, asset domain.AssetRef, owner common.Address) error {
	if domain.IsZeroAddress(owner) {
		return domain.ErrNullAddress
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.state.assets[asset]; ok {
		return fmt.Errorf("%w: %s", domain.ErrAssetAlreadyMinted, asset)
	}
	w.state.assets[asset] = owner
	return nil
}
