package executor

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/buyout"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/registry"
	"github.com/feral-file/ff-fractions/internal/sale"
	"github.com/feral-file/ff-fractions/internal/store"
)

// Addresses are the protocol accounts acting on the ledger
type Addresses struct {
	SaleManager   common.Address
	BuyoutManager common.Address
}

// DefaultAddresses derives stable manager accounts when none are configured
func DefaultAddresses() Addresses {
	return Addresses{
		SaleManager:   common.BytesToAddress(crypto.Keccak256([]byte("ff-fractions.sale-manager"))[12:]),
		BuyoutManager: common.BytesToAddress(crypto.Keccak256([]byte("ff-fractions.buyout-manager"))[12:]),
	}
}

// NewWorldExecutor wires the three managers over an in-memory world, which also serves as the faucet
func NewWorldExecutor(
	world *ledger.World,
	st store.Store,
	allowList registry.AllowListRegistry,
	roles registry.RoleRegistry,
	addrs Addresses,
	clock adapter.Clock,
) Executor {
	world.AddOperator(addrs.SaleManager)
	world.AddOperator(addrs.BuyoutManager)

	escrows := escrow.NewManager(escrow.Config{
		SaleManager:   addrs.SaleManager,
		BuyoutManager: addrs.BuyoutManager,
	}, world, world, clock)

	sales := sale.NewManager(addrs.SaleManager, sale.Deps{
		Fractions:   world,
		Value:       world,
		Assets:      world,
		AllowList:   allowList,
		Permissions: roles,
		Escrows:     escrows,
		Clock:       clock,
	})

	buyouts := buyout.NewManager(addrs.BuyoutManager, buyout.Deps{
		Fractions:   world,
		Value:       world,
		Assets:      world,
		Permissions: roles,
		Escrows:     escrows,
		Clock:       clock,
		SaleManager: addrs.SaleManager,
	})

	return New(Deps{
		Host:      world,
		Store:     st,
		Fractions: world,
		Assets:    world,
		Value:     world,
		Faucet:    world,
		Sales:     sales,
		Buyouts:   buyouts,
		Escrows:   escrows,
		AllowList: allowList,
		Roles:     roles,
		Clock:     clock,
	})
}
