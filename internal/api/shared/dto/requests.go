package dto

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/api/shared/constants"
	apierrors "github.com/feral-file/ff-fractions/internal/api/shared/errors"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/executor"
	"github.com/feral-file/ff-fractions/internal/sale"
)

// ParseAddress parses a hex account address
func ParseAddress(field, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return common.Address{}, apierrors.NewValidationError(fmt.Sprintf("invalid %s: %q is not a hex address", field, value))
	}
	return common.HexToAddress(value), nil
}

// ParseAddresses parses a list of hex account addresses
func ParseAddresses(field string, values []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(values))
	for _, v := range values {
		addr, err := ParseAddress(field, v)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// ParseAmount parses a non-negative base-10 token amount
func ParseAmount(field, value string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || v.Sign() < 0 {
		return nil, apierrors.NewValidationError(fmt.Sprintf("invalid %s: %q is not a non-negative integer", field, value))
	}
	return v, nil
}

// SetupSaleRequest represents the request body for opening a fractional sale
type SetupSaleRequest struct {
	Collection       string    `json:"collection" binding:"required"`
	TokenNumber      string    `json:"token_number" binding:"required"`
	PaymentToken     string    `json:"payment_token" binding:"required"`
	OpeningTime      time.Time `json:"opening_time" binding:"required"`
	ClosingTime      time.Time `json:"closing_time" binding:"required"`
	Price            string    `json:"price" binding:"required"`
	MinFractionsKept uint64    `json:"min_fractions_kept"`
	SaleMinFractions uint64    `json:"sale_min_fractions"`
}

// ToInput validates the request body and converts it to a sale input
func (r *SetupSaleRequest) ToInput() (sale.SetupSaleInput, error) {
	collection, err := ParseAddress("collection", r.Collection)
	if err != nil {
		return sale.SetupSaleInput{}, err
	}
	asset, err := domain.NewAssetRef(collection, r.TokenNumber)
	if err != nil {
		return sale.SetupSaleInput{}, apierrors.NewValidationError(err.Error())
	}
	paymentToken, err := ParseAddress("payment_token", r.PaymentToken)
	if err != nil {
		return sale.SetupSaleInput{}, err
	}
	price, err := ParseAmount("price", r.Price)
	if err != nil {
		return sale.SetupSaleInput{}, err
	}

	return sale.SetupSaleInput{
		Asset:            asset,
		PaymentToken:     paymentToken,
		OpeningTime:      r.OpeningTime.UTC(),
		ClosingTime:      r.ClosingTime.UTC(),
		Price:            price,
		MinFractionsKept: r.MinFractionsKept,
		SaleMinFractions: r.SaleMinFractions,
	}, nil
}

// BuyFractionsRequest represents the request body for buying fractions of an open sale
type BuyFractionsRequest struct {
	Amount uint64 `json:"amount"`
}

// TransferFractionsRequest represents the request body for a peer transfer of fractions
type TransferFractionsRequest struct {
	To     string        `json:"to" binding:"required"`
	SaleID domain.SaleID `json:"sale_id"`
	Amount uint64        `json:"amount"`
}

// Recipient validates and returns the transfer recipient
func (r *TransferFractionsRequest) Recipient() (common.Address, error) {
	return ParseAddress("to", r.To)
}

// SetBuyoutParamsRequest represents the request body for pricing a requested buyout
type SetBuyoutParamsRequest struct {
	Price string `json:"price" binding:"required"`
}

// ParsePrice validates and returns the buyout price per fraction
func (r *SetBuyoutParamsRequest) ParsePrice() (*big.Int, error) {
	return ParseAmount("price", r.Price)
}

// ReleaseRequest represents the request body for releasing escrow proceeds to holders
type ReleaseRequest struct {
	Holders []string `json:"holders"`
}

// ParseHolders validates and returns the holders to release to
func (r *ReleaseRequest) ParseHolders() ([]common.Address, error) {
	if len(r.Holders) > constants.MAX_HOLDERS_PER_REQUEST {
		return nil, apierrors.NewValidationError(fmt.Sprintf("maximum %d holders allowed", constants.MAX_HOLDERS_PER_REQUEST))
	}
	return ParseAddresses("holder", r.Holders)
}

// TiersRequest is a tier schedule with decimal price limits
type TiersRequest struct {
	PriceLimits      []string `json:"price_limits"`
	FractionsAmounts []uint64 `json:"fractions_amounts"`
}

// UpdateProtocolParamsRequest represents the request body for the admin setters.
// Omitted fields are left unchanged.
type UpdateProtocolParamsRequest struct {
	SaleFeeBps                  *uint64       `json:"sale_fee_bps"`
	BuyoutFeeBps                *uint64       `json:"buyout_fee_bps"`
	BuyoutMinFractionsBps       *uint64       `json:"buyout_min_fractions_bps"`
	BuyoutOpenTimePeriodSeconds *int64        `json:"buyout_open_time_period_seconds"`
	GovernanceTreasury          *string       `json:"governance_treasury"`
	Tiers                       *TiersRequest `json:"tiers"`
}

// ToUpdate validates the request body and converts it to a protocol params update
func (r *UpdateProtocolParamsRequest) ToUpdate() (executor.ProtocolParamsUpdate, error) {
	update := executor.ProtocolParamsUpdate{
		SaleFeeBps:                  r.SaleFeeBps,
		BuyoutFeeBps:                r.BuyoutFeeBps,
		BuyoutMinFractionsBps:       r.BuyoutMinFractionsBps,
		BuyoutOpenTimePeriodSeconds: r.BuyoutOpenTimePeriodSeconds,
	}

	if r.GovernanceTreasury != nil {
		treasury, err := ParseAddress("governance_treasury", *r.GovernanceTreasury)
		if err != nil {
			return executor.ProtocolParamsUpdate{}, err
		}
		update.GovernanceTreasury = &treasury
	}

	if r.Tiers != nil {
		tiers := domain.TierSchedule{
			PriceLimits:      make([]*big.Int, 0, len(r.Tiers.PriceLimits)),
			FractionsAmounts: r.Tiers.FractionsAmounts,
		}
		for _, l := range r.Tiers.PriceLimits {
			limit, err := ParseAmount("price limit", l)
			if err != nil {
				return executor.ProtocolParamsUpdate{}, err
			}
			tiers.PriceLimits = append(tiers.PriceLimits, limit)
		}
		update.Tiers = &tiers
	}

	return update, nil
}

// UpdateAllowListRequest represents the request body for editing the allow list
type UpdateAllowListRequest struct {
	Allow    []string `json:"allow"`
	Disallow []string `json:"disallow"`
}

// Parse validates the request body and returns the addresses to allow and disallow
func (r *UpdateAllowListRequest) Parse() (allow, disallow []common.Address, err error) {
	if len(r.Allow) == 0 && len(r.Disallow) == 0 {
		return nil, nil, apierrors.NewValidationError("allow or disallow is required")
	}
	if len(r.Allow)+len(r.Disallow) > constants.MAX_ALLOW_LIST_ENTRIES {
		return nil, nil, apierrors.NewValidationError(fmt.Sprintf("maximum %d addresses allowed", constants.MAX_ALLOW_LIST_ENTRIES))
	}
	if allow, err = ParseAddresses("allow", r.Allow); err != nil {
		return nil, nil, err
	}
	if disallow, err = ParseAddresses("disallow", r.Disallow); err != nil {
		return nil, nil, err
	}
	return allow, disallow, nil
}

// UpdateRoleRequest represents the request body for granting or revoking a capability
type UpdateRoleRequest struct {
	Capability string `json:"capability" binding:"required"`
	Principal  string `json:"principal" binding:"required"`
	Grant      bool   `json:"grant"`
}

// Parse validates the request body and returns the capability and principal
func (r *UpdateRoleRequest) Parse() (domain.Capability, common.Address, error) {
	capability := domain.Capability(r.Capability)
	if !domain.IsValidCapability(capability) {
		return "", common.Address{}, apierrors.NewValidationError(fmt.Sprintf("unknown capability: %s", r.Capability))
	}
	principal, err := ParseAddress("principal", r.Principal)
	if err != nil {
		return "", common.Address{}, err
	}
	return capability, principal, nil
}

// ApproveValueRequest represents the request body for granting a payment token allowance
type ApproveValueRequest struct {
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// Parse validates the request body and returns the spender and the allowance
func (r *ApproveValueRequest) Parse() (common.Address, *big.Int, error) {
	spender, err := ParseAddress("spender", r.Spender)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := ParseAmount("amount", r.Amount)
	if err != nil {
		return common.Address{}, nil, err
	}
	return spender, amount, nil
}

// MintValueRequest represents the request body for crediting payment tokens from the faucet
type MintValueRequest struct {
	Token  string `json:"token" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Parse validates the request body and returns the token, the recipient and the amount
func (r *MintValueRequest) Parse() (token, to common.Address, amount *big.Int, err error) {
	if token, err = ParseAddress("token", r.Token); err != nil {
		return
	}
	if to, err = ParseAddress("to", r.To); err != nil {
		return
	}
	amount, err = ParseAmount("amount", r.Amount)
	return
}

// MintAssetRequest represents the request body for creating a unique asset from the faucet
type MintAssetRequest struct {
	Collection  string `json:"collection" binding:"required"`
	TokenNumber string `json:"token_number" binding:"required"`
	Owner       string `json:"owner" binding:"required"`
}

// Parse validates the request body and returns the asset and its owner
func (r *MintAssetRequest) Parse() (domain.AssetRef, common.Address, error) {
	collection, err := ParseAddress("collection", r.Collection)
	if err != nil {
		return domain.AssetRef{}, common.Address{}, err
	}
	asset, err := domain.NewAssetRef(collection, r.TokenNumber)
	if err != nil {
		return domain.AssetRef{}, common.Address{}, apierrors.NewValidationError(err.Error())
	}
	owner, err := ParseAddress("owner", r.Owner)
	if err != nil {
		return domain.AssetRef{}, common.Address{}, err
	}
	return asset, owner, nil
}
