package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SaleID identifies a fractions sale. It is also the fraction id in the fraction ledger.
type SaleID uint64

func (id SaleID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseSaleID parses a decimal sale id
func ParseSaleID(s string) (SaleID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sale id %q: %w", s, err)
	}
	return SaleID(v), nil
}

// BuyoutID identifies a buyout attempt
type BuyoutID uint64

func (id BuyoutID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseBuyoutID parses a decimal buyout id
func ParseBuyoutID(s string) (BuyoutID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid buyout id %q: %w", s, err)
	}
	return BuyoutID(v), nil
}

// AssetRef references a unique asset: a collection contract and a token number
type AssetRef struct {
	Collection  common.Address `json:"collection"`
	TokenNumber string         `json:"token_number"`
}

// NewAssetRef normalizes the token number to its canonical decimal form
func NewAssetRef(collection common.Address, tokenNumber string) (AssetRef, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(tokenNumber), 10)
	if !ok || n.Sign() < 0 {
		return AssetRef{}, fmt.Errorf("invalid token number %q", tokenNumber)
	}
	return AssetRef{Collection: collection, TokenNumber: n.String()}, nil
}

func (a AssetRef) String() string {
	return fmt.Sprintf("%s:%s", strings.ToLower(a.Collection.Hex()), a.TokenNumber)
}

// Capability is a named permission checked by the permission service
type Capability string

const (
	CapabilityAdmin      Capability = "admin"
	CapabilitySaleIssuer Capability = "sale_issuer"
)

// IsValidCapability checks if a capability is known
func IsValidCapability(c Capability) bool {
	return c == CapabilityAdmin || c == CapabilitySaleIssuer
}

// IsZeroAddress reports whether addr is the null address
func IsZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}

// MulBps returns amount * bps / BPS_DENOMINATOR, truncated toward zero
func MulBps(amount *big.Int, bps uint64) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return out.Quo(out, big.NewInt(BPS_DENOMINATOR))
}

// MulFractions returns fractions * price
func MulFractions(fractions uint64, price *big.Int) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(fractions), price)
}

// CloneBig copies a big integer, mapping nil to zero
func CloneBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
