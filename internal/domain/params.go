package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TierSchedule maps an aggregate sale value to the number of fractions minted.
// PriceLimits are ascending breakpoints; the tier is the last limit strictly below the price.
type TierSchedule struct {
	PriceLimits      []*big.Int `json:"price_limits"`
	FractionsAmounts []uint64   `json:"fractions_amounts"`
}

// DefaultTierSchedule returns the schedule for a 6 decimals payment token
func DefaultTierSchedule() TierSchedule {
	unit := big.NewInt(1_000_000)
	limit := func(v int64) *big.Int {
		return new(big.Int).Mul(big.NewInt(v), unit)
	}
	return TierSchedule{
		PriceLimits:      []*big.Int{limit(0), limit(500_000), limit(1_000_000), limit(2_500_000), limit(4_000_000)},
		FractionsAmounts: []uint64{500, 1000, 4000, 6000, 10000},
	}
}

// Validate checks the schedule shape
func (t TierSchedule) Validate() error {
	if len(t.PriceLimits) == 0 || len(t.PriceLimits) != len(t.FractionsAmounts) {
		return fmt.Errorf("%w: limits and amounts must be non-empty and of equal length", ErrInvalidTierSchedule)
	}
	for i := range t.PriceLimits {
		if t.PriceLimits[i] == nil || t.PriceLimits[i].Sign() < 0 {
			return fmt.Errorf("%w: price limit %d is negative", ErrInvalidTierSchedule, i)
		}
		if t.FractionsAmounts[i] == 0 {
			return fmt.Errorf("%w: fractions amount %d is zero", ErrInvalidTierSchedule, i)
		}
		if i == 0 {
			continue
		}
		if t.PriceLimits[i].Cmp(t.PriceLimits[i-1]) <= 0 {
			return fmt.Errorf("%w: price limits must be strictly ascending", ErrInvalidTierSchedule)
		}
		if t.FractionsAmounts[i] < t.FractionsAmounts[i-1] {
			return fmt.Errorf("%w: fractions amounts must be ascending", ErrInvalidTierSchedule)
		}
	}
	return nil
}

// FractionsFor returns the fractions amount for an aggregate sale value
func (t TierSchedule) FractionsFor(price *big.Int) (uint64, error) {
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}
	idx := -1
	for i, limit := range t.PriceLimits {
		if price.Cmp(limit) > 0 {
			idx = i
		}
	}
	if idx < 0 {
		return 0, ErrInvalidPrice
	}
	return t.FractionsAmounts[idx], nil
}

// Clone returns a deep copy
func (t TierSchedule) Clone() TierSchedule {
	c := TierSchedule{
		PriceLimits:      make([]*big.Int, len(t.PriceLimits)),
		FractionsAmounts: append([]uint64(nil), t.FractionsAmounts...),
	}
	for i, l := range t.PriceLimits {
		c.PriceLimits[i] = CloneBig(l)
	}
	return c
}

// ProtocolParams are the admin-tunable protocol settings
type ProtocolParams struct {
	SaleFeeBps            uint64         `json:"sale_fee_bps"`
	BuyoutFeeBps          uint64         `json:"buyout_fee_bps"`
	BuyoutMinFractionsBps uint64         `json:"buyout_min_fractions_bps"`
	BuyoutOpenTimePeriod  time.Duration  `json:"buyout_open_time_period"`
	GovernanceTreasury    common.Address `json:"governance_treasury"`
	Tiers                 TierSchedule   `json:"tiers"`
}

// ValidateProtocolFee checks a fee against the protocol bounds
func ValidateProtocolFee(bps uint64) error {
	if bps < MIN_PROTOCOL_FEE_BPS || bps > MAX_PROTOCOL_FEE_BPS {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrProtocolFeeOutOfBounds, bps, MIN_PROTOCOL_FEE_BPS, MAX_PROTOCOL_FEE_BPS)
	}
	return nil
}

// ValidateBuyoutMinFractions checks the minimum holding required to execute a buyout
func ValidateBuyoutMinFractions(bps uint64) error {
	if bps == 0 || bps >= BPS_DENOMINATOR {
		return fmt.Errorf("%w: %d not in (0, %d)", ErrBuyoutMinFractionsOutOfBounds, bps, BPS_DENOMINATOR)
	}
	return nil
}

// ValidateBuyoutOpenTimePeriod checks the buyout window length
func ValidateBuyoutOpenTimePeriod(d time.Duration) error {
	if d < MIN_BUYOUT_OPEN_TIME_PERIOD {
		return fmt.Errorf("%w: %s", ErrOpenTimePeriodBelowMinimum, d)
	}
	return nil
}

// Validate checks every parameter
func (p *ProtocolParams) Validate() error {
	if err := ValidateProtocolFee(p.SaleFeeBps); err != nil {
		return fmt.Errorf("sale fee: %w", err)
	}
	if err := ValidateProtocolFee(p.BuyoutFeeBps); err != nil {
		return fmt.Errorf("buyout fee: %w", err)
	}
	if err := ValidateBuyoutMinFractions(p.BuyoutMinFractionsBps); err != nil {
		return err
	}
	if err := ValidateBuyoutOpenTimePeriod(p.BuyoutOpenTimePeriod); err != nil {
		return err
	}
	if IsZeroAddress(p.GovernanceTreasury) {
		return fmt.Errorf("governance treasury: %w", ErrNullAddress)
	}
	return p.Tiers.Validate()
}

// Clone returns a deep copy
func (p *ProtocolParams) Clone() *ProtocolParams {
	if p == nil {
		return nil
	}
	c := *p
	c.Tiers = p.Tiers.Clone()
	return &c
}
