package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SaleStatus is the derived lifecycle state of a sale at a point in time
type SaleStatus string

const (
	SaleStatusUpcoming   SaleStatus = "upcoming"
	SaleStatusOpen       SaleStatus = "open"
	SaleStatusSuccessful SaleStatus = "successful"
	SaleStatusFailed     SaleStatus = "failed"
	SaleStatusBoughtOut  SaleStatus = "bought_out"
)

// IsValidSaleStatus checks if a sale status filter is known
func IsValidSaleStatus(s SaleStatus) bool {
	switch s {
	case SaleStatusUpcoming, SaleStatusOpen, SaleStatusSuccessful, SaleStatusFailed, SaleStatusBoughtOut:
		return true
	}
	return false
}

// Sale is one fractionalization event
type Sale struct {
	ID                     SaleID         `json:"id"`
	Initiator              common.Address `json:"initiator"`
	EscrowAddress          common.Address `json:"escrow_address"`
	Asset                  AssetRef       `json:"asset"`
	PaymentToken           common.Address `json:"payment_token"`
	OpeningTime            time.Time      `json:"opening_time"`
	ClosingTime            time.Time      `json:"closing_time"`
	FractionPrice          *big.Int       `json:"fraction_price"`
	FractionsAmount        uint64         `json:"fractions_amount"`
	MinFractionsKept       uint64         `json:"min_fractions_kept"`
	SaleMinFractions       uint64         `json:"sale_min_fractions"`
	FractionsSold          uint64         `json:"fractions_sold"`
	NftWithdrawn           bool           `json:"nft_withdrawn"`
	FractionsKeptWithdrawn bool           `json:"fractions_kept_withdrawn"`
	BoughtOut              bool           `json:"bought_out"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// FractionsForSale is the pool offered to buyers
func (s *Sale) FractionsForSale() uint64 {
	return s.FractionsAmount - s.MinFractionsKept
}

// FractionsAvailable is what is left in the pool
func (s *Sale) FractionsAvailable() uint64 {
	return s.FractionsForSale() - s.FractionsSold
}

// SoldOut reports whether the whole pool has been sold
func (s *Sale) SoldOut() bool {
	return s.FractionsSold >= s.FractionsForSale()
}

// IsOpen reports whether purchases are accepted at now
func (s *Sale) IsOpen(now time.Time) bool {
	return !s.BoughtOut &&
		!now.Before(s.OpeningTime) &&
		now.Before(s.ClosingTime) &&
		!s.SoldOut()
}

// IsClosed reports whether the sale is final at now. A sold out or bought out sale closes early.
func (s *Sale) IsClosed(now time.Time) bool {
	return s.BoughtOut || s.SoldOut() || !now.Before(s.ClosingTime)
}

// IsSuccessful reports whether enough fractions are placed. Kept fractions count toward the minimum.
func (s *Sale) IsSuccessful() bool {
	return s.FractionsSold+s.MinFractionsKept >= s.SaleMinFractions
}

// Status returns the derived status at now
func (s *Sale) Status(now time.Time) SaleStatus {
	switch {
	case s.BoughtOut:
		return SaleStatusBoughtOut
	case now.Before(s.OpeningTime) && !s.SoldOut():
		return SaleStatusUpcoming
	case s.IsOpen(now):
		return SaleStatusOpen
	case s.IsSuccessful():
		return SaleStatusSuccessful
	default:
		return SaleStatusFailed
	}
}

// Clone returns a deep copy
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	c := *s
	c.FractionPrice = CloneBig(s.FractionPrice)
	return &c
}
