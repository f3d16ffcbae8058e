package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// BuyoutStatus is the derived state of a buyout at a point in time
type BuyoutStatus string

const (
	BuyoutStatusRequested BuyoutStatus = "requested"
	BuyoutStatusProposed  BuyoutStatus = "proposed"
	BuyoutStatusExpired   BuyoutStatus = "expired"
	BuyoutStatusExecuted  BuyoutStatus = "executed"
)

// Buyout is one attempt to reclaim the asset of a successful sale
type Buyout struct {
	ID             BuyoutID       `json:"id"`
	FractionSaleID SaleID         `json:"fraction_sale_id"`
	Initiator      common.Address `json:"initiator"`
	BuyoutToken    common.Address `json:"buyout_token"`
	BuyoutPrice    *big.Int       `json:"buyout_price"`
	OpeningTime    time.Time      `json:"opening_time"`
	ClosingTime    time.Time      `json:"closing_time"`
	IsSuccessful   bool           `json:"is_successful"`
	Unsupervised   bool           `json:"unsupervised"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ParamsSet reports whether price and window have been fixed
func (b *Buyout) ParamsSet() bool {
	return !b.ClosingTime.IsZero()
}

// Status returns the derived status at now
func (b *Buyout) Status(now time.Time) BuyoutStatus {
	switch {
	case b.IsSuccessful:
		return BuyoutStatusExecuted
	case !b.ParamsSet():
		return BuyoutStatusRequested
	case now.Before(b.ClosingTime):
		return BuyoutStatusProposed
	default:
		return BuyoutStatusExpired
	}
}

// IsPending reports whether the buyout still blocks a new request on the same sale
func (b *Buyout) IsPending(now time.Time) bool {
	s := b.Status(now)
	return s == BuyoutStatusRequested || s == BuyoutStatusProposed
}

// Clone returns a deep copy
func (b *Buyout) Clone() *Buyout {
	if b == nil {
		return nil
	}
	c := *b
	c.BuyoutPrice = CloneBig(b.BuyoutPrice)
	return &c
}
