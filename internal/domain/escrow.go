package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EscrowKind distinguishes the two settlement escrow variants
type EscrowKind string

const (
	EscrowKindTimed  EscrowKind = "timed"
	EscrowKindBuyout EscrowKind = "buyout"
)

// Escrow is the settlement record of a timed (per sale) or buyout (per execution) escrow.
// Funds are held by the value token ledger under Address.
type Escrow struct {
	Address            common.Address `json:"address"`
	Kind               EscrowKind     `json:"kind"`
	SaleID             SaleID         `json:"sale_id"`
	BuyoutID           *BuyoutID      `json:"buyout_id,omitempty"`
	PaymentToken       common.Address `json:"payment_token"`
	PricePerFraction   *big.Int       `json:"price_per_fraction"`
	ProtocolFeeBps     uint64         `json:"protocol_fee_bps"`
	GovernanceTreasury common.Address `json:"governance_treasury"`
	SellerReleased     bool           `json:"seller_released"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Clone returns a deep copy
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	c := *e
	c.PricePerFraction = CloneBig(e.PricePerFraction)
	if e.BuyoutID != nil {
		id := *e.BuyoutID
		c.BuyoutID = &id
	}
	return &c
}
