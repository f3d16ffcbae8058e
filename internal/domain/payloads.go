package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type NewFractionsSalePayload struct {
	SaleID SaleID         `json:"sale_id"`
	Escrow common.Address `json:"escrow"`
	Sale   *Sale          `json:"sale"`
}

type FractionsPurchasedPayload struct {
	SaleID  SaleID         `json:"sale_id"`
	Buyer   common.Address `json:"buyer"`
	Amount  uint64         `json:"amount"`
	Payment *big.Int       `json:"payment"`
}

type FailedSaleNftWithdrawnPayload struct {
	SaleID      SaleID         `json:"sale_id"`
	Initiator   common.Address `json:"initiator"`
	Collection  common.Address `json:"collection"`
	TokenNumber string         `json:"token_number"`
}

type FractionsKeptWithdrawnPayload struct {
	SaleID    SaleID         `json:"sale_id"`
	Initiator common.Address `json:"initiator"`
	Amount    uint64         `json:"amount"`
}

type FractionsTransferredPayload struct {
	SaleID SaleID         `json:"sale_id"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount uint64         `json:"amount"`
}

type BuyoutRequestedPayload struct {
	SaleID    SaleID         `json:"sale_id"`
	Initiator common.Address `json:"initiator"`
	BuyoutID  BuyoutID       `json:"buyout_id"`
}

type BuyoutParamsSetPayload struct {
	BuyoutID BuyoutID `json:"buyout_id"`
	Buyout   *Buyout  `json:"buyout"`
}

// BuyoutExecutedPayload carries the caller balance at execution and the payment routed to the escrow
type BuyoutExecutedPayload struct {
	BuyoutID      BuyoutID       `json:"buyout_id"`
	SaleID        SaleID         `json:"sale_id"`
	Caller        common.Address `json:"caller"`
	CallerBalance uint64         `json:"caller_balance"`
	TotalPayment  *big.Int       `json:"total_payment"`
	Fee           *big.Int       `json:"fee"`
	Unsupervised  bool           `json:"unsupervised"`
}

type TokensReleasedPayload struct {
	Escrow       common.Address   `json:"escrow"`
	Holders      []common.Address `json:"holders"`
	PaymentToken common.Address   `json:"payment_token"`
	SaleID       SaleID           `json:"sale_id"`
	Amounts      []uint64         `json:"amounts"`
	Price        *big.Int         `json:"price"`
}

type TokensSellerReleasedPayload struct {
	Initiator    common.Address `json:"initiator"`
	Escrow       common.Address `json:"escrow"`
	SaleID       SaleID         `json:"sale_id"`
	SellerAmount *big.Int       `json:"seller_amount"`
	Fee          *big.Int       `json:"fee"`
}

type AllowListUpdatedPayload struct {
	Allowed    []common.Address `json:"allowed,omitempty"`
	Disallowed []common.Address `json:"disallowed,omitempty"`
}

type PermissionChangedPayload struct {
	Capability Capability     `json:"capability"`
	Principal  common.Address `json:"principal"`
}

type FeeSetPayload struct {
	Bps uint64 `json:"bps"`
}

type GovernanceTreasurySetPayload struct {
	Treasury common.Address `json:"treasury"`
}

type TierScheduleSetPayload struct {
	Tiers TierSchedule `json:"tiers"`
}

type BuyoutMinFractionsSetPayload struct {
	Bps uint64 `json:"bps"`
}

type BuyoutOpenTimePeriodSetPayload struct {
	Seconds int64 `json:"seconds"`
}
