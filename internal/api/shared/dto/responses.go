package dto

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/buyout"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/executor"
)

func amountString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func parseResponseAmount(field, value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s in response: %q", field, value)
	}
	return v, nil
}

// SaleResponse represents a sale. Derived fields are set when the sale was read through a view.
type SaleResponse struct {
	ID                     domain.SaleID     `json:"id"`
	Initiator              common.Address    `json:"initiator"`
	EscrowAddress          common.Address    `json:"escrow_address"`
	Collection             common.Address    `json:"collection"`
	TokenNumber            string            `json:"token_number"`
	PaymentToken           common.Address    `json:"payment_token"`
	OpeningTime            time.Time         `json:"opening_time"`
	ClosingTime            time.Time         `json:"closing_time"`
	FractionPrice          string            `json:"fraction_price"`
	FractionsAmount        uint64            `json:"fractions_amount"`
	MinFractionsKept       uint64            `json:"min_fractions_kept"`
	SaleMinFractions       uint64            `json:"sale_min_fractions"`
	FractionsSold          uint64            `json:"fractions_sold"`
	NftWithdrawn           bool              `json:"nft_withdrawn"`
	FractionsKeptWithdrawn bool              `json:"fractions_kept_withdrawn"`
	BoughtOut              bool              `json:"bought_out"`
	Status                 domain.SaleStatus `json:"status,omitempty"`
	IsOpen                 *bool             `json:"is_open,omitempty"`
	IsSuccessful           *bool             `json:"is_successful,omitempty"`
	FractionsAvailable     *uint64           `json:"fractions_available,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// NewSaleResponse converts a stored sale
func NewSaleResponse(s *domain.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	return &SaleResponse{
		ID:                     s.ID,
		Initiator:              s.Initiator,
		EscrowAddress:          s.EscrowAddress,
		Collection:             s.Asset.Collection,
		TokenNumber:            s.Asset.TokenNumber,
		PaymentToken:           s.PaymentToken,
		OpeningTime:            s.OpeningTime,
		ClosingTime:            s.ClosingTime,
		FractionPrice:          amountString(s.FractionPrice),
		FractionsAmount:        s.FractionsAmount,
		MinFractionsKept:       s.MinFractionsKept,
		SaleMinFractions:       s.SaleMinFractions,
		FractionsSold:          s.FractionsSold,
		NftWithdrawn:           s.NftWithdrawn,
		FractionsKeptWithdrawn: s.FractionsKeptWithdrawn,
		BoughtOut:              s.BoughtOut,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

// NewSaleViewResponse converts a sale view with its derived state
func NewSaleViewResponse(v *executor.SaleView) *SaleResponse {
	if v == nil {
		return nil
	}
	r := NewSaleResponse(v.Sale)
	r.Status = v.Status
	r.IsOpen = &v.IsOpen
	r.IsSuccessful = &v.IsSuccessful
	r.FractionsAvailable = &v.FractionsAvailable
	return r
}

// ToDomain converts the response back to a sale
func (r *SaleResponse) ToDomain() (*domain.Sale, error) {
	price, err := parseResponseAmount("fraction_price", r.FractionPrice)
	if err != nil {
		return nil, err
	}
	return &domain.Sale{
		ID:                     r.ID,
		Initiator:              r.Initiator,
		EscrowAddress:          r.EscrowAddress,
		Asset:                  domain.AssetRef{Collection: r.Collection, TokenNumber: r.TokenNumber},
		PaymentToken:           r.PaymentToken,
		OpeningTime:            r.OpeningTime,
		ClosingTime:            r.ClosingTime,
		FractionPrice:          price,
		FractionsAmount:        r.FractionsAmount,
		MinFractionsKept:       r.MinFractionsKept,
		SaleMinFractions:       r.SaleMinFractions,
		FractionsSold:          r.FractionsSold,
		NftWithdrawn:           r.NftWithdrawn,
		FractionsKeptWithdrawn: r.FractionsKeptWithdrawn,
		BoughtOut:              r.BoughtOut,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}, nil
}

// ListSalesResponse represents a page of sales
type ListSalesResponse struct {
	Sales []*SaleResponse `json:"sales"`
	Total uint64          `json:"total"`
}

// SettleableSalesResponse represents the sales awaiting seller release
type SettleableSalesResponse struct {
	Sales []*SaleResponse `json:"sales"`
}

// SaleFlagResponse represents a boolean query on a sale
type SaleFlagResponse struct {
	SaleID domain.SaleID `json:"sale_id"`
	Value  bool          `json:"value"`
}

// WithdrawFractionsKeptResponse represents the kept fractions sent back to the initiator
type WithdrawFractionsKeptResponse struct {
	SaleID domain.SaleID `json:"sale_id"`
	Amount uint64        `json:"amount"`
}

// BuyoutResponse represents a buyout. Price and window are absent until the params are set.
type BuyoutResponse struct {
	ID             domain.BuyoutID     `json:"id"`
	FractionSaleID domain.SaleID       `json:"fraction_sale_id"`
	Initiator      common.Address      `json:"initiator"`
	BuyoutToken    common.Address      `json:"buyout_token"`
	BuyoutPrice    string              `json:"buyout_price,omitempty"`
	OpeningTime    *time.Time          `json:"opening_time,omitempty"`
	ClosingTime    *time.Time          `json:"closing_time,omitempty"`
	IsSuccessful   bool                `json:"is_successful"`
	Unsupervised   bool                `json:"unsupervised"`
	Status         domain.BuyoutStatus `json:"status,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// NewBuyoutResponse converts a stored buyout
func NewBuyoutResponse(b *domain.Buyout) *BuyoutResponse {
	if b == nil {
		return nil
	}
	r := &BuyoutResponse{
		ID:             b.ID,
		FractionSaleID: b.FractionSaleID,
		Initiator:      b.Initiator,
		BuyoutToken:    b.BuyoutToken,
		IsSuccessful:   b.IsSuccessful,
		Unsupervised:   b.Unsupervised,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if b.ParamsSet() {
		opening, closing := b.OpeningTime, b.ClosingTime
		r.BuyoutPrice = amountString(b.BuyoutPrice)
		r.OpeningTime = &opening
		r.ClosingTime = &closing
	}
	return r
}

// NewBuyoutViewResponse converts a buyout view with its derived status
func NewBuyoutViewResponse(v *executor.BuyoutView) *BuyoutResponse {
	if v == nil {
		return nil
	}
	r := NewBuyoutResponse(v.Buyout)
	r.Status = v.Status
	return r
}

// EscrowResponse represents a settlement escrow
type EscrowResponse struct {
	Address            common.Address    `json:"address"`
	Kind               domain.EscrowKind `json:"kind"`
	SaleID             domain.SaleID     `json:"sale_id"`
	BuyoutID           *domain.BuyoutID  `json:"buyout_id,omitempty"`
	PaymentToken       common.Address    `json:"payment_token"`
	PricePerFraction   string            `json:"price_per_fraction"`
	ProtocolFeeBps     uint64            `json:"protocol_fee_bps"`
	GovernanceTreasury common.Address    `json:"governance_treasury"`
	SellerReleased     bool              `json:"seller_released"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// NewEscrowResponse converts a stored escrow
func NewEscrowResponse(e *domain.Escrow) *EscrowResponse {
	if e == nil {
		return nil
	}
	return &EscrowResponse{
		Address:            e.Address,
		Kind:               e.Kind,
		SaleID:             e.SaleID,
		BuyoutID:           e.BuyoutID,
		PaymentToken:       e.PaymentToken,
		PricePerFraction:   amountString(e.PricePerFraction),
		ProtocolFeeBps:     e.ProtocolFeeBps,
		GovernanceTreasury: e.GovernanceTreasury,
		SellerReleased:     e.SellerReleased,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// ToDomain converts the response back to an escrow
func (r *EscrowResponse) ToDomain() (*domain.Escrow, error) {
	price, err := parseResponseAmount("price_per_fraction", r.PricePerFraction)
	if err != nil {
		return nil, err
	}
	return &domain.Escrow{
		Address:            r.Address,
		Kind:               r.Kind,
		SaleID:             r.SaleID,
		BuyoutID:           r.BuyoutID,
		PaymentToken:       r.PaymentToken,
		PricePerFraction:   price,
		ProtocolFeeBps:     r.ProtocolFeeBps,
		GovernanceTreasury: r.GovernanceTreasury,
		SellerReleased:     r.SellerReleased,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}, nil
}

// BuyoutExecutionResponse represents an executed buyout
type BuyoutExecutionResponse struct {
	Buyout        *BuyoutResponse `json:"buyout"`
	Sale          *SaleResponse   `json:"sale"`
	Escrow        *EscrowResponse `json:"escrow,omitempty"`
	CallerBalance uint64          `json:"caller_balance"`
	TotalPayment  string          `json:"total_payment"`
	Fee           string          `json:"fee"`
}

// NewBuyoutExecutionResponse converts a buyout execution result
func NewBuyoutExecutionResponse(r *buyout.ExecutionResult) *BuyoutExecutionResponse {
	if r == nil {
		return nil
	}
	return &BuyoutExecutionResponse{
		Buyout:        NewBuyoutResponse(r.Buyout),
		Sale:          NewSaleResponse(r.Sale),
		Escrow:        NewEscrowResponse(r.Escrow),
		CallerBalance: r.CallerBalance,
		TotalPayment:  amountString(r.TotalPayment),
		Fee:           amountString(r.Fee),
	}
}

// HolderPayout is the fractions burned for one holder in a release
type HolderPayout struct {
	Holder    common.Address `json:"holder"`
	Fractions uint64         `json:"fractions"`
}

// ReleaseResponse represents a completed holder release
type ReleaseResponse struct {
	Escrow  *EscrowResponse `json:"escrow"`
	Payouts []HolderPayout  `json:"payouts"`
	Paid    string          `json:"paid"`
}

// NewReleaseResponse converts a release result
func NewReleaseResponse(r *escrow.ReleaseResult) *ReleaseResponse {
	if r == nil {
		return nil
	}
	payouts := make([]HolderPayout, 0, len(r.Holders))
	for i, h := range r.Holders {
		payouts = append(payouts, HolderPayout{Holder: h, Fractions: r.Amounts[i]})
	}
	return &ReleaseResponse{
		Escrow:  NewEscrowResponse(r.Escrow),
		Payouts: payouts,
		Paid:    amountString(r.Paid),
	}
}

// SellerReleaseResponse represents a completed seller release
type SellerReleaseResponse struct {
	Escrow       *EscrowResponse `json:"escrow"`
	Initiator    common.Address  `json:"initiator"`
	SellerAmount string          `json:"seller_amount"`
	Fee          string          `json:"fee"`
}

// NewSellerReleaseResponse converts a seller release result
func NewSellerReleaseResponse(r *escrow.SellerReleaseResult) *SellerReleaseResponse {
	if r == nil {
		return nil
	}
	return &SellerReleaseResponse{
		Escrow:       NewEscrowResponse(r.Escrow),
		Initiator:    r.Initiator,
		SellerAmount: amountString(r.SellerAmount),
		Fee:          amountString(r.Fee),
	}
}

// ToDomain converts the response back to a seller release result
func (r *SellerReleaseResponse) ToDomain() (*escrow.SellerReleaseResult, error) {
	result := &escrow.SellerReleaseResult{Initiator: r.Initiator}
	if r.Escrow != nil {
		e, err := r.Escrow.ToDomain()
		if err != nil {
			return nil, err
		}
		result.Escrow = e
	}
	var err error
	if result.SellerAmount, err = parseResponseAmount("seller_amount", r.SellerAmount); err != nil {
		return nil, err
	}
	if result.Fee, err = parseResponseAmount("fee", r.Fee); err != nil {
		return nil, err
	}
	return result, nil
}

// NotificationsResponse represents a page of the notifications journal.
// NextAnchor is the cursor to pass as anchor for the following page.
type NotificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	NextAnchor    *uint64                `json:"next_anchor,omitempty"`
}

// NewNotificationsResponse builds a journal page
func NewNotificationsResponse(notifications []*domain.Notification) *NotificationsResponse {
	r := &NotificationsResponse{Notifications: notifications}
	if r.Notifications == nil {
		r.Notifications = []*domain.Notification{}
	}
	if n := len(notifications); n > 0 {
		next := notifications[n-1].Cursor
		r.NextAnchor = &next
	}
	return r
}

// TiersResponse is a tier schedule with decimal price limits
type TiersResponse struct {
	PriceLimits      []string `json:"price_limits"`
	FractionsAmounts []uint64 `json:"fractions_amounts"`
}

// ProtocolParamsResponse represents the current protocol parameters
type ProtocolParamsResponse struct {
	SaleFeeBps                  uint64         `json:"sale_fee_bps"`
	BuyoutFeeBps                uint64         `json:"buyout_fee_bps"`
	BuyoutMinFractionsBps       uint64         `json:"buyout_min_fractions_bps"`
	BuyoutOpenTimePeriodSeconds int64          `json:"buyout_open_time_period_seconds"`
	GovernanceTreasury          common.Address `json:"governance_treasury"`
	Tiers                       TiersResponse  `json:"tiers"`
}

// NewProtocolParamsResponse converts protocol parameters
func NewProtocolParamsResponse(p *domain.ProtocolParams) *ProtocolParamsResponse {
	if p == nil {
		return nil
	}
	limits := make([]string, 0, len(p.Tiers.PriceLimits))
	for _, l := range p.Tiers.PriceLimits {
		limits = append(limits, amountString(l))
	}
	return &ProtocolParamsResponse{
		SaleFeeBps:                  p.SaleFeeBps,
		BuyoutFeeBps:                p.BuyoutFeeBps,
		BuyoutMinFractionsBps:       p.BuyoutMinFractionsBps,
		BuyoutOpenTimePeriodSeconds: int64(p.BuyoutOpenTimePeriod / time.Second),
		GovernanceTreasury:          p.GovernanceTreasury,
		Tiers: TiersResponse{
			PriceLimits:      limits,
			FractionsAmounts: append([]uint64(nil), p.Tiers.FractionsAmounts...),
		},
	}
}

// ValueAccountResponse represents a payment token balance and one allowance
type ValueAccountResponse struct {
	Token     common.Address `json:"token"`
	Holder    common.Address `json:"holder"`
	Balance   string         `json:"balance"`
	Spender   common.Address `json:"spender"`
	Allowance string         `json:"allowance"`
}

// NewValueAccountResponse converts a value account
func NewValueAccountResponse(a *executor.ValueAccount) *ValueAccountResponse {
	if a == nil {
		return nil
	}
	return &ValueAccountResponse{
		Token:     a.Token,
		Holder:    a.Holder,
		Balance:   amountString(a.Balance),
		Spender:   a.Spender,
		Allowance: amountString(a.Allowance),
	}
}
