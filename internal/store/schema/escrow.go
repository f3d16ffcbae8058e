package schema

import (
	"time"
)

// EscrowKind distinguishes the settlement escrow variants
type EscrowKind string

const (
	// EscrowKindTimed is the per sale escrow holding sale proceeds
	EscrowKindTimed EscrowKind = "timed"
	// EscrowKindBuyout is the per execution escrow holding buyout proceeds
	EscrowKindBuyout EscrowKind = "buyout"
)

// Escrow represents the escrows table - settlement records keyed by escrow address
type Escrow struct {
	Address  string     `gorm:"column:address;primaryKey;type:text"`
	Kind     EscrowKind `gorm:"column:kind;not null;type:text"`
	SaleID   int64      `gorm:"column:sale_id;not null;index"`
	BuyoutID *int64     `gorm:"column:buyout_id"`
	// PaymentToken is the value token the escrow pays out in
	PaymentToken string `gorm:"column:payment_token;not null;type:text"`
	// PricePerFraction is paid per released fraction (stored as string to support up to 78 digits)
	PricePerFraction string `gorm:"column:price_per_fraction;not null;type:numeric(78,0)"`
	// ProtocolFeeBps and GovernanceTreasury are captured at creation for timed escrows
	ProtocolFeeBps     int64     `gorm:"column:protocol_fee_bps;not null;default:0"`
	GovernanceTreasury string    `gorm:"column:governance_treasury;type:text"`
	SellerReleased     bool      `gorm:"column:seller_released;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Escrow model
func (Escrow) TableName() string {
	return "escrows"
}
