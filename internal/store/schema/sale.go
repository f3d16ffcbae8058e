package schema

import (
	"time"
)

// Sale represents the sales table - one row per fractionalization event
type Sale struct {
	// ID is the sale id, which is also the fraction id in the fraction ledger
	ID int64 `gorm:"column:id;primaryKey;autoIncrement:false"`
	// Initiator is the address that set up the sale
	Initiator string `gorm:"column:initiator;not null;type:text;index"`
	// EscrowAddress is the timed escrow holding the sale proceeds
	EscrowAddress string `gorm:"column:escrow_address;not null;type:text;uniqueIndex"`
	// AssetCollection is the contract address of the fractionalized asset
	AssetCollection string `gorm:"column:asset_collection;not null;type:text;index:idx_sales_asset,priority:1"`
	// AssetTokenNumber is the token number of the fractionalized asset
	AssetTokenNumber string `gorm:"column:asset_token_number;not null;type:text;index:idx_sales_asset,priority:2"`
	// PaymentToken is the value token buyers pay with
	PaymentToken string `gorm:"column:payment_token;not null;type:text"`
	// OpeningTime is when purchases start being accepted
	OpeningTime time.Time `gorm:"column:opening_time;not null;type:timestamptz"`
	// ClosingTime is when purchases stop being accepted
	ClosingTime time.Time `gorm:"column:closing_time;not null;type:timestamptz"`
	// FractionPrice is the price of one fraction (stored as string to support up to 78 digits)
	FractionPrice string `gorm:"column:fraction_price;not null;type:numeric(78,0)"`
	// FractionsAmount is the total fractions minted
	FractionsAmount int64 `gorm:"column:fractions_amount;not null"`
	// MinFractionsKept is the part reserved for the initiator
	MinFractionsKept int64 `gorm:"column:min_fractions_kept;not null"`
	// SaleMinFractions is the success threshold
	SaleMinFractions int64 `gorm:"column:sale_min_fractions;not null"`
	// FractionsSold is the running count of purchased fractions
	FractionsSold int64 `gorm:"column:fractions_sold;not null;default:0"`
	// NftWithdrawn records that a failed sale returned its asset
	NftWithdrawn bool `gorm:"column:nft_withdrawn;not null;default:false"`
	// FractionsKeptWithdrawn records that the initiator collected kept and unsold fractions
	FractionsKeptWithdrawn bool `gorm:"column:fractions_kept_withdrawn;not null;default:false"`
	// BoughtOut records that the sale id has been bought out
	BoughtOut bool `gorm:"column:bought_out;not null;default:false"`
	// CreatedAt is the timestamp when this sale was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this sale was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}
