package schema

import (
	"time"
)

// Buyout represents the buyouts table
type Buyout struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	FractionSaleID int64  `gorm:"column:fraction_sale_id;not null;index"`
	Initiator      string `gorm:"column:initiator;not null;type:text"`
	// BuyoutToken is the buyout escrow address, empty until executed
	BuyoutToken string `gorm:"column:buyout_token;type:text"`
	// BuyoutPrice is the price per outstanding fraction
	BuyoutPrice string `gorm:"column:buyout_price;not null;type:numeric(78,0);default:0"`
	// OpeningTime and ClosingTime are null until params are set
	OpeningTime  *time.Time `gorm:"column:opening_time;type:timestamptz"`
	ClosingTime  *time.Time `gorm:"column:closing_time;type:timestamptz"`
	IsSuccessful bool       `gorm:"column:is_successful;not null;default:false"`
	Unsupervised bool       `gorm:"column:unsupervised;not null;default:false"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Sale Sale `gorm:"foreignKey:FractionSaleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Buyout model
func (Buyout) TableName() string {
	return "buyouts"
}
