package store

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
)

const (
	KEY_SALE_ID_COUNTER   = "counter:sale_id"
	KEY_BUYOUT_ID_COUNTER = "counter:buyout_id"
	KEY_PROTOCOL_PARAMS   = "protocol_params"
	KEY_RELAY_CURSOR      = "relay_cursor"

	DEFAULT_QUERY_LIMIT = 20
	MAX_QUERY_LIMIT     = 100
)

// SaleQueryFilter narrows ListSales
type SaleQueryFilter struct {
	Initiator *common.Address
	Status    *domain.SaleStatus
	// Now is the instant derived statuses are evaluated at
	Now    time.Time
	Limit  int
	Offset uint64
}

// NotificationQueryFilter pages through the notifications journal
type NotificationQueryFilter struct {
	// Anchor returns notifications with a cursor strictly greater than it
	Anchor *uint64
	Limit  int
}

// Store defines the interface for database operations.
// Getters return nil, nil when the record does not exist.
type Store interface {
	// WithTx runs fn against a transactional store. Every write inside fn commits or none does.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// NextSaleID allocates the next sale id, starting at 0
	NextSaleID(ctx context.Context) (domain.SaleID, error)
	// CreateSale inserts a sale
	CreateSale(ctx context.Context, sale *domain.Sale) error
	// UpdateSale overwrites the mutable fields of a sale
	UpdateSale(ctx context.Context, sale *domain.Sale) error
	// GetSale retrieves a sale by id
	GetSale(ctx context.Context, id domain.SaleID) (*domain.Sale, error)
	// GetLatestSaleByAsset retrieves the most recent sale of an asset
	GetLatestSaleByAsset(ctx context.Context, asset domain.AssetRef) (*domain.Sale, error)
	// ListSales lists sales ordered by id with the total matching count
	ListSales(ctx context.Context, filter SaleQueryFilter) ([]*domain.Sale, uint64, error)
	// ListSettleableSales lists closed successful sales whose seller has not been released
	ListSettleableSales(ctx context.Context, now time.Time, limit int) ([]*domain.Sale, error)

	// NextBuyoutID allocates the next buyout id, starting at 0
	NextBuyoutID(ctx context.Context) (domain.BuyoutID, error)
	// CreateBuyout inserts a buyout
	CreateBuyout(ctx context.Context, buyout *domain.Buyout) error
	// UpdateBuyout overwrites the mutable fields of a buyout
	UpdateBuyout(ctx context.Context, buyout *domain.Buyout) error
	// GetBuyout retrieves a buyout by id
	GetBuyout(ctx context.Context, id domain.BuyoutID) (*domain.Buyout, error)
	// GetLatestBuyoutBySale retrieves the most recent buyout of a sale
	GetLatestBuyoutBySale(ctx context.Context, saleID domain.SaleID) (*domain.Buyout, error)

	// CreateEscrow inserts an escrow record
	CreateEscrow(ctx context.Context, escrow *domain.Escrow) error
	// UpdateEscrow overwrites the mutable fields of an escrow record
	UpdateEscrow(ctx context.Context, escrow *domain.Escrow) error
	// GetEscrow retrieves an escrow record by address
	GetEscrow(ctx context.Context, address common.Address) (*domain.Escrow, error)

	// AppendNotifications appends to the journal and assigns each notification its cursor
	AppendNotifications(ctx context.Context, notifications []*domain.Notification) error
	// GetNotifications returns journal entries in cursor order
	GetNotifications(ctx context.Context, filter NotificationQueryFilter) ([]*domain.Notification, error)

	// GetProtocolParams retrieves the protocol parameters
	GetProtocolParams(ctx context.Context) (*domain.ProtocolParams, error)
	// SaveProtocolParams stores the protocol parameters
	SaveProtocolParams(ctx context.Context, params *domain.ProtocolParams) error

	// GetKeyValue retrieves a value by key, empty when missing
	GetKeyValue(ctx context.Context, key string) (string, error)
	// SetKeyValue sets a key-value pair
	SetKeyValue(ctx context.Context, key string, value string) error
}

// NormalizeLimit clamps a page size into [1, MAX_QUERY_LIMIT]
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DEFAULT_QUERY_LIMIT
	}
	if limit > MAX_QUERY_LIMIT {
		return MAX_QUERY_LIMIT
	}
	return limit
}
