package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/store/schema"
)

const (
	sqlSoldOut    = "sales.fractions_sold >= sales.fractions_amount - sales.min_fractions_kept"
	sqlSuccessful = "sales.fractions_sold + sales.min_fractions_kept >= sales.sale_min_fractions"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 2
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 2
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// WithTx runs fn inside a database transaction. Nested calls use savepoints.
func (s *pgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

// nextCounter hands out the value stored under key and increments it under a row lock
func (s *pgStore) nextCounter(ctx context.Context, key string) (uint64, error) {
	var next uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var kv schema.KeyValueStore
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("key = ?", key).First(&kv).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			next = 0
		case err != nil:
			return err
		default:
			next, err = strconv.ParseUint(kv.Value, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse counter %s: %w", key, err)
			}
		}

		return tx.Save(&schema.KeyValueStore{Key: key, Value: strconv.FormatUint(next+1, 10)}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s: %w", key, err)
	}
	return next, nil
}

// NextSaleID allocates the next sale id
func (s *pgStore) NextSaleID(ctx context.Context) (domain.SaleID, error) {
	id, err := s.nextCounter(ctx, KEY_SALE_ID_COUNTER)
	return domain.SaleID(id), err
}

// CreateSale inserts a sale
func (s *pgStore) CreateSale(ctx context.Context, sale *domain.Sale) error {
	if err := s.db.WithContext(ctx).Create(saleToSchema(sale)).Error; err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

// UpdateSale overwrites the mutable fields of a sale
func (s *pgStore) UpdateSale(ctx context.Context, sale *domain.Sale) error {
	row := saleToSchema(sale)
	result := s.db.WithContext(ctx).
		Model(&schema.Sale{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"fractions_sold":           row.FractionsSold,
			"nft_withdrawn":            row.NftWithdrawn,
			"fractions_kept_withdrawn": row.FractionsKeptWithdrawn,
			"bought_out":               row.BoughtOut,
			"updated_at":               time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errMissing("sale", sale.ID.String())
	}
	return nil
}

// GetSale retrieves a sale by id
func (s *pgStore) GetSale(ctx context.Context, id domain.SaleID) (*domain.Sale, error) {
	var row schema.Sale
	err := s.db.WithContext(ctx).Where("id = ?", int64(id)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return saleFromSchema(&row)
}

// GetLatestSaleByAsset retrieves the most recent sale of an asset
func (s *pgStore) GetLatestSaleByAsset(ctx context.Context, asset domain.AssetRef) (*domain.Sale, error) {
	var row schema.Sale
	err := s.db.WithContext(ctx).
		Where("asset_collection = ? AND asset_token_number = ?", asset.Collection.Hex(), asset.TokenNumber).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sale by asset: %w", err)
	}
	return saleFromSchema(&row)
}

// applySaleStatus narrows query to sales whose derived status at now equals status
func applySaleStatus(query *gorm.DB, status domain.SaleStatus, now time.Time) *gorm.DB {
	settled := fmt.Sprintf("(%s OR sales.closing_time <= ?)", sqlSoldOut)
	switch status {
	case domain.SaleStatusBoughtOut:
		return query.Where("sales.bought_out = true")
	case domain.SaleStatusUpcoming:
		return query.Where(fmt.Sprintf("sales.bought_out = false AND sales.opening_time > ? AND NOT (%s)", sqlSoldOut), now)
	case domain.SaleStatusOpen:
		return query.Where(fmt.Sprintf("sales.bought_out = false AND sales.opening_time <= ? AND sales.closing_time > ? AND NOT (%s)", sqlSoldOut), now, now)
	case domain.SaleStatusSuccessful:
		return query.Where(fmt.Sprintf("sales.bought_out = false AND %s AND %s", settled, sqlSuccessful), now)
	case domain.SaleStatusFailed:
		return query.Where(fmt.Sprintf("sales.bought_out = false AND %s AND NOT (%s)", settled, sqlSuccessful), now)
	}
	return query
}

// ListSales lists sales ordered by id with the total matching count
func (s *pgStore) ListSales(ctx context.Context, filter SaleQueryFilter) ([]*domain.Sale, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Sale{})

	if filter.Initiator != nil {
		query = query.Where("sales.initiator = ?", filter.Initiator.Hex())
	}
	if filter.Status != nil {
		query = applySaleStatus(query, *filter.Status, filter.Now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	var rows []schema.Sale
	err := query.
		Order("sales.id ASC").
		Limit(NormalizeLimit(filter.Limit)).
		Offset(int(filter.Offset)). //nolint:gosec,G115
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}

	sales := make([]*domain.Sale, 0, len(rows))
	for i := range rows {
		sale, err := saleFromSchema(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, sale)
	}
	return sales, uint64(total), nil
}

// ListSettleableSales lists closed successful sales whose seller has not been released
func (s *pgStore) ListSettleableSales(ctx context.Context, now time.Time, limit int) ([]*domain.Sale, error) {
	query := s.db.WithContext(ctx).
		Model(&schema.Sale{}).
		Joins("JOIN escrows ON escrows.address = sales.escrow_address").
		Where("escrows.seller_released = false").
		Where(fmt.Sprintf("(sales.bought_out = true OR %s OR sales.closing_time <= ?)", sqlSoldOut), now).
		Where(sqlSuccessful).
		Order("sales.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []schema.Sale
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list settleable sales: %w", err)
	}

	sales := make([]*domain.Sale, 0, len(rows))
	for i := range rows {
		sale, err := saleFromSchema(&rows[i])
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// NextBuyoutID allocates the next buyout id
func (s *pgStore) NextBuyoutID(ctx context.Context) (domain.BuyoutID, error) {
	id, err := s.nextCounter(ctx, KEY_BUYOUT_ID_COUNTER)
	return domain.BuyoutID(id), err
}

// CreateBuyout inserts a buyout
func (s *pgStore) CreateBuyout(ctx context.Context, buyout *domain.Buyout) error {
	if err := s.db.WithContext(ctx).Omit("Sale").Create(buyoutToSchema(buyout)).Error; err != nil {
		return fmt.Errorf("failed to create buyout: %w", err)
	}
	return nil
}

// UpdateBuyout overwrites the mutable fields of a buyout
func (s *pgStore) UpdateBuyout(ctx context.Context, buyout *domain.Buyout) error {
	row := buyoutToSchema(buyout)
	result := s.db.WithContext(ctx).
		Model(&schema.Buyout{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"buyout_token":  row.BuyoutToken,
			"buyout_price":  row.BuyoutPrice,
			"opening_time":  row.OpeningTime,
			"closing_time":  row.ClosingTime,
			"is_successful": row.IsSuccessful,
			"unsupervised":  row.Unsupervised,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update buyout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errMissing("buyout", buyout.ID.String())
	}
	return nil
}

// GetBuyout retrieves a buyout by id
func (s *pgStore) GetBuyout(ctx context.Context, id domain.BuyoutID) (*domain.Buyout, error) {
	var row schema.Buyout
	err := s.db.WithContext(ctx).Where("id = ?", int64(id)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get buyout: %w", err)
	}
	return buyoutFromSchema(&row)
}

// GetLatestBuyoutBySale retrieves the most recent buyout of a sale
func (s *pgStore) GetLatestBuyoutBySale(ctx context.Context, saleID domain.SaleID) (*domain.Buyout, error) {
	var row schema.Buyout
	err := s.db.WithContext(ctx).
		Where("fraction_sale_id = ?", int64(saleID)).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get buyout by sale: %w", err)
	}
	return buyoutFromSchema(&row)
}

// CreateEscrow inserts an escrow record
func (s *pgStore) CreateEscrow(ctx context.Context, escrow *domain.Escrow) error {
	if err := s.db.WithContext(ctx).Create(escrowToSchema(escrow)).Error; err != nil {
		return fmt.Errorf("failed to create escrow: %w", err)
	}
	return nil
}

// UpdateEscrow overwrites the mutable fields of an escrow record
func (s *pgStore) UpdateEscrow(ctx context.Context, escrow *domain.Escrow) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Escrow{}).
		Where("address = ?", escrow.Address.Hex()).
		Updates(map[string]interface{}{
			"seller_released": escrow.SellerReleased,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update escrow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errMissing("escrow", escrow.Address.Hex())
	}
	return nil
}

// GetEscrow retrieves an escrow record by address
func (s *pgStore) GetEscrow(ctx context.Context, address common.Address) (*domain.Escrow, error) {
	var row schema.Escrow
	err := s.db.WithContext(ctx).Where("address = ?", address.Hex()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get escrow: %w", err)
	}
	return escrowFromSchema(&row)
}

// AppendNotifications appends to the journal and assigns each notification its cursor
func (s *pgStore) AppendNotifications(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	rows := make([]*schema.Notification, len(notifications))
	for i, n := range notifications {
		rows[i] = notificationToSchema(n)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to append notifications: %w", err)
	}

	for i, row := range rows {
		notifications[i].Cursor = uint64(row.Cursor) //nolint:gosec,G115
	}
	return nil
}

// GetNotifications returns journal entries in cursor order
func (s *pgStore) GetNotifications(ctx context.Context, filter NotificationQueryFilter) ([]*domain.Notification, error) {
	query := s.db.WithContext(ctx).Model(&schema.Notification{})
	if filter.Anchor != nil {
		query = query.Where("\"cursor\" > ?", *filter.Anchor)
	}

	var rows []schema.Notification
	err := query.Order("\"cursor\" ASC").Limit(NormalizeLimit(filter.Limit)).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	out := make([]*domain.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, notificationFromSchema(&rows[i]))
	}
	return out, nil
}

// GetProtocolParams retrieves the protocol parameters
func (s *pgStore) GetProtocolParams(ctx context.Context) (*domain.ProtocolParams, error) {
	value, err := s.GetKeyValue(ctx, KEY_PROTOCOL_PARAMS)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	var params domain.ProtocolParams
	if err := json.Unmarshal([]byte(value), &params); err != nil {
		return nil, fmt.Errorf("failed to parse protocol params: %w", err)
	}
	return &params, nil
}

// SaveProtocolParams stores the protocol parameters
func (s *pgStore) SaveProtocolParams(ctx context.Context, params *domain.ProtocolParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal protocol params: %w", err)
	}
	return s.SetKeyValue(ctx, KEY_PROTOCOL_PARAMS, string(data))
}

// SetKeyValue sets a key-value pair in the key-value store
func (s *pgStore) SetKeyValue(ctx context.Context, key string, value string) error {
	kv := schema.KeyValueStore{
		Key:   key,
		Value: value,
	}

	err := s.db.WithContext(ctx).Save(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set key-value: %w", err)
	}

	return nil
}

// GetKeyValue retrieves a value by key from the key-value store
func (s *pgStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get key-value: %w", err)
	}

	return kv.Value, nil
}
