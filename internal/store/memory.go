package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
)

type memoryData struct {
	nextSaleID    uint64
	nextBuyoutID  uint64
	sales         map[domain.SaleID]*domain.Sale
	buyouts       map[domain.BuyoutID]*domain.Buyout
	escrows       map[common.Address]*domain.Escrow
	notifications []*domain.Notification
	params        *domain.ProtocolParams
	kv            map[string]string
}

func newMemoryData() *memoryData {
	return &memoryData{
		sales:   make(map[domain.SaleID]*domain.Sale),
		buyouts: make(map[domain.BuyoutID]*domain.Buyout),
		escrows: make(map[common.Address]*domain.Escrow),
		kv:      make(map[string]string),
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	c.nextSaleID = d.nextSaleID
	c.nextBuyoutID = d.nextBuyoutID
	for k, v := range d.sales {
		c.sales[k] = v.Clone()
	}
	for k, v := range d.buyouts {
		c.buyouts[k] = v.Clone()
	}
	for k, v := range d.escrows {
		c.escrows[k] = v.Clone()
	}
	// Journal entries are immutable once appended
	c.notifications = append([]*domain.Notification(nil), d.notifications...)
	c.params = d.params.Clone()
	for k, v := range d.kv {
		c.kv[k] = v
	}
	return c
}

type memoryStore struct {
	// txMu serializes transactions; nil inside a transaction
	txMu *sync.Mutex
	mu   *sync.RWMutex
	data *memoryData
}

// NewMemoryStore creates an in-memory store. State is lost when the process exits.
func NewMemoryStore() Store {
	return &memoryStore{
		txMu: &sync.Mutex{},
		mu:   &sync.RWMutex{},
		data: newMemoryData(),
	}
}

// WithTx runs fn against a copy of the data and swaps it in when fn succeeds
func (s *memoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.txMu == nil {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := s.data.clone()
	s.mu.RUnlock()

	tx := &memoryStore{mu: &sync.RWMutex{}, data: working}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = working
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) NextSaleID(ctx context.Context) (domain.SaleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.nextSaleID
	s.data.nextSaleID++
	return domain.SaleID(id), nil
}

func (s *memoryStore) CreateSale(ctx context.Context, sale *domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.sales[sale.ID]; ok {
		return errDuplicate("sale", sale.ID.String())
	}
	s.data.sales[sale.ID] = sale.Clone()
	return nil
}

func (s *memoryStore) UpdateSale(ctx context.Context, sale *domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.sales[sale.ID]; !ok {
		return errMissing("sale", sale.ID.String())
	}
	s.data.sales[sale.ID] = sale.Clone()
	return nil
}

func (s *memoryStore) GetSale(ctx context.Context, id domain.SaleID) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.sales[id].Clone(), nil
}

func (s *memoryStore) GetLatestSaleByAsset(ctx context.Context, asset domain.AssetRef) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *domain.Sale
	for _, sale := range s.data.sales {
		if sale.Asset == asset && (latest == nil || sale.ID > latest.ID) {
			latest = sale
		}
	}
	return latest.Clone(), nil
}

func (s *memoryStore) ListSales(ctx context.Context, filter SaleQueryFilter) ([]*domain.Sale, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Sale
	for _, sale := range s.data.sales {
		if filter.Initiator != nil && sale.Initiator != *filter.Initiator {
			continue
		}
		if filter.Status != nil && sale.Status(filter.Now) != *filter.Status {
			continue
		}
		matched = append(matched, sale)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := uint64(len(matched))
	limit := NormalizeLimit(filter.Limit)
	out := make([]*domain.Sale, 0, limit)
	for i := filter.Offset; i < total && len(out) < limit; i++ {
		out = append(out, matched[i].Clone())
	}
	return out, total, nil
}

func (s *memoryStore) ListSettleableSales(ctx context.Context, now time.Time, limit int) ([]*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Sale
	for _, sale := range s.data.sales {
		if !sale.IsClosed(now) || !sale.IsSuccessful() {
			continue
		}
		escrow, ok := s.data.escrows[sale.EscrowAddress]
		if !ok || escrow.SellerReleased {
			continue
		}
		out = append(out, sale.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) NextBuyoutID(ctx context.Context) (domain.BuyoutID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.nextBuyoutID
	s.data.nextBuyoutID++
	return domain.BuyoutID(id), nil
}

func (s *memoryStore) CreateBuyout(ctx context.Context, buyout *domain.Buyout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.buyouts[buyout.ID]; ok {
		return errDuplicate("buyout", buyout.ID.String())
	}
	s.data.buyouts[buyout.ID] = buyout.Clone()
	return nil
}

func (s *memoryStore) UpdateBuyout(ctx context.Context, buyout *domain.Buyout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.buyouts[buyout.ID]; !ok {
		return errMissing("buyout", buyout.ID.String())
	}
	s.data.buyouts[buyout.ID] = buyout.Clone()
	return nil
}

func (s *memoryStore) GetBuyout(ctx context.Context, id domain.BuyoutID) (*domain.Buyout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.buyouts[id].Clone(), nil
}

func (s *memoryStore) GetLatestBuyoutBySale(ctx context.Context, saleID domain.SaleID) (*domain.Buyout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *domain.Buyout
	for _, b := range s.data.buyouts {
		if b.FractionSaleID == saleID && (latest == nil || b.ID > latest.ID) {
			latest = b
		}
	}
	return latest.Clone(), nil
}

func (s *memoryStore) CreateEscrow(ctx context.Context, escrow *domain.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.escrows[escrow.Address]; ok {
		return errDuplicate("escrow", escrow.Address.Hex())
	}
	s.data.escrows[escrow.Address] = escrow.Clone()
	return nil
}

func (s *memoryStore) UpdateEscrow(ctx context.Context, escrow *domain.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.escrows[escrow.Address]; !ok {
		return errMissing("escrow", escrow.Address.Hex())
	}
	s.data.escrows[escrow.Address] = escrow.Clone()
	return nil
}

func (s *memoryStore) GetEscrow(ctx context.Context, address common.Address) (*domain.Escrow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.escrows[address].Clone(), nil
}

func (s *memoryStore) AppendNotifications(ctx context.Context, notifications []*domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range notifications {
		n.Cursor = uint64(len(s.data.notifications)) + 1
		c := *n
		s.data.notifications = append(s.data.notifications, &c)
	}
	return nil
}

func (s *memoryStore) GetNotifications(ctx context.Context, filter NotificationQueryFilter) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := uint64(0)
	if filter.Anchor != nil {
		start = *filter.Anchor
	}
	limit := NormalizeLimit(filter.Limit)

	out := make([]*domain.Notification, 0, limit)
	// Cursor n lives at index n-1
	for i := start; i < uint64(len(s.data.notifications)) && len(out) < limit; i++ {
		c := *s.data.notifications[i]
		out = append(out, &c)
	}
	return out, nil
}

func (s *memoryStore) GetProtocolParams(ctx context.Context) (*domain.ProtocolParams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.params.Clone(), nil
}

func (s *memoryStore) SaveProtocolParams(ctx context.Context, params *domain.ProtocolParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.params = params.Clone()
	return nil
}

func (s *memoryStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.kv[key], nil
}

func (s *memoryStore) SetKeyValue(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.kv[key] = value
	return nil
}
