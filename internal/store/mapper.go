package store

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/store/schema"
)

func parseNumeric(field, v string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, fmt.Errorf("failed to parse %s: %q", field, v)
	}
	return n, nil
}

func addressOrEmpty(a common.Address) string {
	if domain.IsZeroAddress(a) {
		return ""
	}
	return a.Hex()
}

func saleToSchema(s *domain.Sale) *schema.Sale {
	return &schema.Sale{
		ID:                     int64(s.ID),
		Initiator:              s.Initiator.Hex(),
		EscrowAddress:          s.EscrowAddress.Hex(),
		AssetCollection:        s.Asset.Collection.Hex(),
		AssetTokenNumber:       s.Asset.TokenNumber,
		PaymentToken:           s.PaymentToken.Hex(),
		OpeningTime:            s.OpeningTime,
		ClosingTime:            s.ClosingTime,
		FractionPrice:          domain.CloneBig(s.FractionPrice).String(),
		FractionsAmount:        int64(s.FractionsAmount),
		MinFractionsKept:       int64(s.MinFractionsKept),
		SaleMinFractions:       int64(s.SaleMinFractions),
		FractionsSold:          int64(s.FractionsSold),
		NftWithdrawn:           s.NftWithdrawn,
		FractionsKeptWithdrawn: s.FractionsKeptWithdrawn,
		BoughtOut:              s.BoughtOut,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func saleFromSchema(s *schema.Sale) (*domain.Sale, error) {
	price, err := parseNumeric("fraction_price", s.FractionPrice)
	if err != nil {
		return nil, err
	}
	return &domain.Sale{
		ID:                     domain.SaleID(s.ID),
		Initiator:              common.HexToAddress(s.Initiator),
		EscrowAddress:          common.HexToAddress(s.EscrowAddress),
		Asset:                  domain.AssetRef{Collection: common.HexToAddress(s.AssetCollection), TokenNumber: s.AssetTokenNumber},
		PaymentToken:           common.HexToAddress(s.PaymentToken),
		OpeningTime:            s.OpeningTime.UTC(),
		ClosingTime:            s.ClosingTime.UTC(),
		FractionPrice:          price,
		FractionsAmount:        uint64(s.FractionsAmount),
		MinFractionsKept:       uint64(s.MinFractionsKept),
		SaleMinFractions:       uint64(s.SaleMinFractions),
		FractionsSold:          uint64(s.FractionsSold),
		NftWithdrawn:           s.NftWithdrawn,
		FractionsKeptWithdrawn: s.FractionsKeptWithdrawn,
		BoughtOut:              s.BoughtOut,
		CreatedAt:              s.CreatedAt.UTC(),
		UpdatedAt:              s.UpdatedAt.UTC(),
	}, nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func buyoutToSchema(b *domain.Buyout) *schema.Buyout {
	return &schema.Buyout{
		ID:             int64(b.ID),
		FractionSaleID: int64(b.FractionSaleID),
		Initiator:      b.Initiator.Hex(),
		BuyoutToken:    addressOrEmpty(b.BuyoutToken),
		BuyoutPrice:    domain.CloneBig(b.BuyoutPrice).String(),
		OpeningTime:    optionalTime(b.OpeningTime),
		ClosingTime:    optionalTime(b.ClosingTime),
		IsSuccessful:   b.IsSuccessful,
		Unsupervised:   b.Unsupervised,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func buyoutFromSchema(b *schema.Buyout) (*domain.Buyout, error) {
	price, err := parseNumeric("buyout_price", b.BuyoutPrice)
	if err != nil {
		return nil, err
	}
	out := &domain.Buyout{
		ID:             domain.BuyoutID(b.ID),
		FractionSaleID: domain.SaleID(b.FractionSaleID),
		Initiator:      common.HexToAddress(b.Initiator),
		BuyoutPrice:    price,
		OpeningTime:    timeOrZero(b.OpeningTime),
		ClosingTime:    timeOrZero(b.ClosingTime),
		IsSuccessful:   b.IsSuccessful,
		Unsupervised:   b.Unsupervised,
		CreatedAt:      b.CreatedAt.UTC(),
		UpdatedAt:      b.UpdatedAt.UTC(),
	}
	if b.BuyoutToken != "" {
		out.BuyoutToken = common.HexToAddress(b.BuyoutToken)
	}
	return out, nil
}

func escrowToSchema(e *domain.Escrow) *schema.Escrow {
	out := &schema.Escrow{
		Address:            e.Address.Hex(),
		Kind:               schema.EscrowKind(e.Kind),
		SaleID:             int64(e.SaleID),
		PaymentToken:       e.PaymentToken.Hex(),
		PricePerFraction:   domain.CloneBig(e.PricePerFraction).String(),
		ProtocolFeeBps:     int64(e.ProtocolFeeBps),
		GovernanceTreasury: addressOrEmpty(e.GovernanceTreasury),
		SellerReleased:     e.SellerReleased,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	if e.BuyoutID != nil {
		id := int64(*e.BuyoutID)
		out.BuyoutID = &id
	}
	return out
}

func escrowFromSchema(e *schema.Escrow) (*domain.Escrow, error) {
	price, err := parseNumeric("price_per_fraction", e.PricePerFraction)
	if err != nil {
		return nil, err
	}
	out := &domain.Escrow{
		Address:          common.HexToAddress(e.Address),
		Kind:             domain.EscrowKind(e.Kind),
		SaleID:           domain.SaleID(e.SaleID),
		PaymentToken:     common.HexToAddress(e.PaymentToken),
		PricePerFraction: price,
		ProtocolFeeBps:   uint64(e.ProtocolFeeBps),
		SellerReleased:   e.SellerReleased,
		CreatedAt:        e.CreatedAt.UTC(),
		UpdatedAt:        e.UpdatedAt.UTC(),
	}
	if e.GovernanceTreasury != "" {
		out.GovernanceTreasury = common.HexToAddress(e.GovernanceTreasury)
	}
	if e.BuyoutID != nil {
		id := domain.BuyoutID(*e.BuyoutID)
		out.BuyoutID = &id
	}
	return out, nil
}

func notificationToSchema(n *domain.Notification) *schema.Notification {
	return &schema.Notification{
		ID:          n.ID,
		Type:        string(n.Type),
		SubjectType: string(n.SubjectType),
		SubjectID:   n.SubjectID,
		OccurredAt:  n.OccurredAt,
		Payload:     datatypes.JSON(n.Payload),
	}
}

func notificationFromSchema(n *schema.Notification) *domain.Notification {
	return &domain.Notification{
		Cursor:      uint64(n.Cursor),
		ID:          n.ID,
		Type:        domain.NotificationType(n.Type),
		SubjectType: domain.SubjectType(n.SubjectType),
		SubjectID:   n.SubjectID,
		OccurredAt:  n.OccurredAt.UTC(),
		Payload:     []byte(n.Payload),
	}
}
