package buyout

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/store"
)

func (m *manager) updateParams(ctx context.Context, tx store.Store, caller common.Address, change func(*domain.ProtocolParams) error, t domain.NotificationType, payload any) error {
	if err := ledger.RequireCapability(ctx, m.deps.Permissions, domain.CapabilityAdmin, caller); err != nil {
		return err
	}

	params, err := store.LoadProtocolParams(ctx, tx)
	if err != nil {
		return err
	}
	if err := change(params); err != nil {
		return err
	}
	if err := tx.SaveProtocolParams(ctx, params); err != nil {
		return err
	}

	_, err = store.AppendNotification(ctx, tx, t, domain.SubjectTypeProtocol, domain.PROTOCOL_PARAMS_SUBJECT_ID, m.deps.Clock.Now(), payload)
	return err
}

func (m *manager) SetBuyoutFee(ctx context.Context, tx store.Store, caller common.Address, bps uint64) error {
	return m.updateParams(ctx, tx, caller, func(p *domain.ProtocolParams) error {
		if err := domain.ValidateProtocolFee(bps); err != nil {
			return err
		}
		p.BuyoutFeeBps = bps
		return nil
	}, domain.NotificationBuyoutFeeSet, domain.FeeSetPayload{Bps: bps})
}

func (m *manager) SetBuyoutMinFractions(ctx context.Context, tx store.Store, caller common.Address, bps uint64) error {
	return m.updateParams(ctx, tx, caller, func(p *domain.ProtocolParams) error {
		if err := domain.ValidateBuyoutMinFractions(bps); err != nil {
			return err
		}
		p.BuyoutMinFractionsBps = bps
		return nil
	}, domain.NotificationBuyoutMinFractionsSet, domain.BuyoutMinFractionsSetPayload{Bps: bps})
}

// SetBuyoutOpenTimePeriod sets the buyout window length in seconds
func (m *manager) SetBuyoutOpenTimePeriod(ctx context.Context, tx store.Store, caller common.Address, seconds int64) error {
	period := time.Duration(seconds) * time.Second
	return m.updateParams(ctx, tx, caller, func(p *domain.ProtocolParams) error {
		if err := domain.ValidateBuyoutOpenTimePeriod(period); err != nil {
			return err
		}
		p.BuyoutOpenTimePeriod = period
		return nil
	}, domain.NotificationBuyoutOpenTimePeriodSet, domain.BuyoutOpenTimePeriodSetPayload{Seconds: seconds})
}
