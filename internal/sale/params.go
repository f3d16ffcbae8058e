package sale

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/ledger"
	"github.com/feral-file/ff-fractions/internal/store"
)

// updateParams applies an admin change to the protocol parameters and journals it
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

func (m *manager) SetSaleFee(ctx context.Context, tx store.Store, caller common.Address, bps uint64) error {
	return m.updateParams(ctx, tx, caller, func(p *domain.ProtocolParams) error {
		if err := domain.ValidateProtocolFee(bps); err != nil {
			return err
		}
		p.SaleFeeBps = bps
		return nil
	}, domain.NotificationSaleFeeSet, domain.FeeSetPayload{Bps: bps})
}

func (m *manager) SetGovernanceTreasury(ctx context.Context, tx store.Store, caller, treasury common.Address) error {
	return m.updateParams(ctx, tx, caller, func(p *domain.ProtocolParams) error {
		if domain.IsZeroAddress(treasury) {
			return domain.ErrNullAddress
		}
		p.GovernanceTreasury = treasury
		return nil
	}, domain.NotificationGovernanceTreasurySet, domain.GovernanceTreasurySetPayload{Treasury: treasury})
}

func (m *manager) SetTierSchedule(ctx context.Context, tx store.Store, caller common.Address, tiers domain.TierSchedule) error {
	return m.updateParams(ctx, tx, caller, func(p *domain.ProtocolParams) error {
		if err := tiers.Validate(); err != nil {
			return err
		}
		p.Tiers = tiers.Clone()
		return nil
	}, domain.NotificationTierScheduleSet, domain.TierScheduleSetPayload{Tiers: tiers})
}
