package store

import (
	"context"
	"time"

	"github.com/feral-file/ff-fractions/internal/domain"
)

// LoadProtocolParams returns the protocol parameters or fails when they were never bootstrapped
func LoadProtocolParams(ctx context.Context, s Store) (*domain.ProtocolParams, error) {
	params, err := s.GetProtocolParams(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return nil, domain.ErrProtocolParamsNotInitialized
	}
	return params, nil
}

// AppendNotification builds one notification and appends it to the journal of s
func AppendNotification(ctx context.Context, s Store, t domain.NotificationType, subjectType domain.SubjectType, subjectID string, at time.Time, payload any) (*domain.Notification, error) {
	n, err := domain.NewNotification(t, subjectType, subjectID, at, payload)
	if err != nil {
		return nil, err
	}
	if err := s.AppendNotifications(ctx, []*domain.Notification{n}); err != nil {
		return nil, err
	}
	return n, nil
}
