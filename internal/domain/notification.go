package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// NotificationType names an observable state change
type NotificationType string

const (
	NotificationNewFractionsSale        NotificationType = "NewFractionsSale"
	NotificationFractionsPurchased      NotificationType = "FractionsPurchased"
	NotificationFailedSaleNftWithdrawn  NotificationType = "FailedSaleNftWithdrawn"
	NotificationFractionsKeptWithdrawn  NotificationType = "FractionsKeptWithdrawn"
	NotificationFractionsTransferred    NotificationType = "FractionsTransferred"
	NotificationBuyoutRequested         NotificationType = "BuyoutRequested"
	NotificationBuyoutParamsSet         NotificationType = "BuyoutParamsSet"
	NotificationBuyoutExecuted          NotificationType = "BuyoutExecuted"
	NotificationTokensReleased          NotificationType = "TokensReleased"
	NotificationTokensSellerReleased    NotificationType = "TokensSellerReleased"
	NotificationAllowListUpdated        NotificationType = "AllowListUpdated"
	NotificationPermissionGranted       NotificationType = "PermissionGranted"
	NotificationPermissionRevoked       NotificationType = "PermissionRevoked"
	NotificationSaleFeeSet              NotificationType = "SaleFeeSet"
	NotificationBuyoutFeeSet            NotificationType = "BuyoutFeeSet"
	NotificationGovernanceTreasurySet   NotificationType = "GovernanceTreasurySet"
	NotificationTierScheduleSet         NotificationType = "TierScheduleSet"
	NotificationBuyoutMinFractionsSet   NotificationType = "BuyoutMinFractionsSet"
	NotificationBuyoutOpenTimePeriodSet NotificationType = "BuyoutOpenTimePeriodSet"
)

// SubjectType is the kind of record a notification is about
type SubjectType string

const (
	SubjectTypeSale     SubjectType = "sale"
	SubjectTypeBuyout   SubjectType = "buyout"
	SubjectTypeEscrow   SubjectType = "escrow"
	SubjectTypeProtocol SubjectType = "protocol"
)

// Notification is an immutable, ordered record of a state change.
// Cursor is assigned by the journal when the record is appended.
type Notification struct {
	Cursor      uint64           `json:"cursor"`
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	SubjectType SubjectType      `json:"subject_type"`
	SubjectID   string           `json:"subject_id"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Payload     json.RawMessage  `json:"payload"`
}

// NewNotification builds a notification with a time-ordered id
func NewNotification(t NotificationType, subjectType SubjectType, subjectID string, occurredAt time.Time, payload any) (*Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	id, err := ulid.New(ulid.Timestamp(occurredAt), ulid.DefaultEntropy())
	if err != nil {
		return nil, fmt.Errorf("failed to generate notification id: %w", err)
	}
	return &Notification{
		ID:          id.String(),
		Type:        t,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		OccurredAt:  occurredAt.UTC(),
		Payload:     raw,
	}, nil
}
