package messaging

import (
	"context"

	"github.com/feral-file/ff-fractions/internal/domain"
)

// NotificationHandler is called for each notification in cursor order
type NotificationHandler func(notification *domain.Notification) error

// Subscriber streams the notifications journal
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeNotifications delivers every notification with a cursor above fromCursor until ctx is done
	// or the handler fails
	SubscribeNotifications(ctx context.Context, fromCursor uint64, handler NotificationHandler) error

	// Close stops the subscription
	Close()
}
