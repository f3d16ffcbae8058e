package messaging

import (
	"context"

	"github.com/feral-file/ff-fractions/internal/domain"
)

// Publisher defines the interface for publishing notifications to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishNotification publishes a committed notification
	PublishNotification(ctx context.Context, notification *domain.Notification) error
	// Close closes the connection
	Close()
}
