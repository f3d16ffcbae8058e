package relay

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/messaging"
	"github.com/feral-file/ff-fractions/internal/store"
)

// Config holds the configuration for the notification relay
type Config struct {
	CursorSaveFreq  uint64        // Save cursor every N notifications
	CursorSaveDelay time.Duration // Or save cursor every N seconds
	// MaxPublishElapsed bounds the retries of one publish; zero retries until ctx is done
	MaxPublishElapsed time.Duration
}

// Relay defines the interface for the notification relay
type Relay interface {
	// Run publishes committed notifications until ctx is done
	Run(ctx context.Context) error
	// Close closes the relay and cleans up resources
	Close()
}

// relay forwards the notifications journal to the message broker
type relay struct {
	subscriber messaging.Subscriber
	publisher  messaging.Publisher
	store      store.Store
	config     Config
	clock      adapter.Clock
}

// NewRelay creates a new notification relay
func NewRelay(
	sub messaging.Subscriber,
	pub messaging.Publisher,
	st store.Store,
	cfg Config,
	clock adapter.Clock,
) Relay {
	return &relay{
		subscriber: sub,
		publisher:  pub,
		store:      st,
		config:     cfg,
		clock:      clock,
	}
}

// loadCursor returns the last published cursor, 0 when nothing was published yet
func (r *relay) loadCursor(ctx context.Context) (uint64, error) {
	raw, err := r.store.GetKeyValue(ctx, store.KEY_RELAY_CURSOR)
	if err != nil {
		return 0, fmt.Errorf("failed to get relay cursor: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid relay cursor %q: %w", raw, err)
	}
	return cursor, nil
}

func (r *relay) saveCursor(ctx context.Context, cursor uint64) error {
	return r.store.SetKeyValue(ctx, store.KEY_RELAY_CURSOR, strconv.FormatUint(cursor, 10))
}

func (r *relay) publish(ctx context.Context, n *domain.Notification) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = r.config.MaxPublishElapsed

	return backoff.RetryNotify(func() error {
		return r.publisher.PublishNotification(ctx, n)
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "Retrying notification publish",
			zap.Uint64("cursor", n.Cursor),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

// Run starts the notification relay
func (r *relay) Run(ctx context.Context) error {
	startCursor, err := r.loadCursor(ctx)
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Starting notification relay", zap.Uint64("cursor", startCursor))

	lastSavedCursor := startCursor
	lastPublished := startCursor
	lastSaveTime := r.clock.Now()

	handler := func(n *domain.Notification) error {
		if err := r.publish(ctx, n); err != nil {
			return fmt.Errorf("failed to publish notification %d: %w", n.Cursor, err)
		}
		lastPublished = n.Cursor

		// Save cursor periodically (every N notifications or N seconds)
		shouldSave := lastPublished-lastSavedCursor >= r.config.CursorSaveFreq ||
			r.clock.Since(lastSaveTime) >= r.config.CursorSaveDelay

		if shouldSave {
			if err := r.saveCursor(ctx, lastPublished); err != nil {
				logger.ErrorCtx(ctx, fmt.Errorf("failed to save relay cursor: %w", err))
			} else {
				lastSavedCursor = lastPublished
				lastSaveTime = r.clock.Now()
			}
		}

		return nil
	}

	err = r.subscriber.SubscribeNotifications(ctx, startCursor, handler)

	// Persist progress on the way out; redelivered notifications are deduplicated by id
	if lastPublished > lastSavedCursor {
		if serr := r.saveCursor(context.WithoutCancel(ctx), lastPublished); serr != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to save relay cursor: %w", serr))
		}
	}

	return err
}

// Close closes the relay and cleans up resources
func (r *relay) Close() {
	r.subscriber.Close()
	r.publisher.Close()
}
