package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/messaging"
	"github.com/feral-file/ff-fractions/internal/store"
)

// journalSubscriber tails the notifications journal of a store by polling
type journalSubscriber struct {
	store        store.Store
	clock        adapter.Clock
	pollInterval time.Duration
	batchSize    int

	once   sync.Once
	closed chan struct{}
}

// NewJournalSubscriber creates a subscriber polling st every pollInterval once caught up
func NewJournalSubscriber(st store.Store, clock adapter.Clock, pollInterval time.Duration, batchSize int) messaging.Subscriber {
	return &journalSubscriber{
		store:        st,
		clock:        clock,
		pollInterval: pollInterval,
		batchSize:    store.NormalizeLimit(batchSize),
		closed:       make(chan struct{}),
	}
}

func (s *journalSubscriber) SubscribeNotifications(ctx context.Context, fromCursor uint64, handler messaging.NotificationHandler) error {
	cursor := fromCursor
	for {
		anchor := cursor
		batch, err := s.store.GetNotifications(ctx, store.NotificationQueryFilter{Anchor: &anchor, Limit: s.batchSize})
		if err != nil {
			return fmt.Errorf("failed to read notifications after cursor %d: %w", cursor, err)
		}

		for _, n := range batch {
			if err := handler(n); err != nil {
				return err
			}
			cursor = n.Cursor
		}

		// Drain without waiting while full pages keep coming
		if len(batch) == s.batchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return nil
		case <-s.clock.After(s.pollInterval):
		}
	}
}

func (s *journalSubscriber) Close() {
	s.once.Do(func() {
		close(s.closed)
	})
}
