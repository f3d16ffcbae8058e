package relay_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/mocks"
	"github.com/feral-file/ff-fractions/internal/relay"
	"github.com/feral-file/ff-fractions/internal/store"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// testRelayMocks contains all the mocks needed for testing the relay
type testRelayMocks struct {
	ctrl      *gomock.Controller
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
	store     store.Store
}

func setupTestRelay(t *testing.T, notifications int) *testRelayMocks {
	ctrl := gomock.NewController(t)
	tm := &testRelayMocks{
		ctrl:      ctrl,
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
		store:     store.NewMemoryStore(),
	}

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Duration(0)).AnyTimes()
	tm.clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes()

	var batch []*domain.Notification
	for i := 0; i < notifications; i++ {
		n, err := domain.NewNotification(domain.NotificationFractionsPurchased, domain.SubjectTypeSale, "0", now, domain.FractionsPurchasedPayload{Amount: uint64(i + 1)})
		require.NoError(t, err)
		batch = append(batch, n)
	}
	if len(batch) > 0 {
		require.NoError(t, tm.store.AppendNotifications(context.Background(), batch))
	}

	return tm
}

func newTestRelay(tm *testRelayMocks, cfg relay.Config) relay.Relay {
	sub := relay.NewJournalSubscriber(tm.store, tm.clock, time.Second, 2)
	return relay.NewRelay(sub, tm.publisher, tm.store, cfg, tm.clock)
}

func TestRelay_Run_PublishesInOrderAndSavesCursor(t *testing.T) {
	tm := setupTestRelay(t, 3)
	defer tm.ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var published []uint64
	tm.publisher.
		EXPECT().
		PublishNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.Notification) error {
			published = append(published, n.Cursor)
			if len(published) == 3 {
				cancel()
			}
			return nil
		}).
		Times(3)

	r := newTestRelay(tm, relay.Config{CursorSaveFreq: 2, CursorSaveDelay: time.Minute, MaxPublishElapsed: time.Second})
	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []uint64{1, 2, 3}, published)

	cursor, err := tm.store.GetKeyValue(context.Background(), store.KEY_RELAY_CURSOR)
	require.NoError(t, err)
	assert.Equal(t, "3", cursor)
}

func TestRelay_Run_ResumesFromStoredCursor(t *testing.T) {
	tm := setupTestRelay(t, 3)
	defer tm.ctrl.Finish()

	require.NoError(t, tm.store.SetKeyValue(context.Background(), store.KEY_RELAY_CURSOR, "2"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.publisher.
		EXPECT().
		PublishNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.Notification) error {
			assert.Equal(t, uint64(3), n.Cursor)
			cancel()
			return nil
		}).
		Times(1)

	r := newTestRelay(tm, relay.Config{CursorSaveFreq: 10, CursorSaveDelay: time.Minute, MaxPublishElapsed: time.Second})
	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	cursor, err := tm.store.GetKeyValue(context.Background(), store.KEY_RELAY_CURSOR)
	require.NoError(t, err)
	assert.Equal(t, "3", cursor)
}

func TestRelay_Run_InvalidStoredCursor(t *testing.T) {
	tm := setupTestRelay(t, 0)
	defer tm.ctrl.Finish()

	require.NoError(t, tm.store.SetKeyValue(context.Background(), store.KEY_RELAY_CURSOR, "not-a-number"))

	r := newTestRelay(tm, relay.Config{CursorSaveFreq: 1})
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid relay cursor")
}

func TestRelay_Run_PublishFailureStopsRelay(t *testing.T) {
	tm := setupTestRelay(t, 2)
	defer tm.ctrl.Finish()

	tm.publisher.
		EXPECT().
		PublishNotification(gomock.Any(), gomock.Any()).
		Return(assert.AnError).
		MinTimes(1)

	r := newTestRelay(tm, relay.Config{CursorSaveFreq: 1, MaxPublishElapsed: time.Millisecond})
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish notification 1")

	cursor, err := tm.store.GetKeyValue(context.Background(), store.KEY_RELAY_CURSOR)
	require.NoError(t, err)
	assert.Empty(t, cursor)
}

func TestRelay_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := mocks.NewMockSubscriber(ctrl)
	pub := mocks.NewMockPublisher(ctrl)
	sub.EXPECT().Close()
	pub.EXPECT().Close()

	r := relay.NewRelay(sub, pub, store.NewMemoryStore(), relay.Config{}, mocks.NewMockClock(ctrl))
	r.Close()
}

func TestJournalSubscriber_CloseStopsSubscription(t *testing.T) {
	tm := setupTestRelay(t, 1)
	defer tm.ctrl.Finish()

	sub := relay.NewJournalSubscriber(tm.store, tm.clock, time.Second, 10)

	var seen []uint64
	err := sub.SubscribeNotifications(context.Background(), 0, func(n *domain.Notification) error {
		seen = append(seen, n.Cursor)
		sub.Close()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, seen)
}
