package jetstream_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/mocks"
	fjetstream "github.com/feral-file/ff-fractions/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testPublisherMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	conn   *mocks.MockNatsConn
	js     *mocks.MockJetStream
	json   *mocks.MockJSON
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		conn:   mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
		json:   mocks.NewMockJSON(ctrl),
	}
}

var testConfig = fjetstream.Config{
	URL:            "nats://localhost:4222",
	StreamName:     "FRACTIONS",
	MaxReconnects:  3,
	ConnectionName: "test",
}

func testNotification() *domain.Notification {
	return &domain.Notification{
		Cursor:      7,
		ID:          "01JAAAAAAAAAAAAAAAAAAAAAAA",
		Type:        domain.NotificationFractionsPurchased,
		SubjectType: domain.SubjectTypeSale,
		SubjectID:   "3",
		Payload:     json.RawMessage(`{"sale_id":3}`),
	}
}

func TestBuildSubject(t *testing.T) {
	tests := []struct {
		name         string
		notification *domain.Notification
		expected     string
	}{
		{
			name:         "sale notification",
			notification: &domain.Notification{SubjectType: domain.SubjectTypeSale, Type: domain.NotificationFractionsPurchased},
			expected:     "fractions.sale.FractionsPurchased",
		},
		{
			name:         "escrow notification",
			notification: &domain.Notification{SubjectType: domain.SubjectTypeEscrow, Type: domain.NotificationTokensReleased},
			expected:     "fractions.escrow.TokensReleased",
		},
		{
			name:         "protocol notification",
			notification: &domain.Notification{SubjectType: domain.SubjectTypeProtocol, Type: domain.NotificationSaleFeeSet},
			expected:     "fractions.protocol.SaleFeeSet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fjetstream.BuildSubject(tt.notification))
		})
	}
}

func TestNewPublisher(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(m *testPublisherMocks)
		expectedErr string
	}{
		{
			name: "connects and ensures stream",
			setupMocks: func(m *testPublisherMocks) {
				m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(m.conn, m.js, nil)
				m.js.EXPECT().
					CreateOrUpdateStream(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, cfg jetstream.StreamConfig) error {
						assert.Equal(t, "FRACTIONS", cfg.Name)
						assert.Equal(t, []string{"fractions.>"}, cfg.Subjects)
						return nil
					})
			},
		},
		{
			name: "connect failure",
			setupMocks: func(m *testPublisherMocks) {
				m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nil, nil, assert.AnError)
			},
			expectedErr: "failed to connect to NATS and create JetStream",
		},
		{
			name: "stream failure closes the connection",
			setupMocks: func(m *testPublisherMocks) {
				m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(m.conn, m.js, nil)
				m.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(assert.AnError)
				m.conn.EXPECT().Close()
			},
			expectedErr: "failed to create stream FRACTIONS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestPublisher(t)
			defer m.ctrl.Finish()
			tt.setupMocks(m)

			pub, err := fjetstream.NewPublisher(context.Background(), testConfig, m.natsJS, m.json)
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				assert.Nil(t, pub)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, pub)
		})
	}
}

func TestPublisher_PublishNotification(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(m *testPublisherMocks)
		expectedErr string
	}{
		{
			name: "publishes on the subject of the notification",
			setupMocks: func(m *testPublisherMocks) {
				m.json.EXPECT().Marshal(gomock.Any()).Return([]byte(`{}`), nil)
				m.js.EXPECT().
					Publish(gomock.Any(), "fractions.sale.FractionsPurchased", []byte(`{}`), gomock.Any()).
					Return(&jetstream.PubAck{Stream: "FRACTIONS", Sequence: 1}, nil)
			},
		},
		{
			name: "marshal failure",
			setupMocks: func(m *testPublisherMocks) {
				m.json.EXPECT().Marshal(gomock.Any()).Return(nil, assert.AnError)
			},
			expectedErr: "failed to marshal notification",
		},
		{
			name: "publish failure",
			setupMocks: func(m *testPublisherMocks) {
				m.json.EXPECT().Marshal(gomock.Any()).Return([]byte(`{}`), nil)
				m.js.EXPECT().
					Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, assert.AnError)
			},
			expectedErr: "failed to publish notification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestPublisher(t)
			defer m.ctrl.Finish()

			m.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(m.conn, m.js, nil)
			m.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil)
			pub, err := fjetstream.NewPublisher(context.Background(), testConfig, m.natsJS, m.json)
			require.NoError(t, err)

			tt.setupMocks(m)

			err = pub.PublishNotification(context.Background(), testNotification())
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPublisher_Close(t *testing.T) {
	m := setupTestPublisher(t)
	defer m.ctrl.Finish()

	m.natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(m.conn, m.js, nil)
	m.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil)
	m.conn.EXPECT().Close()

	pub, err := fjetstream.NewPublisher(context.Background(), testConfig, m.natsJS, m.json)
	require.NoError(t, err)
	pub.Close()
}
