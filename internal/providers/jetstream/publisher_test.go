package jetstream_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/mocks"
	"github.com/vicuna-trace/ledger/internal/providers/jetstream"
)

// testPublisherMocks contains all the mocks needed for testing the publisher
type testPublisherMocks struct {
	ctrl      *gomock.Controller
	natsJS    *mocks.MockNatsJetStream
	natsConn  *mocks.MockNatsConn
	jetStream *mocks.MockJetStream
	json      *mocks.MockJSON
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:      ctrl,
		natsJS:    mocks.NewMockNatsJetStream(ctrl),
		natsConn:  mocks.NewMockNatsConn(ctrl),
		jetStream: mocks.NewMockJetStream(ctrl),
		json:      mocks.NewMockJSON(ctrl),
	}
}

var config = jetstream.Config{
	URL:            "nats://localhost:4222",
	StreamName:     "TOKENIZATION",
	MaxReconnects:  5,
	ReconnectWait:  time.Second,
	ConnectionName: "vicuna-ledger-test",
}

func (m *testPublisherMocks) expectConnect() {
	m.natsJS.EXPECT().
		Connect(config.URL, gomock.Any()).
		Return(m.natsConn, m.jetStream, nil)
	m.jetStream.EXPECT().
		CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg natsjs.StreamConfig) error {
			if cfg.Name != config.StreamName || len(cfg.Subjects) != 1 || cfg.Subjects[0] != "tokenization.>" || cfg.Duplicates != 24*time.Hour {
				return assert.AnError
			}
			return nil
		})
}

func TestNewPublisher_ConnectError(t *testing.T) {
	mocks := setupTestPublisher(t)

	mocks.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, assert.AnError)

	pub, err := jetstream.NewPublisher(context.Background(), config, mocks.natsJS, mocks.json)
	assert.Error(t, err)
	assert.Nil(t, pub)
}

func TestNewPublisher_StreamError(t *testing.T) {
	mocks := setupTestPublisher(t)

	mocks.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)
	mocks.jetStream.EXPECT().
		CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		Return(assert.AnError)
	mocks.natsConn.EXPECT().Close()

	pub, err := jetstream.NewPublisher(context.Background(), config, mocks.natsJS, mocks.json)
	assert.ErrorContains(t, err, "TOKENIZATION")
	assert.Nil(t, pub)
}

func TestPublishTokenizationEvent(t *testing.T) {
	mocks := setupTestPublisher(t)
	mocks.expectConnect()

	pub, err := jetstream.NewPublisher(context.Background(), config, mocks.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	tokenID := "42"
	event := &domain.TokenizationEvent{
		Type:            domain.TokenizationEventTokenized,
		AttemptID:       "01HZA",
		ProductID:       1,
		Network:         "eip155:11155111",
		ContractAddress: "0x3333333333333333333333333333333333333333",
		TransactionHash: "0xaaaa",
		TokenID:         &tokenID,
		Timestamp:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mocks.jetStream.EXPECT().
		Publish(gomock.Any(), "tokenization.product.tokenized", gomock.Any(), "tokenized:1:0xaaaa").
		DoAndReturn(func(_ context.Context, _ string, data []byte, _ string) (*natsjs.PubAck, error) {
			var decoded domain.TokenizationEvent
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, *event, decoded)
			return &natsjs.PubAck{Stream: config.StreamName, Sequence: 1}, nil
		})

	require.NoError(t, pub.PublishTokenizationEvent(context.Background(), event))

	mocks.natsConn.EXPECT().Close()
	pub.Close()
}

func TestPublishTokenizationEvent_DivergentSubject(t *testing.T) {
	mocks := setupTestPublisher(t)
	mocks.expectConnect()

	pub, err := jetstream.NewPublisher(context.Background(), config, mocks.natsJS, mocks.json)
	require.NoError(t, err)

	event := &domain.TokenizationEvent{Type: domain.TokenizationEventDivergent, ProductID: 1}
	mocks.json.EXPECT().Marshal(event).Return([]byte(`{}`), nil)
	mocks.jetStream.EXPECT().
		Publish(gomock.Any(), "tokenization.product.divergent", []byte(`{}`), "divergent:1:").
		Return(nil, assert.AnError)

	err = pub.PublishTokenizationEvent(context.Background(), event)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPublishTokenizationEvent_DuplicateIsNotAnError(t *testing.T) {
	mocks := setupTestPublisher(t)
	mocks.expectConnect()

	pub, err := jetstream.NewPublisher(context.Background(), config, mocks.natsJS, adapter.NewJSON())
	require.NoError(t, err)

	event := &domain.TokenizationEvent{Type: domain.TokenizationEventTokenized, ProductID: 7, TransactionHash: "0xbbbb"}
	mocks.jetStream.EXPECT().
		Publish(gomock.Any(), "tokenization.product.tokenized", gomock.Any(), "tokenized:7:0xbbbb").
		Return(&natsjs.PubAck{Stream: config.StreamName, Sequence: 3, Duplicate: true}, nil)

	assert.NoError(t, pub.PublishTokenizationEvent(context.Background(), event))
}
