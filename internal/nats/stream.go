package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/d-wern/portfolio-assistant/internal/model"
)

const (
	// StreamName is the name of the assistant exchange stream.
	StreamName = "ASSISTANT"

	// SubjectPrefix is the prefix for all exchange subjects.
	SubjectPrefix = "assistant"
)

// StreamManager records completed assistant exchanges on JetStream and
// reads them back for the admin surface.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the exchange stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	// Create stream
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.exchange.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024, // 1GB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Completed assistant exchanges",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// ExchangeSubject returns the subject an exchange is recorded under.
func ExchangeSubject(tool model.ToolChoice) string {
	return fmt.Sprintf("%s.exchange.%s", SubjectPrefix, tool)
}

// PublishExchange records a completed exchange.
func (m *StreamManager) PublishExchange(ctx context.Context, ex *model.Exchange) (uint64, error) {
	subject := ExchangeSubject(ex.Tool)

	data, err := json.Marshal(ex)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal exchange: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, subject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish exchange: %w", err)
	}

	return ack.Sequence, nil
}

// RecentExchanges retrieves up to limit of the most recently recorded
// exchanges, oldest first.
func (m *StreamManager) RecentExchanges(ctx context.Context, limit int) ([]model.Exchange, error) {
	js := m.client.JetStream()

	stream, err := js.Stream(ctx, StreamName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up stream: %w", err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream info: %w", err)
	}
	if info.State.Msgs == 0 {
		return nil, nil
	}

	startSeq := info.State.FirstSeq
	if info.State.LastSeq >= uint64(limit) && info.State.LastSeq-uint64(limit)+1 > startSeq {
		startSeq = info.State.LastSeq - uint64(limit) + 1
	}

	consumer, err := js.CreateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: fmt.Sprintf("%s.exchange.>", SubjectPrefix),
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverByStartSequencePolicy,
		OptStartSeq:   startSeq,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchanges: %w", err)
	}

	var exchanges []model.Exchange
	for msg := range batch.Messages() {
		var ex model.Exchange
		if err := json.Unmarshal(msg.Data(), &ex); err != nil {
			continue
		}

		if meta, err := msg.Metadata(); err == nil {
			ex.Sequence = meta.Sequence.Stream
		}

		exchanges = append(exchanges, ex)
	}

	if batch.Error() != nil && batch.Error() != context.DeadlineExceeded {
		return nil, fmt.Errorf("batch error: %w", batch.Error())
	}

	return exchanges, nil
}
