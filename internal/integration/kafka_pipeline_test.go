//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/water-quality-etl/internal/adapter/kafka"
	"github.com/couchcryptid/water-quality-etl/internal/config"
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/loader"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
)

const (
	testSinkTopic = "test-classified"
	samplesPath   = "../../testdata/samples.csv"
)

// publishedMessage holds a deserialized message read from the sink topic.
type publishedMessage struct {
	Record  domain.Measurement
	LoadID  string
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the duration of the test.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("water-quality-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readPublished reads a single message from the sink consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	var value struct {
		domain.Measurement
		LoadID string `json:"load_id"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &value), "unmarshal sink message")

	return publishedMessage{
		Record:  value.Measurement,
		LoadID:  value.LoadID,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

// TestReloadPublishesClassifiedRecords loads the sample file with publishing
// enabled and verifies every classified record reaches the sink topic.
func TestReloadPublishesClassifiedRecords(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaEnabled:   true,
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(loader.New(discardLogger()), writer, discardLogger(), observability.NewMetricsForTesting(), 16)

	report, err := p.Reload(ctx, samplesPath, nil)
	require.NoError(t, err)

	loadIDs := make(map[domain.Category]string)
	total := 0
	for _, c := range report.Categories {
		require.Empty(t, c.PublishError, "publish %s", c.Category)
		loadIDs[c.Category] = c.LoadID
		total += c.Accepted
	}
	require.Equal(t, 23, total)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	counts := make(map[string]int)
	var pfos *publishedMessage
	for range total {
		pm := readPublished(ctx, t, consumer)
		counts[pm.Headers["category"]]++

		assert.Equal(t, pm.Record.ID, pm.Key)
		assert.Equal(t, string(pm.Record.Verdict), pm.Headers["verdict"])
		assert.Equal(t, loadIDs[pm.Record.Category], pm.Headers["load_id"])
		assert.Equal(t, pm.Headers["load_id"], pm.LoadID)
		_, err := time.Parse(time.RFC3339, pm.Headers["loaded_at"])
		assert.NoError(t, err, "loaded_at should be valid RFC3339")

		if pm.Record.Category == domain.Fluorinated && pm.Record.Analyte == "PFOS" {
			pfos = &pm
		}
	}

	assert.Equal(t, map[string]int{
		"pollutants":  3,
		"pops":        2,
		"litter":      3,
		"fluorinated": 3,
		"compliance":  12,
	}, counts)

	require.NotNil(t, pfos, "expected the PFOS record on the sink topic")
	assert.InDelta(t, 50.0, pfos.Record.Reading.Value, 1e-9)
	assert.Equal(t, "ug/l", pfos.Record.Unit)
	assert.Equal(t, domain.NonCompliant, pfos.Record.Verdict)
}

// TestReloadWithUnreachableBroker verifies a publishing failure is reported
// without losing the loaded state.
func TestReloadWithUnreachableBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := &config.Config{
		KafkaEnabled:   true,
		KafkaBrokers:   []string{"127.0.0.1:1"},
		KafkaSinkTopic: testSinkTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(loader.New(discardLogger()), writer, discardLogger(), observability.NewMetricsForTesting(), 16)

	report, err := p.Reload(ctx, samplesPath, []domain.Category{domain.Litter})
	require.NoError(t, err)
	require.Len(t, report.Categories, 1)
	assert.NotEmpty(t, report.Categories[0].PublishError)

	records, err := p.Records(domain.Litter, pipeline.Query{})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
