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

	"github.com/couchcryptid/fire-weather-service/internal/adapter/kafka"
	"github.com/couchcryptid/fire-weather-service/internal/config"
	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/observability"
	"github.com/couchcryptid/fire-weather-service/internal/pipeline"
	"github.com/couchcryptid/fire-weather-service/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testPredictionTopic = "test-fwi-predictions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		tckafka.WithClusterID("fwi-test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(termCtx); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPredictionEventStream runs a prediction through the service with the
// Kafka sink attached and reads the published event back.
func TestPredictionEventStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testPredictionTopic)

	cfg := &config.Config{
		KafkaEnabled:         true,
		KafkaBrokers:         []string{broker},
		KafkaPredictionTopic: testPredictionTopic,
	}

	order, sa, ma := pipeline.DemoArtifacts()
	dir := t.TempDir()
	require.NoError(t, pipeline.WriteArtifacts(dir, order, sa, ma))
	p, err := pipeline.Load(dir)
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger(), metrics)
	t.Cleanup(func() { _ = writer.Close() })

	svc := service.New(p, discardLogger(), metrics, service.WithSink(writer))

	res := svc.Predict(ctx, []byte(`{"Temperature":38,"RH":15,"Ws":25,"Rain":0,"FFMC":85,"DMC":20,"DC":100,"ISI":8,"BUI":25}`))
	require.True(t, res.OK(), res.Message)
	assert.InDelta(t, 12.4, res.Value, 1e-9)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testPredictionTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from prediction topic")

	var event domain.PredictionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, event.ID, string(msg.Key))
	assert.InDelta(t, 12.4, event.FWI, 1e-9)
	assert.Equal(t, 38.0, event.Features.Temperature)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "12.4", headers["fwi"])
	_, err = time.Parse(time.RFC3339, headers["predicted_at"])
	assert.NoError(t, err, "predicted_at should be valid RFC3339")
}

// TestRejectedPredictionNotPublished checks that failed requests never reach
// the topic.
func TestRejectedPredictionNotPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testPredictionTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaPredictionTopic: testPredictionTopic}
	order, sa, ma := pipeline.DemoArtifacts()
	dir := t.TempDir()
	require.NoError(t, pipeline.WriteArtifacts(dir, order, sa, ma))
	p, err := pipeline.Load(dir)
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger(), metrics)
	t.Cleanup(func() { _ = writer.Close() })
	svc := service.New(p, discardLogger(), metrics, service.WithSink(writer))

	res := svc.Predict(ctx, []byte(`{"Temperature":38}`))
	require.False(t, res.OK())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testPredictionTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readCancel()
	_, err = consumer.ReadMessage(readCtx)
	assert.Error(t, err, "no event expected for a rejected payload")
}
