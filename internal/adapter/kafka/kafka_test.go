package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func testEvent() domain.PredictionEvent {
	return domain.PredictionEvent{
		ID:          "evt-1",
		Features:    domain.FeatureVector{Temperature: 38, RH: 15, Ws: 25, FFMC: 85, DMC: 20, DC: 100, ISI: 8, BUI: 25},
		FWI:         12.4,
		PredictedAt: time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent()

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"fwi":12.4`)
	assert.Contains(t, string(msg.Value), `"Temperature":38`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "fwi", msg.Headers[0].Key)
	assert.Equal(t, []byte("12.4"), msg.Headers[0].Value)
	assert.Equal(t, "predicted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-07-14T12:00:00Z"), msg.Headers[1].Value)
}

func TestSerializeToMessage_NonFinite(t *testing.T) {
	event := testEvent()
	event.FWI = math.Inf(1)

	_, err := serializeToMessage(event)
	assert.Error(t, err)
}

func TestWriter_Publish(t *testing.T) {
	rec := &recordingWriter{}
	metrics := observability.NewMetricsForTesting()
	w := newWriter(rec, discardLogger(), metrics)

	require.NoError(t, w.Publish(context.Background(), testEvent()))

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, []byte("evt-1"), rec.msgs[0].Key)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("success")), 0)

	require.NoError(t, w.Close())
	assert.True(t, rec.closed)
}

func TestWriter_PublishError(t *testing.T) {
	rec := &recordingWriter{err: errors.New("broker down")}
	metrics := observability.NewMetricsForTesting()
	w := newWriter(rec, discardLogger(), metrics)

	err := w.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("error")), 0)
}
