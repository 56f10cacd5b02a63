package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testPublisher(w messageWriter) *Publisher {
	return &Publisher{
		writer:  w,
		metrics: observability.NewMetricsForTesting(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func samplePrediction() domain.Prediction {
	return domain.Prediction{
		ID:        "3f0c6b8e-1f7a-4c1e-9a52-1b1f3c0d9e11",
		Timestamp: time.Date(2012, time.August, 14, 15, 10, 0, 0, time.UTC),
		Input: domain.FeatureVector{
			Temperature: 29, RH: 57, Ws: 18, Rain: 0, FFMC: 65.7,
			DMC: 3.4, ISI: 1.3, Classes: 0, Region: 1,
		},
		Result: 0.87,
	}
}

func TestSerializeToMessage(t *testing.T) {
	pred := samplePrediction()

	msg, err := serializeToMessage(pred)
	require.NoError(t, err)

	assert.Equal(t, []byte(pred.ID), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "region", msg.Headers[0].Key)
	assert.Equal(t, []byte("Sidi-Bel Abbes"), msg.Headers[0].Value)
	assert.Equal(t, "predicted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2012-08-14T15:10:00Z"), msg.Headers[1].Value)

	var decoded domain.Prediction
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, pred.ID, decoded.ID)
	assert.True(t, pred.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, pred.Input, decoded.Input)
	assert.InDelta(t, pred.Result, decoded.Result, 0)
	assert.Contains(t, string(msg.Value), `"region":1`)
}

func TestSerializeToMessage_UnencodableResult(t *testing.T) {
	pred := samplePrediction()
	pred.Result = math.NaN()

	_, err := serializeToMessage(pred)
	assert.Error(t, err)
}

func TestPublisher_Record(t *testing.T) {
	w := &fakeWriter{}
	p := testPublisher(w)

	require.NoError(t, p.Record(context.Background(), samplePrediction()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte(samplePrediction().ID), w.msgs[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_RecordWriteError(t *testing.T) {
	p := testPublisher(&fakeWriter{err: errors.New("writer closed")})
	assert.Error(t, p.Record(context.Background(), samplePrediction()))
}

func TestPublisher_OnCompletion(t *testing.T) {
	p := testPublisher(&fakeWriter{})
	batch := []kafkago.Message{{Key: []byte("a")}, {Key: []byte("b")}}

	p.onCompletion(batch, nil)
	assert.InDelta(t, 2.0, testutil.ToFloat64(p.metrics.EventsPublished), 0)

	p.onCompletion(batch[:1], errors.New("leader not available"))
	assert.InDelta(t, 1.0, testutil.ToFloat64(p.metrics.RecorderFailures.WithLabelValues("events")), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(p.metrics.EventsPublished), 0)
}
