package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithCorrelationID(t *testing.T) {
	t.Run("gera um UUID quando nenhum ID é informado", func(t *testing.T) {
		ctx, id := WithCorrelationID(context.Background(), "")

		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, GetCorrelationID(ctx))
	})

	t.Run("reaproveita o ID informado", func(t *testing.T) {
		ctx, id := WithCorrelationID(context.Background(), "req-123")

		assert.Equal(t, "req-123", id)
		assert.Equal(t, "req-123", GetCorrelationID(ctx))
	})

	t.Run("contexto sem ID", func(t *testing.T) {
		assert.Empty(t, GetCorrelationID(context.Background()))
	})
}

func TestForContext_AddsCorrelationField(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	previous := L
	L = &logger{entry: logrus.NewEntry(base)}
	defer func() { L = previous }()

	ctx, _ := WithCorrelationID(context.Background(), "abc-123")
	ForContext(ctx).Info("metrics: request handled")

	assert.Contains(t, buf.String(), `"correlation_id":"abc-123"`)
	assert.Contains(t, buf.String(), "metrics: request handled")
}
