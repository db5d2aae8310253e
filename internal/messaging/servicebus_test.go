package messaging

import (
	"bytes"
	"context"
	"testing"

	"example.com/outcry/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogClientWhenUnconfigured(t *testing.T) {
	var buf bytes.Buffer
	client, err := NewServiceBusClient(config.ServiceBusConfig{}, "outcry-api", zerolog.New(&buf))
	require.NoError(t, err)

	event := NewEvent(EventJobCreated, "job", 12, map[string]interface{}{"reference": "Shopfront"})
	require.NoError(t, Publish(context.Background(), client, event))
	require.NoError(t, client.Close())

	out := buf.String()
	assert.Contains(t, out, `"session_id":"job-12"`)
	assert.Contains(t, out, `"type":"job.created"`)
	assert.Contains(t, out, `"source":"outcry-api"`)
}

func TestEventSessionID(t *testing.T) {
	event := NewEvent(EventBookingUpdated, "booking", 7, nil)
	assert.Equal(t, "booking-7", event.SessionID())
	assert.False(t, event.OccurredAt.IsZero())
}

func TestGenerateSessionID(t *testing.T) {
	a, b := generateSessionID(), generateSessionID()
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
