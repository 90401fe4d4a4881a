package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomingMessage_ParseCustomerMessage(t *testing.T) {
	t.Run("should parse a valid envelope", func(t *testing.T) {
		msg := &IncomingMessage{
			Value: []byte(`{"request_id": 42, "source": "crm-import", "received_at": "2024-05-01T12:00:00Z"}`),
		}

		require.NoError(t, msg.ParseCustomerMessage())
		require.NotNil(t, msg.CustomerMessage)

		assert.Equal(t, int64(42), msg.CustomerMessage.RequestID)
		assert.Equal(t, "crm-import", msg.CustomerMessage.Source)
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), msg.CustomerMessage.ReceivedAt)
	})

	t.Run("should parse a minimal envelope", func(t *testing.T) {
		msg := &IncomingMessage{Value: []byte(`{"request_id": 7}`)}

		require.NoError(t, msg.ParseCustomerMessage())
		assert.Equal(t, int64(7), msg.CustomerMessage.RequestID)
	})

	t.Run("should reject invalid json", func(t *testing.T) {
		msg := &IncomingMessage{Value: []byte(`{"request_id":`)}

		assert.Error(t, msg.ParseCustomerMessage())
		assert.Nil(t, msg.CustomerMessage)
	})

	t.Run("should reject a missing request id", func(t *testing.T) {
		msg := &IncomingMessage{Value: []byte(`{"source": "crm-import"}`)}

		assert.Error(t, msg.ParseCustomerMessage())
		assert.Nil(t, msg.CustomerMessage)
	})

	t.Run("should reject a non-positive request id", func(t *testing.T) {
		msg := &IncomingMessage{Value: []byte(`{"request_id": -1}`)}

		assert.Error(t, msg.ParseCustomerMessage())
	})
}
