package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendBuffers(t *testing.T) {
	c := NewClient("c1", nil, 4)

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Send([]byte("msg")))
	}
}

func TestClient_SendFullBufferErrors(t *testing.T) {
	c := NewClient("c1", nil, 1)

	require.NoError(t, c.Send([]byte("first")))
	err := c.Send([]byte("second"))
	assert.Error(t, err, "a full buffer must not block the sender")
}

func TestClient_SendAfterCloseErrors(t *testing.T) {
	c := NewClient("c1", nil, 4)
	c.Close()

	assert.Error(t, c.Send([]byte("late")))
}

func TestClient_CloseIdempotent(t *testing.T) {
	c := NewClient("c1", nil, 4)
	c.Close()
	c.Close()
}
