package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubNotifyCoalesces(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Notify()
	h.Notify()

	require.Len(t, ch, 1)
	<-ch
	assert.Len(t, ch, 0)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	require.Equal(t, 1, h.Subscribers())

	h.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers())

	// Second unsubscribe is a no-op.
	h.Unsubscribe(ch)
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Close()
	for _, ch := range []chan struct{}{a, b} {
		_, ok := <-ch
		assert.False(t, ok)
	}

	late := h.Subscribe()
	_, ok := <-late
	assert.False(t, ok)

	h.Unsubscribe(a)
	h.Notify()
	h.Close()
}
