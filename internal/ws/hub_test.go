package ws

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	failing  bool
	closed   bool
}

func (c *fakeClient) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	good := &fakeClient{}
	bad := &fakeClient{failing: true}
	hub.Register <- good
	hub.Register <- bad

	hub.Publish(Event{Type: "admin_update", Action: "admin_created", EntityID: "42"})

	require.Eventually(t, func() bool { return len(good.received()) == 1 }, time.Second, 5*time.Millisecond)

	var got Event
	require.NoError(t, json.Unmarshal(good.received()[0], &got))
	assert.Equal(t, "admin_update", got.Type)
	assert.Equal(t, "42", got.EntityID)
	assert.False(t, got.SentAt.IsZero())

	assert.Eventually(t, bad.isClosed, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(nil)
	finished := make(chan struct{})
	go func() {
		hub.Run()
		close(finished)
	}()

	c := &fakeClient{}
	hub.Register <- c
	hub.Stop()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.True(t, c.isClosed())

	// publishing, joining or leaving after stop must not block or panic
	for i := 0; i < 2*broadcastQueue; i++ {
		hub.Publish(Event{Type: "noop"})
	}
	assert.False(t, hub.Join(&fakeClient{}))
	hub.Leave(c)
	hub.Stop()
}

func TestHubKeepsPublishOrder(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	c := &fakeClient{}
	require.True(t, hub.Join(c))

	const n = 500
	for i := 0; i < n; i++ {
		hub.Publish(Event{Type: "admin_update", EntityID: strconv.Itoa(i)})
	}

	require.Eventually(t, func() bool { return len(c.received()) == n }, 2*time.Second, 5*time.Millisecond)
	for i, raw := range c.received() {
		var got Event
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, strconv.Itoa(i), got.EntityID, "event %d delivered out of order", i)
	}
}
