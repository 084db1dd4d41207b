package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/domain/entity"
)

type readerStub struct {
	mu     sync.Mutex
	marked []string
}

func (r *readerStub) MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marked = append(r.marked, id)
	return &entity.Notification{ID: id, UserID: userID, IsRead: true}, nil
}

func (r *readerStub) Marked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.marked...)
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	a := &Client{UserID: "u1", Send: make(chan []byte, 1)}
	b := &Client{UserID: "u1", Send: make(chan []byte, 1)}
	c := &Client{UserID: "u2", Send: make(chan []byte, 1)}
	m.Register <- a
	m.Register <- b
	m.Register <- c

	require.Eventually(t, func() bool { return m.ConnectedUsers() == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, m.SendToUser("u1", []byte("hello")))
	assert.Equal(t, "hello", string(<-a.Send))
	assert.Equal(t, "hello", string(<-b.Send))
	assert.Empty(t, c.Send)

	assert.Equal(t, 0, m.SendToUser("nobody", []byte("hello")))

	m.Unregister <- a
	select {
	case _, open := <-a.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on unregister")
	}
	assert.Equal(t, 1, m.SendToUser("u1", []byte("again")))

	// These clients have no connection, so detach them before shutdown.
	m.Unregister <- b
	m.Unregister <- c
	require.Eventually(t, func() bool { return m.ConnectedUsers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNotificationPushedOverSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)
	reader := &readerStub{}
	handler := NewMessageHandler(reader)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient("citizen", conn)
		m.Register <- client
		go client.ReadPump(m, handler)
		go client.WritePump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return m.ConnectedUsers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Publish(ctx, &entity.Notification{ID: "n1", UserID: "citizen", Title: "Complaint Acknowledged"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string              `json:"type"`
		Data entity.Notification `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeNotification, msg.Type)
	assert.Equal(t, "n1", msg.Data.ID)

	raw, err := json.Marshal(map[string]interface{}{
		"type": MessageTypeMarkRead,
		"data": MarkReadData{NotificationID: "n1"},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))

	var ack struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, MessageTypeAck, ack.Type)
	assert.Equal(t, []string{"n1"}, reader.Marked())
}

func TestReadPumpReturnsAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	pumpDone := make(chan struct{})
	var registered *Client
	var mu sync.Mutex

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient("citizen", conn)
		if !m.Add(client) {
			conn.Close()
			return
		}
		mu.Lock()
		registered = client
		mu.Unlock()
		go func() {
			client.ReadPump(m, nil)
			close(pumpDone)
		}()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return m.ConnectedUsers() == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-pumpDone:
	case <-time.After(2 * time.Second):
		t.Fatal("read pump still blocked after the manager stopped")
	}
	assert.Equal(t, 0, m.ConnectedUsers())

	mu.Lock()
	client := registered
	mu.Unlock()
	_, open := <-client.Send
	assert.False(t, open)

	assert.False(t, m.Add(&Client{UserID: "late", Send: make(chan []byte, 1)}))
}
