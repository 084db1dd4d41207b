package websocket

import (
	"context"
	"encoding/json"
	"time"

	"grievance/internal/domain/entity"
	"grievance/pkg/logger"
)

// WebSocket Message Types
const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeNotification = "notification"
	MessageTypeMarkRead     = "mark_read"
	MessageTypeAck          = "ack"
	MessageTypeError        = "error"
)

// WebSocket Message Structure
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type MarkReadData struct {
	NotificationID string `json:"notification_id"`
}

// NotificationReader is the slice of the notification use case the socket
// needs to acknowledge reads.
type NotificationReader interface {
	MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error)
}

// MessageHandler answers client frames. Notifications only flow server to
// client; the client may ping or mark a notification read.
type MessageHandler struct {
	notifications NotificationReader
}

func NewMessageHandler(notifications NotificationReader) *MessageHandler {
	return &MessageHandler{notifications: notifications}
}

func (h *MessageHandler) Handle(c *Client, raw []byte) {
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.reply(c, MessageTypeError, map[string]string{"message": "invalid message format"})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		h.reply(c, MessageTypePong, nil)

	case MessageTypeMarkRead:
		var data MarkReadData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.NotificationID == "" {
			h.reply(c, MessageTypeError, map[string]string{"message": "notification_id is required"})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if _, err := h.notifications.MarkRead(ctx, data.NotificationID, c.UserID); err != nil {
			h.reply(c, MessageTypeError, map[string]string{"message": err.Error()})
			return
		}
		h.reply(c, MessageTypeAck, data)

	default:
		logger.Debug("Ignoring websocket message type %q from %s", msg.Type, c.UserID)
	}
}

func (h *MessageHandler) reply(c *Client, msgType string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}
