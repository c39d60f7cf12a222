package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const streamChannel = "statuscircle:events"

// StreamEvent is the payload written to a connected client: a delivered
// notification or an alert addressed to them that was created or changed.
type StreamEvent struct {
	Event        string               `json:"event"`
	Notification *models.Notification `json:"notification,omitempty"`
	Alert        *models.Alert        `json:"alert,omitempty"`
}

// StreamConn is the minimal connection interface a stream session needs.
type StreamConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// EventSink is where services publish realtime events for fan-out.
type EventSink interface {
	PublishNotification(userID string, n models.Notification)
	PublishAlert(userID string, a models.Alert)
}

// NotificationDeleter issues the best-effort delete of a displayed
// notification document once it expires from a session's ring.
type NotificationDeleter interface {
	DeleteNotification(ctx context.Context, userID string, id primitive.ObjectID) error
}

// envelope is the cross-instance wire form of a stream event.
type envelope struct {
	UserID string      `json:"user_id"`
	Event  StreamEvent `json:"event"`
}

// Hub is the registry of connected stream sessions, keyed by user id.
// Events are published through redis pub/sub so any instance holding the
// recipient's connection delivers them; without redis, delivery is local
// to this instance only.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*StreamSession

	deleter NotificationDeleter
	ttl     time.Duration
	rdb     *redis.Client
}

// NewHub creates a Hub. rdb may be nil for single-instance operation.
func NewHub(rdb *redis.Client, deleter NotificationDeleter, ttl time.Duration) *Hub {
	return &Hub{
		sessions: make(map[string]*StreamSession),
		deleter:  deleter,
		ttl:      ttl,
		rdb:      rdb,
	}
}

// Run consumes the pub/sub channel and delivers events to local sessions.
// It blocks until ctx is done and is a no-op without redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	pubsub := h.rdb.Subscribe(ctx, streamChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logrus.WithError(err).Warn("Dropped malformed stream event")
				continue
			}
			h.deliver(env)
		}
	}
}

// Register attaches a user's connection, replacing any previous session.
func (h *Hub) Register(userID string, conn StreamConn) *StreamSession {
	session := newStreamSession(userID, conn, h.ttl, h.deleter)

	h.mu.Lock()
	if prev, ok := h.sessions[userID]; ok {
		prev.Close()
	}
	h.sessions[userID] = session
	h.mu.Unlock()

	return session
}

// Unregister tears down a user's session if it is still the registered one.
func (h *Hub) Unregister(userID string, session *StreamSession) {
	h.mu.Lock()
	if current, ok := h.sessions[userID]; ok && current == session {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()
	session.Close()
}

func (h *Hub) session(userID string) *StreamSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[userID]
}

// PublishNotification fans a delivered notification out to its recipient.
func (h *Hub) PublishNotification(userID string, n models.Notification) {
	h.publish(envelope{
		UserID: userID,
		Event:  StreamEvent{Event: "notification", Notification: &n},
	})
}

// PublishAlert fans an alert create/update out to one recipient.
func (h *Hub) PublishAlert(userID string, a models.Alert) {
	h.publish(envelope{
		UserID: userID,
		Event:  StreamEvent{Event: "alert", Alert: &a},
	})
}

// publish sends the envelope through redis when available; on publish
// failure it degrades to local delivery, logged, not retried.
func (h *Hub) publish(env envelope) {
	if h.rdb != nil {
		payload, err := json.Marshal(env)
		if err == nil {
			if err = h.rdb.Publish(context.Background(), streamChannel, payload).Err(); err == nil {
				return
			}
		}
		logrus.WithError(err).Warn("Redis publish failed, delivering locally")
	}
	h.deliver(env)
}

func (h *Hub) deliver(env envelope) {
	session := h.session(env.UserID)
	if session == nil {
		return
	}
	switch {
	case env.Event.Notification != nil:
		session.pushRemote(*env.Event.Notification)
	case env.Event.Alert != nil:
		session.send(env.Event)
	}
}

// PushLocal surfaces a synthesized notification (a precondition failure
// or confirmation) on the user's session without any document write.
// Best-effort: if the user is not connected here, it is dropped.
func (h *Hub) PushLocal(userID, notifType, message string) {
	session := h.session(userID)
	if session == nil {
		return
	}
	session.pushLocal(models.Notification{
		UserID:    userID,
		Message:   message,
		Type:      notifType,
		CreatedAt: time.Now(),
	})
}
