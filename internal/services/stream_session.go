package services

import (
	"context"
	"sync"
	"time"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ringCapacity bounds the in-memory toast ring: at most the 5 most
// recent notifications are held for display, oldest dropped silently.
const ringCapacity = 5

// displayEntry is one toast in a session's ring. The display id is
// local: for synthesized notifications it has no corresponding document.
type displayEntry struct {
	DisplayID    string              `json:"display_id"`
	Notification models.Notification `json:"notification"`
	persisted    bool
}

// StreamSession is one user's connected realtime feed. It owns the toast
// ring and the expiry timers; Close is the cancellable-handle teardown.
type StreamSession struct {
	userID  string
	conn    StreamConn
	ttl     time.Duration
	deleter NotificationDeleter

	mu     sync.Mutex
	ring   []displayEntry
	timers map[string]*time.Timer
	closed bool
}

func newStreamSession(userID string, conn StreamConn, ttl time.Duration, deleter NotificationDeleter) *StreamSession {
	return &StreamSession{
		userID:  userID,
		conn:    conn,
		ttl:     ttl,
		deleter: deleter,
		timers:  make(map[string]*time.Timer),
	}
}

// pushRemote displays a notification backed by a persisted document.
func (s *StreamSession) pushRemote(n models.Notification) {
	s.push(displayEntry{
		DisplayID:    n.ID.Hex(),
		Notification: n,
		persisted:    true,
	})
}

// pushLocal displays a synthesized notification. Its display id is
// generated locally and no delete is issued when it expires.
func (s *StreamSession) pushLocal(n models.Notification) {
	s.push(displayEntry{
		DisplayID:    uuid.NewString(),
		Notification: n,
		persisted:    false,
	})
}

func (s *StreamSession) push(entry displayEntry) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.ring = append([]displayEntry{entry}, s.ring...)
	if len(s.ring) > ringCapacity {
		// Oldest entries drop out of display silently; their timers
		// still fire so persisted documents are cleaned up regardless.
		s.ring = s.ring[:ringCapacity]
	}

	persistedID := entry.Notification.ID
	s.timers[entry.DisplayID] = time.AfterFunc(s.ttl, func() {
		s.expire(entry.DisplayID, persistedID, entry.persisted)
	})

	err := s.conn.WriteJSON(StreamEvent{Event: "notification", Notification: &entry.Notification})
	s.mu.Unlock()

	if err != nil {
		logrus.WithError(err).Warn("Failed to write notification to stream")
	}
}

// send writes a non-notification event (alert changes) to the connection.
func (s *StreamSession) send(ev StreamEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	err := s.conn.WriteJSON(ev)
	s.mu.Unlock()

	if err != nil {
		logrus.WithError(err).Warn("Failed to write alert event to stream")
	}
}

// expire removes the toast from the ring and, for persisted
// notifications, issues a single best-effort delete of the document.
// A delete failure is logged, not retried, and does not affect the ring.
func (s *StreamSession) expire(displayID string, persistedID primitive.ObjectID, persisted bool) {
	s.mu.Lock()
	delete(s.timers, displayID)
	for i, entry := range s.ring {
		if entry.DisplayID == displayID {
			s.ring = append(s.ring[:i], s.ring[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if persisted && s.deleter != nil {
		if err := s.deleter.DeleteNotification(context.Background(), s.userID, persistedID); err != nil {
			logrus.WithError(err).Warn("Failed to delete notification doc")
		}
	}
}

// Recent snapshots the ring, newest first.
func (s *StreamSession) Recent() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Notification, 0, len(s.ring))
	for _, entry := range s.ring {
		out = append(out, entry.Notification)
	}
	return out
}

// Close stops every pending expiry timer and closes the connection.
func (s *StreamSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	conn := s.conn
	s.mu.Unlock()

	if err := conn.Close(); err != nil {
		logrus.WithError(err).Debug("Stream connection close error")
	}
}
