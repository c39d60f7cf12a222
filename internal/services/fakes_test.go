package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/NewMtnGoat/new-status/internal/gemini"
	"github.com/NewMtnGoat/new-status/internal/models"
)

// In-memory stand-ins for the repository layer so service behavior can be
// tested without a database.

type fakeProfileStore struct {
	profiles map[string]*models.Profile
	failWith error
}

func newFakeProfileStore(profiles ...*models.Profile) *fakeProfileStore {
	store := &fakeProfileStore{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		store.profiles[p.ID] = p
	}
	return store
}

func (f *fakeProfileStore) CreateProfile(_ context.Context, profile *models.Profile) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileStore) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return profile, nil
}

func (f *fakeProfileStore) GetProfilesByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	out := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		if profile, ok := f.profiles[id]; ok {
			out = append(out, *profile)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) UpdateDisplayName(_ context.Context, id, name string) error {
	if profile, ok := f.profiles[id]; ok {
		profile.DisplayName = name
	}
	return nil
}

func (f *fakeProfileStore) UpdateStatus(_ context.Context, id, status string) error {
	if profile, ok := f.profiles[id]; ok {
		profile.Status = status
	}
	return nil
}

func (f *fakeProfileStore) UpdateCircle(_ context.Context, id string, circle []models.UserRef) error {
	if profile, ok := f.profiles[id]; ok {
		profile.Circle = circle
	}
	return nil
}

func (f *fakeProfileStore) SetPremium(_ context.Context, id string, premium bool) error {
	if profile, ok := f.profiles[id]; ok {
		profile.IsPremium = premium
	}
	return nil
}

type fakeAlertStore struct {
	alerts   map[primitive.ObjectID]*models.Alert
	failWith error
}

func newFakeAlertStore(alerts ...*models.Alert) *fakeAlertStore {
	store := &fakeAlertStore{alerts: make(map[primitive.ObjectID]*models.Alert)}
	for _, a := range alerts {
		store.alerts[a.ID] = a
	}
	return store
}

func (f *fakeAlertStore) CreateAlert(_ context.Context, alert *models.Alert) (*models.Alert, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	alert.ID = primitive.NewObjectID()
	f.alerts[alert.ID] = alert
	return alert, nil
}

func (f *fakeAlertStore) GetAlertByID(_ context.Context, id primitive.ObjectID) (*models.Alert, error) {
	alert, ok := f.alerts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *alert
	return &copied, nil
}

func (f *fakeAlertStore) GetAlertsForRecipient(_ context.Context, userID string) ([]models.Alert, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []models.Alert
	for _, alert := range f.alerts {
		if alert.Status != models.AlertResolved && alert.AddressedTo(userID) {
			out = append(out, *alert)
		}
	}
	return out, nil
}

func (f *fakeAlertStore) UpdateAlertStatus(_ context.Context, id primitive.ObjectID, status string, responder *models.UserRef) error {
	alert, ok := f.alerts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	alert.Status = status
	if responder != nil {
		alert.Responder = responder
	}
	return nil
}

type sentNotification struct {
	RecipientID string
	Message     string
	Type        string
	From        *models.UserRef
}

type fakeNotifier struct {
	sent     []sentNotification
	failWith error
}

func (f *fakeNotifier) Send(_ context.Context, recipientID, message, notifType string, from *models.UserRef) (*models.Notification, error) {
	f.sent = append(f.sent, sentNotification{RecipientID: recipientID, Message: message, Type: notifType, From: from})
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &models.Notification{ID: primitive.NewObjectID(), UserID: recipientID, Message: message, Type: notifType, From: from}, nil
}

func (f *fakeNotifier) sentTo(userID string) []sentNotification {
	var out []sentNotification
	for _, n := range f.sent {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out
}

type publishedAlert struct {
	UserID string
	Alert  models.Alert
}

type fakeEventSink struct {
	notifications []models.Notification
	alerts        []publishedAlert
}

func (f *fakeEventSink) PublishNotification(userID string, n models.Notification) {
	n.UserID = userID
	f.notifications = append(f.notifications, n)
}

func (f *fakeEventSink) PublishAlert(userID string, a models.Alert) {
	f.alerts = append(f.alerts, publishedAlert{UserID: userID, Alert: a})
}

type fakeBridge struct {
	reply    string
	failWith error

	prompts   []string
	histories [][]gemini.Content
}

func (f *fakeBridge) Generate(_ context.Context, prompt string, history []gemini.Content) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.histories = append(f.histories, history)
	if f.failWith != nil {
		return "", f.failWith
	}
	return f.reply, nil
}

type fakeStreamConn struct {
	mu     sync.Mutex
	events []StreamEvent
	closed bool
}

func (f *fakeStreamConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := v.(StreamEvent); ok {
		f.events = append(f.events, ev)
	}
	return nil
}

func (f *fakeStreamConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStreamConn) written() []StreamEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StreamEvent(nil), f.events...)
}

type deletedDoc struct {
	UserID string
	ID     primitive.ObjectID
}

type fakeDeleter struct {
	mu       sync.Mutex
	deleted  []deletedDoc
	failWith error
}

func (f *fakeDeleter) DeleteNotification(_ context.Context, userID string, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, deletedDoc{UserID: userID, ID: id})
	return f.failWith
}

func (f *fakeDeleter) all() []deletedDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]deletedDoc(nil), f.deleted...)
}
