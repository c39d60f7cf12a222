package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NewMtnGoat/new-status/internal/models"
)

func alertTestProfile(id, name string, circle ...models.UserRef) *models.Profile {
	return &models.Profile{
		ID:          id,
		DisplayName: name,
		Circle:      circle,
		Status:      models.StatusOK,
	}
}

func TestAlertService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown level", func(t *testing.T) {
		store := newFakeAlertStore()
		service := NewAlertService(store, &fakeNotifier{}, &fakeEventSink{})

		sender := alertTestProfile("alice", "Alice", models.UserRef{ID: "bob", Name: "Bob"})
		_, err := service.Send(ctx, sender, "orange")

		require.ErrorIs(t, err, ErrInvalidLevel)
		assert.Empty(t, store.alerts)
	})

	t.Run("empty circle writes nothing", func(t *testing.T) {
		store := newFakeAlertStore()
		notifier := &fakeNotifier{}
		service := NewAlertService(store, notifier, &fakeEventSink{})

		_, err := service.Send(ctx, alertTestProfile("alice", "Alice"), models.LevelRed)

		require.ErrorIs(t, err, ErrEmptyCircle)
		assert.Empty(t, store.alerts)
		assert.Empty(t, notifier.sent)
	})

	t.Run("crisis alert snapshots circle and notifies every member", func(t *testing.T) {
		store := newFakeAlertStore()
		notifier := &fakeNotifier{}
		events := &fakeEventSink{}
		service := NewAlertService(store, notifier, events)

		sender := alertTestProfile("alice", "Alice",
			models.UserRef{ID: "bob", Name: "Bob"},
			models.UserRef{ID: "carol", Name: "Carol"},
		)
		alert, err := service.Send(ctx, sender, models.LevelRed)

		require.NoError(t, err)
		assert.Equal(t, models.AlertActive, alert.Status)
		assert.Equal(t, models.LevelRed, alert.Level)
		assert.Equal(t, models.UserRef{ID: "alice", Name: "Alice"}, alert.FromUser)
		assert.Equal(t, []string{"bob", "carol"}, alert.CircleUserIDs)

		require.Len(t, notifier.sent, 2)
		for _, sent := range notifier.sent {
			assert.Equal(t, "is in crisis and needs help now!", sent.Message)
			assert.Equal(t, models.NotifRedAlert, sent.Type)
			assert.Equal(t, "alice", sent.From.ID)
		}
		assert.Len(t, events.alerts, 2)
	})

	t.Run("support alert uses the yellow message", func(t *testing.T) {
		notifier := &fakeNotifier{}
		service := NewAlertService(newFakeAlertStore(), notifier, &fakeEventSink{})

		sender := alertTestProfile("alice", "Alice", models.UserRef{ID: "bob", Name: "Bob"})
		_, err := service.Send(ctx, sender, models.LevelYellow)

		require.NoError(t, err)
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "is having a hard time and could use some support.", notifier.sent[0].Message)
		assert.Equal(t, models.NotifYellowAlert, notifier.sent[0].Type)
	})

	t.Run("a failed notification does not fail the send", func(t *testing.T) {
		notifier := &fakeNotifier{failWith: errors.New("boom")}
		service := NewAlertService(newFakeAlertStore(), notifier, &fakeEventSink{})

		sender := alertTestProfile("alice", "Alice",
			models.UserRef{ID: "bob", Name: "Bob"},
			models.UserRef{ID: "carol", Name: "Carol"},
		)
		alert, err := service.Send(ctx, sender, models.LevelRed)

		require.NoError(t, err)
		assert.NotNil(t, alert)
		assert.Len(t, notifier.sent, 2)
	})
}

func TestAlertService_Respond(t *testing.T) {
	ctx := context.Background()

	newActiveAlert := func() *models.Alert {
		return &models.Alert{
			ID:            primitive.NewObjectID(),
			FromUser:      models.UserRef{ID: "alice", Name: "Alice"},
			CircleUserIDs: []string{"bob", "carol", "dave"},
			Status:        models.AlertActive,
			Level:         models.LevelRed,
		}
	}

	t.Run("sender cannot respond to their own alert", func(t *testing.T) {
		alert := newActiveAlert()
		service := NewAlertService(newFakeAlertStore(alert), &fakeNotifier{}, &fakeEventSink{})

		_, err := service.Respond(ctx, alertTestProfile("alice", "Alice"), alert.ID)

		require.ErrorIs(t, err, ErrSelfResponse)
	})

	t.Run("resolved alerts never change", func(t *testing.T) {
		alert := newActiveAlert()
		alert.Status = models.AlertResolved
		store := newFakeAlertStore(alert)
		service := NewAlertService(store, &fakeNotifier{}, &fakeEventSink{})

		_, err := service.Respond(ctx, alertTestProfile("bob", "Bob"), alert.ID)

		require.ErrorIs(t, err, ErrAlertResolved)
		assert.Equal(t, models.AlertResolved, store.alerts[alert.ID].Status)
	})

	t.Run("non-recipients are rejected", func(t *testing.T) {
		alert := newActiveAlert()
		service := NewAlertService(newFakeAlertStore(alert), &fakeNotifier{}, &fakeEventSink{})

		_, err := service.Respond(ctx, alertTestProfile("mallory", "Mallory"), alert.ID)

		require.ErrorIs(t, err, ErrNotCircleMember)
	})

	t.Run("response acknowledges and fans out", func(t *testing.T) {
		alert := newActiveAlert()
		store := newFakeAlertStore(alert)
		notifier := &fakeNotifier{}
		events := &fakeEventSink{}
		service := NewAlertService(store, notifier, events)

		updated, err := service.Respond(ctx, alertTestProfile("bob", "Bob"), alert.ID)

		require.NoError(t, err)
		assert.Equal(t, models.AlertAcknowledged, updated.Status)
		require.NotNil(t, updated.Responder)
		assert.Equal(t, "bob", updated.Responder.ID)
		assert.Equal(t, models.AlertAcknowledged, store.alerts[alert.ID].Status)

		// Sender learns who is coming.
		senderNotifs := notifier.sentTo("alice")
		require.Len(t, senderNotifs, 1)
		assert.Equal(t, "Bob is responding to your alert.", senderNotifs[0].Message)
		assert.Equal(t, models.NotifAcknowledged, senderNotifs[0].Type)

		// The rest of the circle is informed, excluding the responder.
		assert.Empty(t, notifier.sentTo("bob"))
		for _, memberID := range []string{"carol", "dave"} {
			notifs := notifier.sentTo(memberID)
			require.Len(t, notifs, 1)
			assert.Equal(t, "Bob has responded to Alice's alert.", notifs[0].Message)
			assert.Equal(t, models.NotifInfo, notifs[0].Type)
		}

		assert.Len(t, events.alerts, 3)
	})
}

func TestAlertService_Resolve(t *testing.T) {
	ctx := context.Background()

	newAcknowledgedAlert := func() *models.Alert {
		return &models.Alert{
			ID:            primitive.NewObjectID(),
			FromUser:      models.UserRef{ID: "alice", Name: "Alice"},
			CircleUserIDs: []string{"bob", "carol"},
			Status:        models.AlertAcknowledged,
			Responder:     &models.UserRef{ID: "bob", Name: "Bob"},
			Level:         models.LevelRed,
		}
	}

	t.Run("only the sender can resolve", func(t *testing.T) {
		alert := newAcknowledgedAlert()
		service := NewAlertService(newFakeAlertStore(alert), &fakeNotifier{}, &fakeEventSink{})

		_, err := service.Resolve(ctx, alertTestProfile("bob", "Bob"), alert.ID)

		require.ErrorIs(t, err, ErrNotAlertOwner)
	})

	t.Run("resolving twice is rejected", func(t *testing.T) {
		alert := newAcknowledgedAlert()
		alert.Status = models.AlertResolved
		service := NewAlertService(newFakeAlertStore(alert), &fakeNotifier{}, &fakeEventSink{})

		_, err := service.Resolve(ctx, alertTestProfile("alice", "Alice"), alert.ID)

		require.ErrorIs(t, err, ErrAlertResolved)
	})

	t.Run("resolution notifies the whole circle", func(t *testing.T) {
		alert := newAcknowledgedAlert()
		store := newFakeAlertStore(alert)
		notifier := &fakeNotifier{}
		service := NewAlertService(store, notifier, &fakeEventSink{})

		updated, err := service.Resolve(ctx, alertTestProfile("alice", "Alice"), alert.ID)

		require.NoError(t, err)
		assert.Equal(t, models.AlertResolved, updated.Status)
		assert.Equal(t, models.AlertResolved, store.alerts[alert.ID].Status)

		for _, memberID := range []string{"bob", "carol"} {
			notifs := notifier.sentTo(memberID)
			require.Len(t, notifs, 1)
			assert.Equal(t, "Alice's alert has been cancelled/resolved.", notifs[0].Message)
			assert.Equal(t, models.NotifResolved, notifs[0].Type)
		}
	})
}

func TestFindCrisisAlert(t *testing.T) {
	red := models.Alert{ID: primitive.NewObjectID(), Status: models.AlertActive, Level: models.LevelRed}
	yellow := models.Alert{ID: primitive.NewObjectID(), Status: models.AlertActive, Level: models.LevelYellow}
	acknowledgedRed := models.Alert{ID: primitive.NewObjectID(), Status: models.AlertAcknowledged, Level: models.LevelRed}

	t.Run("picks the first active red alert", func(t *testing.T) {
		got := FindCrisisAlert([]models.Alert{yellow, acknowledgedRed, red})
		require.NotNil(t, got)
		assert.Equal(t, red.ID, got.ID)
	})

	t.Run("nil when nothing qualifies", func(t *testing.T) {
		assert.Nil(t, FindCrisisAlert([]models.Alert{yellow, acknowledgedRed}))
		assert.Nil(t, FindCrisisAlert(nil))
	})
}
