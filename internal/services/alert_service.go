package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmptyCircle     = errors.New("add friends to your circle first")
	ErrInvalidLevel    = errors.New("unknown alert level")
	ErrSelfResponse    = errors.New("you cannot respond to your own alert")
	ErrAlertResolved   = errors.New("alert is already resolved")
	ErrNotCircleMember = errors.New("alert is not addressed to you")
	ErrNotAlertOwner   = errors.New("only the sender can resolve an alert")
)

// AlertStore is the persistence surface the alert service needs,
// satisfied by repository.AlertRepository.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	GetAlertByID(ctx context.Context, id primitive.ObjectID) (*models.Alert, error)
	GetAlertsForRecipient(ctx context.Context, userID string) ([]models.Alert, error)
	UpdateAlertStatus(ctx context.Context, id primitive.ObjectID, status string, responder *models.UserRef) error
}

// Notifier sends one per-recipient notification, satisfied by
// NotificationService.
type Notifier interface {
	Send(ctx context.Context, recipientID, message, notifType string, from *models.UserRef) (*models.Notification, error)
}

// AlertService owns the alert lifecycle: active, acknowledged, resolved.
// Resolved is terminal. Status changes and their notification fan-out are
// separate unguarded writes, never a transaction; a failure in between
// leaves the alert updated with recipients partially notified.
type AlertService struct {
	alerts   AlertStore
	notifier Notifier
	events   EventSink
}

// NewAlertService creates a new AlertService.
func NewAlertService(alerts AlertStore, notifier Notifier, events EventSink) *AlertService {
	return &AlertService{
		alerts:   alerts,
		notifier: notifier,
		events:   events,
	}
}

// Send broadcasts a crisis (red) or support-request (yellow) alert to the
// sender's circle. The recipient list is snapshotted from the circle at
// send time. An empty circle writes nothing.
func (s *AlertService) Send(ctx context.Context, sender *models.Profile, level string) (*models.Alert, error) {
	if !models.ValidLevel(level) {
		return nil, ErrInvalidLevel
	}
	if len(sender.Circle) == 0 {
		return nil, ErrEmptyCircle
	}

	circleIDs := make([]string, 0, len(sender.Circle))
	for _, member := range sender.Circle {
		circleIDs = append(circleIDs, member.ID)
	}

	alert := &models.Alert{
		FromUser:      models.UserRef{ID: sender.ID, Name: sender.DisplayName},
		CircleUserIDs: circleIDs,
		Status:        models.AlertActive,
		Level:         level,
	}
	created, err := s.alerts.CreateAlert(ctx, alert)
	if err != nil {
		return nil, err
	}

	message := "is having a hard time and could use some support."
	notifType := models.NotifYellowAlert
	if level == models.LevelRed {
		message = "is in crisis and needs help now!"
		notifType = models.NotifRedAlert
	}

	from := created.FromUser
	for _, member := range sender.Circle {
		s.events.PublishAlert(member.ID, *created)
		if _, err := s.notifier.Send(ctx, member.ID, message, notifType, &from); err != nil {
			logrus.WithError(err).Warnf("Failed to notify circle member %s of alert", member.ID)
		}
	}

	logrus.WithFields(logrus.Fields{
		"alertID": created.ID.Hex(),
		"level":   level,
		"circle":  len(circleIDs),
	}).Info("Alert sent")
	return created, nil
}

// Respond records the responder and moves the alert to acknowledged.
// The original sender cannot respond to their own alert; a resolved alert
// never changes. Racing responders are last-writer-wins.
func (s *AlertService) Respond(ctx context.Context, responder *models.Profile, alertID primitive.ObjectID) (*models.Alert, error) {
	alert, err := s.alerts.GetAlertByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status == models.AlertResolved {
		return nil, ErrAlertResolved
	}
	if alert.FromUser.ID == responder.ID {
		return nil, ErrSelfResponse
	}
	if !alert.AddressedTo(responder.ID) {
		return nil, ErrNotCircleMember
	}

	ref := models.UserRef{ID: responder.ID, Name: responder.DisplayName}
	if err := s.alerts.UpdateAlertStatus(ctx, alertID, models.AlertAcknowledged, &ref); err != nil {
		return nil, err
	}
	alert.Status = models.AlertAcknowledged
	alert.Responder = &ref

	for _, memberID := range alert.CircleUserIDs {
		s.events.PublishAlert(memberID, *alert)
	}

	message := fmt.Sprintf("%s is responding to your alert.", responder.DisplayName)
	if _, err := s.notifier.Send(ctx, alert.FromUser.ID, message, models.NotifAcknowledged, &ref); err != nil {
		logrus.WithError(err).Warn("Failed to notify alert sender of response")
	}

	circleMessage := fmt.Sprintf("%s has responded to %s's alert.", responder.DisplayName, alert.FromUser.Name)
	for _, memberID := range alert.CircleUserIDs {
		if memberID == responder.ID || memberID == alert.FromUser.ID {
			continue
		}
		if _, err := s.notifier.Send(ctx, memberID, circleMessage, models.NotifInfo, &ref); err != nil {
			logrus.WithError(err).Warnf("Failed to notify circle member %s of response", memberID)
		}
	}

	return alert, nil
}

// Resolve is the sender-only terminal transition. Resolving an already
// resolved alert changes nothing.
func (s *AlertService) Resolve(ctx context.Context, sender *models.Profile, alertID primitive.ObjectID) (*models.Alert, error) {
	alert, err := s.alerts.GetAlertByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status == models.AlertResolved {
		return nil, ErrAlertResolved
	}
	if alert.FromUser.ID != sender.ID {
		return nil, ErrNotAlertOwner
	}

	if err := s.alerts.UpdateAlertStatus(ctx, alertID, models.AlertResolved, nil); err != nil {
		return nil, err
	}
	alert.Status = models.AlertResolved

	for _, memberID := range alert.CircleUserIDs {
		s.events.PublishAlert(memberID, *alert)
	}

	from := models.UserRef{ID: sender.ID, Name: sender.DisplayName}
	message := fmt.Sprintf("%s's alert has been cancelled/resolved.", sender.DisplayName)
	for _, memberID := range alert.CircleUserIDs {
		if _, err := s.notifier.Send(ctx, memberID, message, models.NotifResolved, &from); err != nil {
			logrus.WithError(err).Warnf("Failed to notify circle member %s of resolution", memberID)
		}
	}

	return alert, nil
}

// Incoming returns the non-resolved alerts addressed to the user.
func (s *AlertService) Incoming(ctx context.Context, userID string) ([]models.Alert, error) {
	return s.alerts.GetAlertsForRecipient(ctx, userID)
}

// Crisis derives the surfaced crisis alert from the incoming list: the
// first active red alert. With two simultaneous crises only one surfaces
// until it resolves or is filtered out.
func (s *AlertService) Crisis(ctx context.Context, userID string) (*models.Alert, error) {
	alerts, err := s.alerts.GetAlertsForRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FindCrisisAlert(alerts), nil
}

// FindCrisisAlert picks the first active red alert, or nil.
func FindCrisisAlert(alerts []models.Alert) *models.Alert {
	for i := range alerts {
		if alerts[i].Status == models.AlertActive && alerts[i].Level == models.LevelRed {
			return &alerts[i]
		}
	}
	return nil
}
