package cron

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/NewMtnGoat/new-status/internal/services"
)

// StartNotificationCronJobs runs the background sweeps that keep the
// notifications collection from accumulating stale documents.
func StartNotificationCronJobs(notificationService *services.NotificationService) {
	c := cron.New()

	// Sweep expired notifications hourly
	c.AddFunc("@hourly", func() {
		deleted, err := notificationService.DeleteExpired(context.Background())
		if err != nil {
			logrus.WithError(err).Error("Expired notification sweep failed")
			return
		}
		if deleted > 0 {
			logrus.WithField("deleted", deleted).Info("Swept expired notifications")
		}
	})

	c.Start()
}
