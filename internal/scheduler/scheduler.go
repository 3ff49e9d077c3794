package scheduler

import (
	"context"

	"github.com/iamvtyagi/99acres/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCronJobs registers the periodic jobs and starts the scheduler. The
// caller stops it on shutdown.
func StartCronJobs(reconcileSpec string, reconciler *jobs.UnreadReconciler) (*cron.Cron, error) {
	c := cron.New()

	// Unread counter reconciliation
	if _, err := c.AddFunc(reconcileSpec, func() {
		if err := reconciler.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("UnreadReconciler failed")
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithField("reconcile", reconcileSpec).Info("Cron jobs started")
	return c, nil
}
