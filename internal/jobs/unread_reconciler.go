package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// CounterReconciler recomputes conversation unread counters from message
// read state. *services.MessagingService satisfies it.
type CounterReconciler interface {
	ReconcileUnreadCounts(ctx context.Context) (int, error)
}

// UnreadReconciler heals counters left inconsistent when marking a
// conversation read was interrupted between its two writes.
type UnreadReconciler struct {
	Messaging CounterReconciler
	Timeout   time.Duration
}

func NewUnreadReconciler(messaging CounterReconciler) *UnreadReconciler {
	return &UnreadReconciler{Messaging: messaging, Timeout: 5 * time.Minute}
}

// Run performs one reconciliation pass.
func (j *UnreadReconciler) Run(ctx context.Context) error {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	fixed, err := j.Messaging.ReconcileUnreadCounts(ctx)
	if err != nil {
		logrus.WithError(err).WithField("fixed", fixed).Error("Unread counter reconciliation failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"fixed":   fixed,
		"elapsed": time.Since(start).String(),
	}).Info("Unread counter reconciliation completed")
	return nil
}
