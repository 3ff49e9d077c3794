package scheduler

import (
	"context"
	"testing"

	"github.com/iamvtyagi/99acres/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopReconciler struct{}

func (noopReconciler) ReconcileUnreadCounts(ctx context.Context) (int, error) { return 0, nil }

func TestStartCronJobs(t *testing.T) {
	c, err := StartCronJobs("@every 1h", jobs.NewUnreadReconciler(noopReconciler{}))
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}

func TestStartCronJobs_InvalidSpec(t *testing.T) {
	_, err := StartCronJobs("every now and then", jobs.NewUnreadReconciler(noopReconciler{}))
	assert.Error(t, err)
}
