package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OverdueJobName is the name of the overdue payment stage job
const OverdueJobName = "payment_overdue"

// PaymentOverdueMarker flags unpaid payment stages whose due date has
// passed. The booking repository implements it.
type PaymentOverdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// OverdueJob periodically sweeps payment schedules and marks missed
// installments as overdue.
type OverdueJob struct {
	marker  PaymentOverdueMarker
	logger  *zap.Logger
	timeout time.Duration
}

// NewOverdueJob creates the overdue sweep job. The timeout bounds one
// sweep.
func NewOverdueJob(marker PaymentOverdueMarker, logger *zap.Logger, timeout time.Duration) *OverdueJob {
	if timeout == 0 {
		timeout = time.Minute
	}
	return &OverdueJob{
		marker:  marker,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sweep. Called by the scheduler.
func (j *OverdueJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	updated, err := j.marker.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("overdue sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("overdue sweep completed",
		zap.Int64("stages_marked", updated),
		zap.Duration("duration", time.Since(start)))
}

// RegisterOverdueJob wires the overdue sweep into the scheduler.
func RegisterOverdueJob(scheduler *Scheduler, marker PaymentOverdueMarker, logger *zap.Logger, cronExpr string) error {
	job := NewOverdueJob(marker, logger, time.Minute)
	return scheduler.AddJob(OverdueJobName, cronExpr, job.Run)
}
