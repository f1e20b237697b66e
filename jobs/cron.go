package jobs

import (
	"context"
	"time"

	"lablinc/services/logger"

	"github.com/robfig/cron/v3"
)

// BookingJobs is the part of the booking service driven by the scheduler.
type BookingJobs interface {
	CompleteFinished(ctx context.Context) (int, error)
	ExpirePending(ctx context.Context) (int, error)
	SendReminders(ctx context.Context) (int, error)
}

const jobTimeout = 5 * time.Minute

func run(log logger.Logger, name string, fn func(ctx context.Context) (int, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := fn(ctx)
		if err != nil {
			log.Error("[cron] %s failed: %v", name, err)
			return
		}
		if n > 0 {
			log.Info("[cron] %s processed %d bookings", name, n)
		}
	}
}

// InitCronJobs registers the booking lifecycle jobs on c. The caller owns
// Start and Stop.
func InitCronJobs(c *cron.Cron, bookings BookingJobs, log logger.Logger) error {
	schedule := []struct {
		spec string
		name string
		fn   func(ctx context.Context) (int, error)
	}{
		{"*/15 * * * *", "complete finished bookings", bookings.CompleteFinished},
		{"0 * * * *", "expire pending bookings", bookings.ExpirePending},
		{"0 8 * * *", "send booking reminders", bookings.SendReminders},
	}
	for _, job := range schedule {
		if _, err := c.AddFunc(job.spec, run(log, job.name, job.fn)); err != nil {
			return err
		}
	}
	log.Info("Cron jobs initialized successfully")
	return nil
}
