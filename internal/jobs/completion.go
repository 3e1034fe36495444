package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"homelet/internal/domain"
	"homelet/internal/repository"
)

// CompletionJob moves approved leases whose end date has passed into
// the completed status. The transition is out of band for tenants and
// landlords, so it runs on a schedule rather than on request.
type CompletionJob struct {
	bookings *repository.BookingRepository
	events   *repository.BookingEventRepository
}

func NewCompletionJob(bookings *repository.BookingRepository, events *repository.BookingEventRepository) *CompletionJob {
	return &CompletionJob{bookings: bookings, events: events}
}

func (j *CompletionJob) Run() {
	ctx := context.Background()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	ids, err := j.bookings.CompleteExpired(ctx, today)
	if err != nil {
		log.Printf("job=complete_expired error=%q", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	for _, id := range ids {
		if err := j.events.Append(ctx, &domain.BookingEvent{
			BookingID: id,
			Type:      domain.EventBookingCompleted,
		}); err != nil {
			log.Printf("job=complete_expired booking_id=%d event_error=%q", id, err)
		}
	}

	log.Printf("job=complete_expired completed=%d", len(ids))
}

// Schedule registers the job on the given cron spec and starts the
// scheduler. The returned cron can be stopped on shutdown.
func Schedule(spec string, job *CompletionJob) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
