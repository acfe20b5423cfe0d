package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"pharmasales/m/domain"
	"pharmasales/m/internal/events"
	"pharmasales/m/internal/logging"
	"pharmasales/m/internal/metrics"
)

// PendingFinder lists sales by status.
type PendingFinder interface {
	FindByStatus(ctx context.Context, status domain.SaleStatus) ([]domain.Sale, error)
}

// Job reports sales stuck in PENDING after a failed stock reduction. It only
// reports: stored sales and remote stock are left untouched for an operator
// to resolve.
type Job struct {
	store     PendingFinder
	publisher events.Publisher
	metrics   *metrics.Metrics
	grace     time.Duration
	interval  time.Duration
	now       func() time.Time
}

func New(store PendingFinder, publisher events.Publisher, m *metrics.Metrics, interval, grace time.Duration) *Job {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Job{
		store:     store,
		publisher: publisher,
		metrics:   m,
		grace:     grace,
		interval:  interval,
		now:       time.Now,
	}
}

// RunOnce reports every PENDING sale dated before now minus the grace period
// and returns how many it found.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	pending, err := j.store.FindByStatus(ctx, domain.SaleStatusPending)
	if err != nil {
		return 0, fmt.Errorf("list pending sales: %w", err)
	}

	cutoff := j.now().Add(-j.grace)
	stale := 0
	for _, sale := range pending {
		if !sale.SaleDate.Before(cutoff) {
			continue
		}
		stale++
		age := j.now().Sub(sale.SaleDate).Truncate(time.Second)
		logging.Log(logging.Fields{
			SaleID:     sale.ID,
			PatientRUT: sale.PatientRUT,
			Step:       "reconcile",
			Status:     string(sale.Status),
			Message:    fmt.Sprintf("pending for %s", age),
		})
		evt := events.New(events.TypePendingReconciliation, sale.ID, map[string]any{
			"patient_rut":  sale.PatientRUT,
			"sale_date":    sale.SaleDate.UTC().Format(time.RFC3339),
			"total_amount": sale.TotalAmount.StringFixed(2),
			"items":        len(sale.Items),
		})
		if err := j.publisher.Publish(ctx, evt); err != nil {
			logging.Log(logging.Fields{SaleID: sale.ID, EventID: evt.EventID, Step: "publish", Status: "failed", Message: evt.Type, Error: logging.Err(err)})
		}
	}

	j.metrics.SetPendingStale(stale)
	return stale, nil
}

// Run calls RunOnce every interval until ctx is done.
func (j *Job) Run(ctx context.Context) {
	if j.interval <= 0 {
		log.Printf("reconciliation disabled")
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				log.Printf("reconciliation failed: %v", err)
			}
		}
	}
}
