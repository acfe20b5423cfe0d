package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pharmasales/m/domain"
	"pharmasales/m/internal/benefit"
	"pharmasales/m/internal/events"
	"pharmasales/m/internal/logging"
	"pharmasales/m/internal/metrics"
	"pharmasales/m/internal/pricing"
)

// Service records sales across the patient service, the inventory service
// and the local store. Stock reduction at sale time aborts on the first
// failure; stock restoration at cancellation time is best effort.
type Service struct {
	patients  PatientGateway
	inventory InventoryGateway
	store     SaleStore

	publisher       events.Publisher
	metrics         *metrics.Metrics
	lineConcurrency int
	now             func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLineConcurrency resolves up to n lines at once. Values below 2 keep
// lines sequential.
func WithLineConcurrency(n int) Option {
	return func(s *Service) { s.lineConcurrency = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(patients PatientGateway, inv InventoryGateway, store SaleStore, opts ...Option) *Service {
	s := &Service{
		patients:        patients,
		inventory:       inv,
		store:           store,
		publisher:       events.NopPublisher{},
		lineConcurrency: 1,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale validates req, prices every line, persists the sale as PENDING,
// reduces remote stock and marks the sale COMPLETED.
//
// A failed reduction returns an error matching domain.ErrStockUpdateFailed
// and leaves the stored sale PENDING. Reductions already applied for earlier
// lines are not reverted.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*domain.Sale, error) {
	if err := req.Validate(); err != nil {
		s.metrics.SaleOutcome(metrics.OutcomeRejected)
		return nil, err
	}
	rut := strings.TrimSpace(req.PatientRUT)

	patient, err := s.patients.GetPatientByRut(ctx, rut)
	if err != nil {
		s.metrics.SaleOutcome(metrics.OutcomeRejected)
		return nil, fmt.Errorf("create sale: %w", err)
	}
	if patient.RUT == "" {
		patient.RUT = rut
	}

	descriptor := s.lookupBenefit(ctx, rut)

	items, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		s.metrics.SaleOutcome(metrics.OutcomeRejected)
		return nil, fmt.Errorf("create sale: %w", err)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	totals := benefit.Apply(subtotal, descriptor)

	sale, err := domain.NewSale(patient, descriptor, items, totals, s.now())
	if err != nil {
		s.metrics.SaleOutcome(metrics.OutcomeRejected)
		return nil, fmt.Errorf("create sale: %w", err)
	}

	if _, err := s.store.Insert(ctx, sale); err != nil {
		s.metrics.SaleOutcome(metrics.OutcomeRejected)
		return nil, fmt.Errorf("create sale: %w", err)
	}

	for i, item := range sale.Items {
		if err := s.reduceStock(ctx, item); err != nil {
			s.metrics.SaleOutcome(metrics.OutcomeStockUpdateFailed)
			logging.Log(logging.Fields{
				SaleID:     sale.ID,
				PatientRUT: sale.PatientRUT,
				Step:       "reduce_stock",
				Status:     "failed",
				Message:    fmt.Sprintf("line %d left the sale PENDING", i+1),
				Error:      logging.Err(err),
			})
			s.publish(ctx, events.New(events.TypeStockUpdateFailed, sale.ID, map[string]any{
				"line":         i + 1,
				"batch_id":     item.BatchID,
				"warehouse_id": item.WarehouseID,
				"quantity":     item.Quantity,
				"error":        err.Error(),
			}))
			return nil, fmt.Errorf("sale %d line %d: %w", sale.ID, i+1, err)
		}
	}

	if err := sale.TransitionTo(domain.SaleStatusCompleted); err != nil {
		return nil, fmt.Errorf("complete sale %d: %w", sale.ID, err)
	}
	if err := s.store.Update(ctx, sale); err != nil {
		// Stock is already moved but the row stays PENDING for reconciliation.
		s.metrics.SaleOutcome(metrics.OutcomeCompletionFailed)
		logging.Log(logging.Fields{
			SaleID:     sale.ID,
			PatientRUT: sale.PatientRUT,
			Step:       "complete",
			Status:     "failed",
			Error:      logging.Err(err),
		})
		s.publish(ctx, events.New(events.TypeCompletionFailed, sale.ID, map[string]any{
			"patient_rut":  sale.PatientRUT,
			"total_amount": sale.TotalAmount.StringFixed(2),
			"error":        err.Error(),
		}))
		return nil, fmt.Errorf("complete sale %d: %w", sale.ID, err)
	}

	s.metrics.SaleOutcome(metrics.OutcomeCompleted)
	logging.Log(logging.Fields{SaleID: sale.ID, PatientRUT: sale.PatientRUT, Step: "create", Status: string(sale.Status)})
	s.publish(ctx, events.New(events.TypeSaleCompleted, sale.ID, map[string]any{
		"patient_rut":  sale.PatientRUT,
		"total_amount": sale.TotalAmount.StringFixed(2),
		"items":        len(sale.Items),
	}))
	return sale, nil
}

// lookupBenefit never fails: any gateway error degrades to no benefit.
func (s *Service) lookupBenefit(ctx context.Context, rut string) domain.Benefit {
	data, err := s.patients.GetBenefits(ctx, rut)
	if err != nil {
		logging.Log(logging.Fields{
			PatientRUT: rut,
			Step:       "benefits",
			Status:     "degraded",
			Message:    "continuing without benefit",
			Error:      logging.Err(err),
		})
		return domain.NoBenefit()
	}
	return benefit.Resolve(data)
}

func (s *Service) resolveLines(ctx context.Context, lines []LineRequest) ([]domain.SaleItem, error) {
	items := make([]domain.SaleItem, len(lines))
	errs := make([]error, len(lines))

	if s.lineConcurrency < 2 || len(lines) < 2 {
		for i, line := range lines {
			item, err := s.resolveLine(ctx, i, line)
			if err != nil {
				return nil, err
			}
			items[i] = *item
		}
		return items, nil
	}

	// Every line runs to completion so the lowest failing index is reported
	// regardless of scheduling.
	var g errgroup.Group
	g.SetLimit(s.lineConcurrency)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			item, err := s.resolveLine(ctx, i, line)
			if err != nil {
				errs[i] = err
				return nil
			}
			items[i] = *item
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Service) resolveLine(ctx context.Context, idx int, line LineRequest) (*domain.SaleItem, error) {
	snap, err := s.inventory.GetByBatchAndWarehouse(ctx, line.BatchID, line.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", idx+1, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("line %d: batch %d warehouse %d: %w", idx+1, line.BatchID, line.WarehouseID, domain.ErrInventoryNotFound)
	}

	if !s.inventory.CheckAvailability(ctx, snap.ID, line.Quantity) {
		return nil, &domain.InsufficientStockError{Line: idx, Available: snap.CurrentStock, Required: line.Quantity}
	}

	method, unitPrice, err := pricing.Quote(snap, line.Quantity)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", idx+1, err)
	}
	item, err := domain.NewSaleItem(snap, line.Quantity, unitPrice, method)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", idx+1, err)
	}
	return item, nil
}

func (s *Service) reduceStock(ctx context.Context, item domain.SaleItem) error {
	snap, err := s.inventory.GetByBatchAndWarehouse(ctx, item.BatchID, item.WarehouseID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStockUpdateFailed, err)
	}
	if snap == nil {
		return fmt.Errorf("%w: %w", domain.ErrStockUpdateFailed, domain.ErrInventoryNotFound)
	}
	ok, err := s.inventory.ReduceStock(ctx, snap.ID, item.Quantity, domain.StockReasonSale)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStockUpdateFailed, err)
	}
	if !ok {
		return fmt.Errorf("%w: inventory %d rejected the reduction of %d units of %s", domain.ErrStockUpdateFailed, snap.ID, item.Quantity, item.ProductName)
	}
	return nil
}

// CancelSale restores stock for every line and marks the sale CANCELLED.
// Restoration failures are logged, counted and published, never returned.
func (s *Service) CancelSale(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cancel sale: %w", err)
	}
	if err := sale.TransitionTo(domain.SaleStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel sale %d: %w", id, err)
	}

	failures := 0
	for i, item := range sale.Items {
		if err := s.restoreStock(ctx, item); err != nil {
			failures++
			s.metrics.CompensationFailed()
			logging.Log(logging.Fields{
				SaleID:  sale.ID,
				Step:    "restore_stock",
				Status:  "failed",
				Message: fmt.Sprintf("line %d: %d units of %s not restored", i+1, item.Quantity, item.ProductName),
				Error:   logging.Err(err),
			})
			s.publish(ctx, events.New(events.TypeCompensationFailed, sale.ID, map[string]any{
				"line":         i + 1,
				"batch_id":     item.BatchID,
				"warehouse_id": item.WarehouseID,
				"quantity":     item.Quantity,
				"error":        err.Error(),
			}))
		}
	}

	if err := s.store.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("cancel sale %d: %w", id, err)
	}

	s.metrics.SaleCancelled()
	logging.Log(logging.Fields{SaleID: sale.ID, Step: "cancel", Status: string(sale.Status)})
	s.publish(ctx, events.New(events.TypeSaleCancelled, sale.ID, map[string]any{
		"compensation_failures": failures,
	}))
	return sale, nil
}

func (s *Service) restoreStock(ctx context.Context, item domain.SaleItem) error {
	snap, err := s.inventory.GetByBatchAndWarehouse(ctx, item.BatchID, item.WarehouseID)
	if err != nil {
		return err
	}
	if snap == nil {
		return domain.ErrInventoryNotFound
	}
	ok, err := s.inventory.IncreaseStock(ctx, snap.ID, item.Quantity, domain.StockReasonCancellation)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("inventory %d rejected the restoration", snap.ID)
	}
	return nil
}

// publish is best effort and outlives request cancellation.
func (s *Service) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		logging.Log(logging.Fields{SaleID: evt.SaleID, EventID: evt.EventID, Step: "publish", Status: "failed", Message: evt.Type, Error: logging.Err(err)})
	}
}
