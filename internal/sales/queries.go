package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pharmasales/m/domain"
)

// GetSale returns the stored sale. Totals are the values written at sale
// time and never re-priced.
func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Sale, error) {
	return s.store.FindAll(ctx)
}

func (s *Service) ListByPatient(ctx context.Context, rut string) ([]domain.Sale, error) {
	rut = strings.TrimSpace(rut)
	if rut == "" {
		return nil, &domain.ValidationError{Field: "rut", Reason: "is required"}
	}
	return s.store.FindByPatientRut(ctx, rut)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.SaleStatus) ([]domain.Sale, error) {
	return s.store.FindByStatus(ctx, status)
}

// ListToday returns the sales of the current local calendar day.
func (s *Service) ListToday(ctx context.Context) ([]domain.Sale, error) {
	start, end := dayBounds(s.now())
	return s.store.FindBetween(ctx, start, end)
}

// ListBetween returns sales dated within [start, end].
func (s *Service) ListBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	if end.Before(start) {
		return nil, &domain.ValidationError{Field: "end", Reason: "must not be before start"}
	}
	return s.store.FindBetween(ctx, start, end)
}

// Summary aggregates one calendar day. Amounts only count COMPLETED sales.
type Summary struct {
	Date             string          `json:"date"`
	TotalSales       int             `json:"totalSales"`
	Completed        int             `json:"completed"`
	Pending          int             `json:"pending"`
	Cancelled        int             `json:"cancelled"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	BeneficiarySales int             `json:"beneficiarySales"`
}

func (s *Service) Summary(ctx context.Context, day time.Time) (*Summary, error) {
	start, end := dayBounds(day)
	list, err := s.store.FindBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summary for %s: %w", start.Format(time.DateOnly), err)
	}

	sum := &Summary{
		Date:           start.Format(time.DateOnly),
		TotalSales:     len(list),
		GrossAmount:    decimal.Zero,
		DiscountAmount: decimal.Zero,
		NetAmount:      decimal.Zero,
	}
	for _, sale := range list {
		switch sale.Status {
		case domain.SaleStatusPending:
			sum.Pending++
		case domain.SaleStatusCancelled:
			sum.Cancelled++
		case domain.SaleStatusCompleted:
			sum.Completed++
			sum.GrossAmount = sum.GrossAmount.Add(sale.Subtotal)
			sum.DiscountAmount = sum.DiscountAmount.Add(sale.DiscountAmount)
			sum.NetAmount = sum.NetAmount.Add(sale.TotalAmount)
			if sale.IsBeneficiary {
				sum.BeneficiarySales++
			}
		}
	}
	return sum, nil
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
