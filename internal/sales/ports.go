package sales

import (
	"context"
	"time"

	"pharmasales/m/domain"
)

// PatientGateway reads patient identity and benefit eligibility.
type PatientGateway interface {
	GetPatientByRut(ctx context.Context, rut string) (*domain.Patient, error)
	GetBenefits(ctx context.Context, rut string) (*domain.BenefitData, error)
}

// InventoryGateway reads snapshots and moves stock on the inventory service.
type InventoryGateway interface {
	GetByBatchAndWarehouse(ctx context.Context, batchID, warehouseID int64) (*domain.InventorySnapshot, error)
	GetByID(ctx context.Context, id int64) (*domain.InventorySnapshot, error)
	CheckAvailability(ctx context.Context, id, quantity int64) bool
	ReduceStock(ctx context.Context, id, quantity int64, reason string) (bool, error)
	IncreaseStock(ctx context.Context, id, quantity int64, reason string) (bool, error)
	IsAvailable(ctx context.Context) bool
}

// SaleStore persists sales. FindByID returns domain.ErrSaleNotFound for an
// unknown id.
type SaleStore interface {
	Insert(ctx context.Context, sale *domain.Sale) (int64, error)
	Update(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	FindAll(ctx context.Context) ([]domain.Sale, error)
	FindByPatientRut(ctx context.Context, rut string) ([]domain.Sale, error)
	FindByStatus(ctx context.Context, status domain.SaleStatus) ([]domain.Sale, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
}
