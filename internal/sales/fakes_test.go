package sales

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pharmasales/m/domain"
	"pharmasales/m/internal/events"
)

type fakePatients struct {
	mu          sync.Mutex
	patient     *domain.Patient
	err         error
	benefits    *domain.BenefitData
	benefitsErr error
	calls       int
}

func (f *fakePatients) GetPatientByRut(_ context.Context, rut string) (*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := *f.patient
	return &p, nil
}

func (f *fakePatients) GetBenefits(_ context.Context, rut string) (*domain.BenefitData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.benefitsErr != nil {
		return nil, f.benefitsErr
	}
	return f.benefits, nil
}

type invKey struct{ batch, warehouse int64 }

type stockCall struct {
	id, quantity int64
	reason       string
}

type fakeInventory struct {
	mu              sync.Mutex
	snaps           map[invKey]*domain.InventorySnapshot
	unavailable     map[int64]bool
	reduceFail      map[int64]bool
	increaseResults []bool
	calls           int
	reduced         []stockCall
	increased       []stockCall
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		snaps:       map[invKey]*domain.InventorySnapshot{},
		unavailable: map[int64]bool{},
		reduceFail:  map[int64]bool{},
	}
}

// add registers a snapshot with inventory id, batch and warehouse derived
// from productID.
func (f *fakeInventory) add(productID int64, price string, stock int64) *domain.InventorySnapshot {
	p := decimal.NullDecimal{}
	if price != "" {
		p = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	snap := &domain.InventorySnapshot{
		ID:           productID + 100,
		BatchID:      productID + 200,
		WarehouseID:  1,
		CurrentStock: stock,
		Warehouse:    &domain.WarehouseSnapshot{ID: 1, Name: "Central"},
		Batch: &domain.BatchSnapshot{
			ID:          productID + 200,
			BatchNumber: fmt.Sprintf("L-%d", productID),
			Product:     &domain.ProductSnapshot{ID: productID, Name: fmt.Sprintf("Producto %d", productID), Price: p},
		},
	}
	f.snaps[invKey{snap.BatchID, snap.WarehouseID}] = snap
	return snap
}

func (f *fakeInventory) line(productID, qty int64) LineRequest {
	return LineRequest{ProductID: productID, BatchID: productID + 200, WarehouseID: 1, Quantity: qty}
}

func (f *fakeInventory) GetByBatchAndWarehouse(_ context.Context, batchID, warehouseID int64) (*domain.InventorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	snap, ok := f.snaps[invKey{batchID, warehouseID}]
	if !ok {
		return nil, fmt.Errorf("batch %d warehouse %d: %w", batchID, warehouseID, domain.ErrInventoryNotFound)
	}
	cp := *snap
	if snap.Batch != nil {
		batch := *snap.Batch
		if batch.Product != nil {
			product := *batch.Product
			batch.Product = &product
		}
		cp.Batch = &batch
	}
	return &cp, nil
}

func (f *fakeInventory) GetByID(_ context.Context, id int64) (*domain.InventorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, snap := range f.snaps {
		if snap.ID == id {
			cp := *snap
			return &cp, nil
		}
	}
	return nil, domain.ErrInventoryNotFound
}

func (f *fakeInventory) CheckAvailability(_ context.Context, id, quantity int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.unavailable[id] {
		return false
	}
	for _, snap := range f.snaps {
		if snap.ID == id {
			return snap.CurrentStock >= quantity
		}
	}
	return false
}

func (f *fakeInventory) ReduceStock(_ context.Context, id, quantity int64, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.reduced = append(f.reduced, stockCall{id, quantity, reason})
	return !f.reduceFail[id], nil
}

func (f *fakeInventory) IncreaseStock(_ context.Context, id, quantity int64, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.increased = append(f.increased, stockCall{id, quantity, reason})
	if len(f.increaseResults) == 0 {
		return true, nil
	}
	ok := f.increaseResults[0]
	f.increaseResults = f.increaseResults[1:]
	return ok, nil
}

func (f *fakeInventory) IsAvailable(context.Context) bool { return true }

func (f *fakeInventory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memStore struct {
	mu        sync.Mutex
	nextID    int64
	sales     map[int64]domain.Sale
	inserts   int
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{sales: map[int64]domain.Sale{}}
}

func cloneSale(s domain.Sale) domain.Sale {
	s.Items = append([]domain.SaleItem(nil), s.Items...)
	return s
}

func (m *memStore) Insert(_ context.Context, sale *domain.Sale) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	m.nextID++
	sale.AssignID(m.nextID)
	for i := range sale.Items {
		sale.Items[i].ID = m.nextID*100 + int64(i)
	}
	m.sales[m.nextID] = cloneSale(*sale)
	return m.nextID, nil
}

func (m *memStore) Update(_ context.Context, sale *domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.sales[sale.ID]
	if !ok {
		return domain.ErrSaleNotFound
	}
	stored.Status = sale.Status
	m.sales[sale.ID] = stored
	return nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale %d: %w", id, domain.ErrSaleNotFound)
	}
	cp := cloneSale(stored)
	return &cp, nil
}

func (m *memStore) filter(keep func(domain.Sale) bool) []domain.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Sale{}
	for _, s := range m.sales {
		if keep(s) {
			out = append(out, cloneSale(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memStore) FindAll(context.Context) ([]domain.Sale, error) {
	return m.filter(func(domain.Sale) bool { return true }), nil
}

func (m *memStore) FindByPatientRut(_ context.Context, rut string) ([]domain.Sale, error) {
	return m.filter(func(s domain.Sale) bool { return s.PatientRUT == rut }), nil
}

func (m *memStore) FindByStatus(_ context.Context, status domain.SaleStatus) ([]domain.Sale, error) {
	return m.filter(func(s domain.Sale) bool { return s.Status == status }), nil
}

func (m *memStore) FindBetween(_ context.Context, start, end time.Time) ([]domain.Sale, error) {
	return m.filter(func(s domain.Sale) bool {
		return !s.SaleDate.Before(start) && !s.SaleDate.After(end)
	}), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
