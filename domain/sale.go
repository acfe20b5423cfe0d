package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// ParseSaleStatus accepts any casing of a known status.
func ParseSaleStatus(s string) (SaleStatus, bool) {
	switch status := SaleStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether a sale in status s may move to next.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	switch s {
	case SaleStatusPending:
		return next == SaleStatusCompleted || next == SaleStatusCancelled
	case SaleStatusCompleted:
		return next == SaleStatusCancelled
	}
	return false
}

type PricingMethod string

const (
	PricingFIFO            PricingMethod = "FIFO"
	PricingLIFO            PricingMethod = "LIFO"
	PricingWeightedAverage PricingMethod = "WEIGHTED_AVERAGE"
	PricingLILO            PricingMethod = "LILO"
	PricingLastPurchase    PricingMethod = "LAST_PURCHASE"
)

func (m PricingMethod) Description() string {
	switch m {
	case PricingFIFO:
		return "FIFO - first in, first out"
	case PricingLIFO:
		return "LIFO - last in, first out"
	case PricingWeightedAverage:
		return "Weighted average"
	case PricingLILO:
		return "LILO - last in, last out"
	case PricingLastPurchase:
		return "Last purchase"
	}
	return string(m)
}

// Sale is the aggregate root for one point-of-sale transaction. Items are
// owned by the sale; each item refers back only through SaleID.
type Sale struct {
	ID                 int64           `db:"id" json:"id"`
	PatientRUT         string          `db:"patient_rut" json:"patientRut"`
	PatientName        string          `db:"patient_name" json:"patientName"`
	SaleDate           time.Time       `db:"sale_date" json:"saleDate"`
	Subtotal           decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount     decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	TotalAmount        decimal.Decimal `db:"total_amount" json:"totalAmount"`
	BenefitType        string          `db:"benefit_type" json:"benefitType"`
	IsBeneficiary      bool            `db:"is_beneficiary" json:"isBeneficiary"`
	Status             SaleStatus      `db:"status" json:"status"`
	Items              []SaleItem      `db:"-" json:"saleItems"`
}

// Totals is the outcome of applying a benefit to a subtotal.
type Totals struct {
	Subtotal           decimal.Decimal
	DiscountAmount     decimal.Decimal
	DiscountPercentage decimal.Decimal
	TotalAmount        decimal.Decimal
}

// NewSale assembles a PENDING sale. The subtotal in totals must equal the sum
// of the item totals.
func NewSale(patient *Patient, benefit Benefit, items []SaleItem, totals Totals, now time.Time) (*Sale, error) {
	if len(items) == 0 {
		return nil, ErrSaleMustHaveItems
	}
	if now.IsZero() {
		now = time.Now()
	}
	return &Sale{
		PatientRUT:         patient.RUT,
		PatientName:        patient.DisplayName(),
		SaleDate:           now.UTC().Truncate(time.Second),
		Subtotal:           totals.Subtotal,
		DiscountAmount:     totals.DiscountAmount,
		DiscountPercentage: totals.DiscountPercentage,
		TotalAmount:        totals.TotalAmount,
		BenefitType:        benefit.BenefitType,
		IsBeneficiary:      benefit.IsBeneficiary,
		Status:             SaleStatusPending,
		Items:              items,
	}, nil
}

// TransitionTo flips the status when the lifecycle allows it.
func (s *Sale) TransitionTo(next SaleStatus) error {
	if s.Status == SaleStatusCancelled && next == SaleStatusCancelled {
		return ErrAlreadyCancelled
	}
	if !s.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	s.Status = next
	return nil
}

// AssignID stores the persisted identifier on the sale and its items.
func (s *Sale) AssignID(id int64) {
	s.ID = id
	for i := range s.Items {
		s.Items[i].SaleID = id
	}
}

func (s *Sale) TotalItems() int {
	return len(s.Items)
}

// SaleItem is one line of a sale. Product, batch and warehouse descriptors are
// copied from the inventory snapshot at sale time.
type SaleItem struct {
	ID            int64           `db:"id" json:"id"`
	SaleID        int64           `db:"sale_id" json:"saleId"`
	ProductID     int64           `db:"product_id" json:"productId"`
	ProductCode   string          `db:"product_code" json:"productCode"`
	ProductName   string          `db:"product_name" json:"productName"`
	BatchID       int64           `db:"batch_id" json:"batchId"`
	BatchNumber   string          `db:"batch_number" json:"batchNumber"`
	WarehouseID   int64           `db:"warehouse_id" json:"warehouseId"`
	WarehouseName string          `db:"warehouse_name" json:"warehouseName"`
	Quantity      int64           `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unitPrice"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"totalPrice"`
	PricingMethod PricingMethod   `db:"pricing_method" json:"pricingMethod"`
}

// NewSaleItem materializes a line from a snapshot. TotalPrice is always
// UnitPrice × Quantity.
func NewSaleItem(snap *InventorySnapshot, quantity int64, unitPrice decimal.Decimal, method PricingMethod) (*SaleItem, error) {
	product := snap.Product()
	if product == nil {
		return nil, ErrIncompleteInventoryData
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}

	item := &SaleItem{
		ProductID:     product.ID,
		ProductCode:   product.ProductCode(),
		ProductName:   product.Name,
		BatchID:       snap.BatchID,
		BatchNumber:   snap.Batch.BatchNumber,
		WarehouseID:   snap.WarehouseID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    unitPrice.Mul(decimal.NewFromInt(quantity)),
		PricingMethod: method,
	}
	if snap.Warehouse != nil {
		item.WarehouseName = snap.Warehouse.Name
	}
	return item, nil
}
