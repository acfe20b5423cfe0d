package sales

import (
	"fmt"
	"strings"

	"pharmasales/m/domain"
)

// CreateSaleRequest is the input of CreateSale.
type CreateSaleRequest struct {
	PatientRUT string        `json:"patientRut"`
	Items      []LineRequest `json:"saleItems"`
}

type LineRequest struct {
	ProductID   int64 `json:"productId"`
	BatchID     int64 `json:"batchId"`
	WarehouseID int64 `json:"warehouseId"`
	Quantity    int64 `json:"quantity"`
}

// Validate checks the request locally. It returns a *domain.ValidationError.
func (r CreateSaleRequest) Validate() error {
	if strings.TrimSpace(r.PatientRUT) == "" {
		return &domain.ValidationError{Field: "patientRut", Reason: "is required"}
	}
	if len(r.Items) == 0 {
		return &domain.ValidationError{Field: "saleItems", Reason: "must contain at least one item"}
	}
	for i, line := range r.Items {
		field := fmt.Sprintf("saleItems[%d]", i)
		switch {
		case line.ProductID <= 0:
			return &domain.ValidationError{Field: field + ".productId", Reason: "is required"}
		case line.BatchID <= 0:
			return &domain.ValidationError{Field: field + ".batchId", Reason: "is required"}
		case line.WarehouseID <= 0:
			return &domain.ValidationError{Field: field + ".warehouseId", Reason: "is required"}
		case line.Quantity <= 0:
			return &domain.ValidationError{Field: field + ".quantity", Reason: "must be greater than 0"}
		}
	}
	return nil
}
