package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reasons attached to stock movements sent to the inventory service.
const (
	StockReasonSale         = "SALE"
	StockReasonCancellation = "CANCELLATION"
)

// InventorySnapshot is a point-in-time read of one inventory row owned by the
// inventory service. It is never persisted locally.
type InventorySnapshot struct {
	ID            int64              `json:"id"`
	WarehouseID   int64              `json:"warehouseId"`
	BatchID       int64              `json:"batchId"`
	Quantity      int64              `json:"quantity"`
	CurrentStock  int64              `json:"currentStock"`
	InventoryType string             `json:"inventoryType,omitempty"`
	LastUpdate    *RemoteTime        `json:"lastUpdate,omitempty"`
	Warehouse     *WarehouseSnapshot `json:"warehouse,omitempty"`
	Batch         *BatchSnapshot     `json:"batch,omitempty"`
}

type WarehouseSnapshot struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type BatchSnapshot struct {
	ID                int64            `json:"id"`
	BatchNumber       string           `json:"batchNumber"`
	ExpirationDate    *RemoteTime      `json:"expirationDate,omitempty"`
	ManufacturingDate *RemoteTime      `json:"manufacturingDate,omitempty"`
	Product           *ProductSnapshot `json:"product,omitempty"`
}

type ProductSnapshot struct {
	ID          int64               `json:"id"`
	Code        string              `json:"code,omitempty"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Price       decimal.NullDecimal `json:"price"`
	Category    string              `json:"category,omitempty"`
}

// Product returns the nested product descriptor, or nil when the snapshot
// lacks a batch or product reference.
func (s *InventorySnapshot) Product() *ProductSnapshot {
	if s == nil || s.Batch == nil {
		return nil
	}
	return s.Batch.Product
}

// ProductCode falls back to PROD-<id> for catalog entries without a code.
func (p *ProductSnapshot) ProductCode() string {
	if code := strings.TrimSpace(p.Code); code != "" {
		return code
	}
	return "PROD-" + strconv.FormatInt(p.ID, 10)
}

// RemoteTime decodes the date encodings the inventory service emits: epoch
// milliseconds, RFC 3339, a zone-less local timestamp or a plain date.
type RemoteTime struct {
	time.Time
}

var remoteTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *RemoteTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("remote time %s: %w", data, err)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("remote time %s: %w", data, err)
	}
	for _, layout := range remoteTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("remote time %q: unsupported format", raw)
}
