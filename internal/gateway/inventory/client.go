package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"pharmasales/m/domain"
	"pharmasales/m/internal/config"
	"pharmasales/m/internal/gateway"
)

// Client talks to the inventory service.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg config.Upstream) *Client {
	return &Client{baseURL: cfg.BaseURL, http: gateway.NewHTTPClient(cfg)}
}

type stockUpdateRequest struct {
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason"`
}

func (c *Client) GetByID(ctx context.Context, id int64) (*domain.InventorySnapshot, error) {
	return c.get(ctx, "/api/inventory/"+strconv.FormatInt(id, 10))
}

func (c *Client) GetByBatchAndWarehouse(ctx context.Context, batchID, warehouseID int64) (*domain.InventorySnapshot, error) {
	return c.get(ctx, fmt.Sprintf("/api/inventory/batch/%d/warehouse/%d", batchID, warehouseID))
}

func (c *Client) get(ctx context.Context, path string) (*domain.InventorySnapshot, error) {
	var snap domain.InventorySnapshot
	_, err := gateway.Do(ctx, c.http, http.MethodGet, c.baseURL+path, nil, &snap)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrInventoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &snap, nil
}

func (c *Client) GetAll(ctx context.Context) ([]domain.InventorySnapshot, error) {
	return list[domain.InventorySnapshot](ctx, c, "/api/inventory")
}

// GetByWarehouse answers an empty list when the warehouse is unknown.
func (c *Client) GetByWarehouse(ctx context.Context, warehouseID int64) ([]domain.InventorySnapshot, error) {
	out, err := list[domain.InventorySnapshot](ctx, c, "/api/inventory/warehouse/"+strconv.FormatInt(warehouseID, 10))
	if errors.Is(err, gateway.ErrNotFound) {
		return []domain.InventorySnapshot{}, nil
	}
	return out, err
}

func (c *Client) GetProducts(ctx context.Context) ([]domain.ProductSnapshot, error) {
	return list[domain.ProductSnapshot](ctx, c, "/api/products")
}

func (c *Client) GetWarehouses(ctx context.Context) ([]domain.WarehouseSnapshot, error) {
	return list[domain.WarehouseSnapshot](ctx, c, "/api/warehouse")
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if _, err := gateway.Do(ctx, c.http, http.MethodGet, c.baseURL+path, nil, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// CheckAvailability reports whether id currently holds at least quantity
// units. Any lookup failure counts as unavailable.
func (c *Client) CheckAvailability(ctx context.Context, id, quantity int64) bool {
	snap, err := c.GetByID(ctx, id)
	if err != nil {
		return false
	}
	return snap.CurrentStock >= quantity
}

// ReduceStock reports true only when the service answers 200.
func (c *Client) ReduceStock(ctx context.Context, id, quantity int64, reason string) (bool, error) {
	return c.moveStock(ctx, id, "reduce-stock", quantity, reason)
}

// IncreaseStock reports true only when the service answers 200.
func (c *Client) IncreaseStock(ctx context.Context, id, quantity int64, reason string) (bool, error) {
	return c.moveStock(ctx, id, "add-stock", quantity, reason)
}

func (c *Client) moveStock(ctx context.Context, id int64, action string, quantity int64, reason string) (bool, error) {
	url := fmt.Sprintf("%s/api/inventory/%d/%s", c.baseURL, id, action)
	status, err := gateway.Do(ctx, c.http, http.MethodPut, url, stockUpdateRequest{Quantity: quantity, Reason: reason}, nil)
	if errors.Is(err, gateway.ErrNotFound) {
		return false, fmt.Errorf("inventory %d: %w", id, domain.ErrInventoryNotFound)
	}
	var se *gateway.StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadRequest {
		return false, fmt.Errorf("inventory %d: %w", id, domain.ErrInsufficientStock)
	}
	if err != nil {
		return false, fmt.Errorf("%s inventory %d: %w", action, id, err)
	}
	return status == http.StatusOK, nil
}

// IsAvailable probes the liveness endpoint.
func (c *Client) IsAvailable(ctx context.Context) bool {
	status, err := gateway.Do(ctx, c.http, http.MethodGet, c.baseURL+"/api/hola", nil, nil)
	return err == nil && status == http.StatusOK
}
