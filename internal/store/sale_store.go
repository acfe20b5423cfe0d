package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmasales/m/domain"
)

const saleColumns = `id, patient_rut, patient_name, sale_date, subtotal, discount_amount, discount_percentage, total_amount, benefit_type, is_beneficiary, status`

const itemColumns = `id, sale_id, product_id, product_code, product_name, batch_id, batch_number, warehouse_id, warehouse_name, quantity, unit_price, total_price, pricing_method`

// SaleStore persists sales and their items with sqlx. Queries are written
// with ? placeholders and rebound for the connected driver.
type SaleStore struct {
	db *sqlx.DB
}

func NewSaleStore(db *sqlx.DB) *SaleStore {
	return &SaleStore{db: db}
}

// Insert writes the sale header and its items in one transaction and assigns
// the generated ids back onto sale.
func (s *SaleStore) Insert(ctx context.Context, sale *domain.Sale) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sale insert: %w", err)
	}
	defer tx.Rollback()

	var saleID int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO sales (patient_rut, patient_name, sale_date, subtotal, discount_amount, discount_percentage, total_amount, benefit_type, is_beneficiary, status)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		sale.PatientRUT, sale.PatientName, dbTime(sale.SaleDate), sale.Subtotal, sale.DiscountAmount, sale.DiscountPercentage,
		sale.TotalAmount, sale.BenefitType, sale.IsBeneficiary, string(sale.Status)).Scan(&saleID)
	if err != nil {
		return 0, fmt.Errorf("insert sale: %w", err)
	}

	insertItem := tx.Rebind(`INSERT INTO sale_items (sale_id, product_id, product_code, product_name, batch_id, batch_number, warehouse_id, warehouse_name, quantity, unit_price, total_price, pricing_method)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	itemIDs := make([]int64, len(sale.Items))
	for i, item := range sale.Items {
		err := tx.QueryRowxContext(ctx, insertItem,
			saleID, item.ProductID, item.ProductCode, item.ProductName, item.BatchID, item.BatchNumber,
			item.WarehouseID, item.WarehouseName, item.Quantity, item.UnitPrice, item.TotalPrice, string(item.PricingMethod)).Scan(&itemIDs[i])
		if err != nil {
			return 0, fmt.Errorf("insert sale item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sale: %w", err)
	}

	sale.AssignID(saleID)
	for i := range sale.Items {
		sale.Items[i].ID = itemIDs[i]
	}
	return saleID, nil
}

// Update persists the sale status. It is the only mutable column.
func (s *SaleStore) Update(ctx context.Context, sale *domain.Sale) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE sales SET status = ? WHERE id = ?`), string(sale.Status), sale.ID)
	if err != nil {
		return fmt.Errorf("update sale %d: %w", sale.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update sale %d: %w", sale.ID, domain.ErrSaleNotFound)
	}
	return nil
}

func (s *SaleStore) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.GetContext(ctx, &sale, s.db.Rebind(`SELECT `+saleColumns+` FROM sales WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale %d: %w", id, domain.ErrSaleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find sale %d: %w", id, err)
	}

	if err := s.db.SelectContext(ctx, &sale.Items, s.db.Rebind(`SELECT `+itemColumns+` FROM sale_items WHERE sale_id = ? ORDER BY id`), id); err != nil {
		return nil, fmt.Errorf("load items for sale %d: %w", id, err)
	}
	return &sale, nil
}

func (s *SaleStore) FindAll(ctx context.Context) ([]domain.Sale, error) {
	return s.list(ctx, "", nil)
}

func (s *SaleStore) FindByPatientRut(ctx context.Context, rut string) ([]domain.Sale, error) {
	return s.list(ctx, "patient_rut = ?", []any{rut})
}

func (s *SaleStore) FindByStatus(ctx context.Context, status domain.SaleStatus) ([]domain.Sale, error) {
	return s.list(ctx, "status = ?", []any{string(status)})
}

// FindBetween returns sales dated within [start, end], both inclusive.
func (s *SaleStore) FindBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	return s.list(ctx, "sale_date >= ? AND sale_date <= ?", []any{dbTime(start), dbTime(end)})
}

func (s *SaleStore) list(ctx context.Context, where string, args []any) ([]domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY sale_date DESC, id DESC"

	var sales []domain.Sale
	if err := s.db.SelectContext(ctx, &sales, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(sales) == 0 {
		return []domain.Sale{}, nil
	}
	if err := s.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *SaleStore) attachItems(ctx context.Context, sales []domain.Sale) error {
	ids := make([]int64, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}

	itemsQuery, itemsArgs, err := sqlx.In(`SELECT `+itemColumns+` FROM sale_items WHERE sale_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("prepare sale items query: %w", err)
	}
	itemsQuery = s.db.Rebind(itemsQuery)

	var rows []domain.SaleItem
	if err := s.db.SelectContext(ctx, &rows, itemsQuery, itemsArgs...); err != nil {
		return fmt.Errorf("load sale items: %w", err)
	}
	itemsBySale := make(map[int64][]domain.SaleItem)
	for _, row := range rows {
		itemsBySale[row.SaleID] = append(itemsBySale[row.SaleID], row)
	}
	for i := range sales {
		sales[i].Items = itemsBySale[sales[i].ID]
	}
	return nil
}

// dbTime normalises timestamps so that SQLite's textual ordering matches
// chronological ordering.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
