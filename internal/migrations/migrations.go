package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS operators (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            patient_rut TEXT NOT NULL,
            patient_name TEXT NOT NULL,
            sale_date DATETIME NOT NULL,
            subtotal TEXT NOT NULL,
            discount_amount TEXT NOT NULL,
            discount_percentage TEXT NOT NULL,
            total_amount TEXT NOT NULL,
            benefit_type TEXT NOT NULL,
            is_beneficiary BOOLEAN NOT NULL DEFAULT 0,
            status TEXT NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS sale_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            sale_id INTEGER NOT NULL,
            product_id INTEGER NOT NULL,
            product_code TEXT NOT NULL,
            product_name TEXT NOT NULL,
            batch_id INTEGER NOT NULL,
            batch_number TEXT NOT NULL,
            warehouse_id INTEGER NOT NULL,
            warehouse_name TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            unit_price TEXT NOT NULL,
            total_price TEXT NOT NULL,
            pricing_method TEXT NOT NULL,
            FOREIGN KEY(sale_id) REFERENCES sales(id)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_sales_patient_rut ON sales(patient_rut);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_status ON sales(status);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date);`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items(sale_id);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS operators (
            id BIGSERIAL PRIMARY KEY,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT now()
        );`,
	`CREATE TABLE IF NOT EXISTS sales (
            id BIGSERIAL PRIMARY KEY,
            patient_rut TEXT NOT NULL,
            patient_name TEXT NOT NULL,
            sale_date TIMESTAMPTZ NOT NULL,
            subtotal NUMERIC(12,2) NOT NULL,
            discount_amount NUMERIC(12,2) NOT NULL,
            discount_percentage NUMERIC(5,2) NOT NULL,
            total_amount NUMERIC(12,2) NOT NULL,
            benefit_type TEXT NOT NULL,
            is_beneficiary BOOLEAN NOT NULL DEFAULT FALSE,
            status TEXT NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS sale_items (
            id BIGSERIAL PRIMARY KEY,
            sale_id BIGINT NOT NULL REFERENCES sales(id),
            product_id BIGINT NOT NULL,
            product_code TEXT NOT NULL,
            product_name TEXT NOT NULL,
            batch_id BIGINT NOT NULL,
            batch_number TEXT NOT NULL,
            warehouse_id BIGINT NOT NULL,
            warehouse_name TEXT NOT NULL,
            quantity BIGINT NOT NULL,
            unit_price NUMERIC(12,2) NOT NULL,
            total_price NUMERIC(14,2) NOT NULL,
            pricing_method TEXT NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_sales_patient_rut ON sales(patient_rut);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_status ON sales(status);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date);`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items(sale_id);`,
}

// Run creates the schema for the connected driver. It is safe to run twice.
func Run(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
