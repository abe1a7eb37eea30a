// seed is a one-shot tool that loads demo data for local development:
// two warehouses, three cylinder products, an admin user, starting
// balances, and a month of delivered orders for the analytics screens.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"lpg-console/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding warehouses...")
	_, err = tx.Exec(ctx, `
		INSERT INTO warehouses (code, name, capacity, address)
		VALUES
		    ('WH-CENTRAL', 'Central Depot', 2000, '14 Industrial Estate Rd'),
		    ('WH-NORTH',   'North Branch',  600,  '3 Hillside Ave')
		ON CONFLICT (code) DO UPDATE
		  SET name = EXCLUDED.name,
		      capacity = EXCLUDED.capacity,
		      address = EXCLUDED.address;
	`)
	if err != nil {
		log.Fatalf("Failed to seed warehouses: %v", err)
	}

	log.Println("Seeding products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (sku, name, status)
		VALUES
		    ('LPG-5KG',  '5kg Household Cylinder',   'active'),
		    ('LPG-20KG', '20kg Commercial Cylinder', 'active'),
		    ('LPG-50KG', '50kg Industrial Cylinder', 'end_of_sale')
		ON CONFLICT (sku) DO UPDATE
		  SET name = EXCLUDED.name,
		      status = EXCLUDED.status;
	`)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seeding admin user...")
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, password_hash, display_name)
		VALUES ('admin', $1, 'Administrator')
		ON CONFLICT (username) DO UPDATE
		  SET password_hash = EXCLUDED.password_hash,
		      display_name = EXCLUDED.display_name;
	`, string(hash))
	if err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	log.Println("Seeding starting balances...")
	_, err = tx.Exec(ctx, `
		INSERT INTO inventory_balances (warehouse_id, product_id, qty_full, qty_empty, qty_reserved)
		SELECT w.id, p.id, v.qty_full, v.qty_empty, v.qty_reserved
		FROM (VALUES
		    ('WH-CENTRAL', 'LPG-5KG',  420, 130, 25),
		    ('WH-CENTRAL', 'LPG-20KG', 180, 60,  10),
		    ('WH-CENTRAL', 'LPG-50KG', 12,  4,   0),
		    ('WH-NORTH',   'LPG-5KG',  85,  40,  5),
		    ('WH-NORTH',   'LPG-20KG', 8,   22,  0)
		) AS v(wh_code, sku, qty_full, qty_empty, qty_reserved)
		JOIN warehouses w ON w.code = v.wh_code
		JOIN products p ON p.sku = v.sku
		ON CONFLICT (warehouse_id, product_id) DO UPDATE
		  SET qty_full = EXCLUDED.qty_full,
		      qty_empty = EXCLUDED.qty_empty,
		      qty_reserved = EXCLUDED.qty_reserved,
		      updated_at = now();
	`)
	if err != nil {
		log.Fatalf("Failed to seed balances: %v", err)
	}

	log.Println("Seeding delivered orders for analytics...")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for daysAgo := 1; daysAgo <= 28; daysAgo++ {
		orderDate := today.AddDate(0, 0, -daysAgo)
		qty := 6 + daysAgo%5
		var orderID int
		err = tx.QueryRow(ctx, `
			INSERT INTO orders (order_date, status)
			VALUES ($1, 'delivered')
			RETURNING id
		`, orderDate).Scan(&orderID)
		if err != nil {
			log.Fatalf("Failed to seed order: %v", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity)
			SELECT $1, p.id, $2 FROM products p WHERE p.sku = 'LPG-5KG'
		`, orderID, qty)
		if err != nil {
			log.Fatalf("Failed to seed order line: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Seed complete. Login with admin / admin123.")
}
