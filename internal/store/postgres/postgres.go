// Package postgres implements the remote persistence adapter on Postgres.
// Market columns are text arrays, purchase logs are timestamptz arrays, and
// change notifications ride on LISTEN/NOTIFY.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cestino/shopping-service/internal/list"
	"github.com/cestino/shopping-service/internal/store"
)

// Adapter implements store.Remote against a pgx connection pool.
type Adapter struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
}

// New creates an adapter over the given pool.
func New(pool *pgxpool.Pool, logger *zerolog.Logger) *Adapter {
	return &Adapter{pool: pool, logger: logger}
}

// ListProducts returns all products, newest first.
func (a *Adapter) ListProducts(ctx context.Context) ([]list.Product, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT id, name, supermarkets, is_bought, bought_at
		FROM products
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []list.Product
	for rows.Next() {
		var p list.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Supermarkets, &p.IsBought, &p.BoughtAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Name = list.SanitizeName(p.Name)
		p.Supermarkets = list.NormalizeMarkets(p.Supermarkets)
		if !p.IsBought {
			p.BoughtAt = nil
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListSupermarkets returns supermarket names in creation order.
func (a *Adapter) ListSupermarkets(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT name FROM supermarkets ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query supermarkets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan supermarket: %w", err)
		}
		names = append(names, name)
	}
	return list.NormalizeMarkets(names), rows.Err()
}

// ListTemplates returns all templates ordered by name.
func (a *Adapter) ListTemplates(ctx context.Context) ([]list.ProductTemplate, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT id, name, supermarkets, purchase_log
		FROM templates
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []list.ProductTemplate
	for rows.Next() {
		var t list.ProductTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Supermarkets, &t.PurchaseLog); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		t.Name = list.SanitizeName(t.Name)
		t.Supermarkets = list.NormalizeMarkets(t.Supermarkets)
		if t.PurchaseLog == nil {
			t.PurchaseLog = []time.Time{}
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (a *Adapter) InsertProduct(ctx context.Context, p list.Product) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO products (id, name, supermarkets, is_bought, bought_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Name, p.Supermarkets, p.IsBought, p.BoughtAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (a *Adapter) UpdateProduct(ctx context.Context, id, name string, markets []string) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE products SET name = $2, supermarkets = $3 WHERE id = $1
	`, id, name, markets)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (a *Adapter) SetProductBought(ctx context.Context, id string, bought bool, boughtAt *time.Time) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE products SET is_bought = $2, bought_at = $3 WHERE id = $1
	`, id, bought, boughtAt)
	if err != nil {
		return fmt.Errorf("failed to set product bought: %w", err)
	}
	return nil
}

func (a *Adapter) SetProductMarkets(ctx context.Context, id string, markets []string) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE products SET supermarkets = $2 WHERE id = $1
	`, id, markets)
	if err != nil {
		return fmt.Errorf("failed to set product markets: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteProduct(ctx context.Context, id string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteProducts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := a.pool.Exec(ctx, `DELETE FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}

func (a *Adapter) InsertSupermarket(ctx context.Context, name string) error {
	_, err := a.pool.Exec(ctx, `INSERT INTO supermarkets (name) VALUES ($1)`, name)
	if err != nil {
		return fmt.Errorf("failed to insert supermarket: %w", err)
	}
	return nil
}

func (a *Adapter) RenameSupermarket(ctx context.Context, currentName, newName string) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE supermarkets SET name = $2 WHERE name = $1
	`, currentName, newName)
	if err != nil {
		return fmt.Errorf("failed to rename supermarket: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteSupermarket(ctx context.Context, name string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM supermarkets WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete supermarket: %w", err)
	}
	return nil
}

func (a *Adapter) SeedSupermarkets(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := a.pool.Exec(ctx, `
			INSERT INTO supermarkets (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name)
		if err != nil {
			return fmt.Errorf("failed to seed supermarket %q: %w", name, err)
		}
	}
	return nil
}

func (a *Adapter) InsertTemplate(ctx context.Context, t list.ProductTemplate) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO templates (id, name, supermarkets, purchase_log)
		VALUES ($1, $2, $3, $4)
	`, t.ID, t.Name, t.Supermarkets, t.PurchaseLog)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

func (a *Adapter) UpdateTemplate(ctx context.Context, id, name string, markets []string) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE templates SET name = $2, supermarkets = $3 WHERE id = $1
	`, id, name, markets)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return nil
}

func (a *Adapter) SetTemplateMarkets(ctx context.Context, id string, markets []string) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE templates SET supermarkets = $2 WHERE id = $1
	`, id, markets)
	if err != nil {
		return fmt.Errorf("failed to set template markets: %w", err)
	}
	return nil
}

func (a *Adapter) AppendTemplateLog(ctx context.Context, id string, markets []string, log []time.Time) error {
	_, err := a.pool.Exec(ctx, `
		UPDATE templates SET supermarkets = $2, purchase_log = $3 WHERE id = $1
	`, id, markets, log)
	if err != nil {
		return fmt.Errorf("failed to append template log: %w", err)
	}
	return nil
}

func (a *Adapter) UpsertTemplates(ctx context.Context, templates []list.ProductTemplate) error {
	for _, t := range templates {
		_, err := a.pool.Exec(ctx, `
			INSERT INTO templates (id, name, supermarkets, purchase_log)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, t.ID, t.Name, t.Supermarkets, t.PurchaseLog)
		if err != nil {
			return fmt.Errorf("failed to upsert template %q: %w", t.Name, err)
		}
	}
	return nil
}

func (a *Adapter) DeleteTemplate(ctx context.Context, id string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

var _ store.Remote = (*Adapter)(nil)
