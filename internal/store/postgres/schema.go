package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel carries change notifications for all three tables; the
// payload is the table name.
const notifyChannel = "shopping_changes"

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	supermarkets TEXT[] NOT NULL DEFAULT '{}',
	is_bought    BOOLEAN NOT NULL DEFAULT FALSE,
	bought_at    TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS supermarkets (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS templates (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name         TEXT NOT NULL UNIQUE,
	supermarkets TEXT[] NOT NULL DEFAULT '{}',
	purchase_log TIMESTAMPTZ[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE OR REPLACE FUNCTION notify_shopping_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('shopping_changes', TG_TABLE_NAME);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS products_notify ON products;
CREATE TRIGGER products_notify
	AFTER INSERT OR UPDATE OR DELETE ON products
	FOR EACH STATEMENT EXECUTE FUNCTION notify_shopping_change();

DROP TRIGGER IF EXISTS supermarkets_notify ON supermarkets;
CREATE TRIGGER supermarkets_notify
	AFTER INSERT OR UPDATE OR DELETE ON supermarkets
	FOR EACH STATEMENT EXECUTE FUNCTION notify_shopping_change();

DROP TRIGGER IF EXISTS templates_notify ON templates;
CREATE TRIGGER templates_notify
	AFTER INSERT OR UPDATE OR DELETE ON templates
	FOR EACH STATEMENT EXECUTE FUNCTION notify_shopping_change();
`

// EnsureSchema creates the three tables and their notify triggers if missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
