// Package store defines the persistence contracts the reconciliation engine
// depends on. Adapters receive snapshots to save and return authoritative
// replacement data on load; they never mutate engine-owned collections.
package store

import (
	"context"
	"time"

	"github.com/cestino/shopping-service/internal/list"
)

// Local persists the full state on-device.
type Local interface {
	// Load returns the persisted state. Missing or malformed entries fall
	// back to safe defaults rather than failing.
	Load() (list.State, error)
	// Save replaces the persisted state with the given snapshot.
	Save(state list.State) error
}

// Change is a push notification that a remote collection changed.
type Change struct {
	Table string
}

// Remote reads and writes the three collections through a shared backend and
// surfaces change notifications. Every call suspends on network I/O.
type Remote interface {
	ListProducts(ctx context.Context) ([]list.Product, error)
	ListSupermarkets(ctx context.Context) ([]string, error)
	ListTemplates(ctx context.Context) ([]list.ProductTemplate, error)

	InsertProduct(ctx context.Context, p list.Product) error
	UpdateProduct(ctx context.Context, id, name string, markets []string) error
	SetProductBought(ctx context.Context, id string, bought bool, boughtAt *time.Time) error
	SetProductMarkets(ctx context.Context, id string, markets []string) error
	DeleteProduct(ctx context.Context, id string) error
	DeleteProducts(ctx context.Context, ids []string) error

	InsertSupermarket(ctx context.Context, name string) error
	RenameSupermarket(ctx context.Context, currentName, newName string) error
	DeleteSupermarket(ctx context.Context, name string) error
	// SeedSupermarkets upserts the default names by unique name.
	SeedSupermarkets(ctx context.Context, names []string) error

	InsertTemplate(ctx context.Context, t list.ProductTemplate) error
	UpdateTemplate(ctx context.Context, id, name string, markets []string) error
	SetTemplateMarkets(ctx context.Context, id string, markets []string) error
	AppendTemplateLog(ctx context.Context, id string, markets []string, log []time.Time) error
	// UpsertTemplates inserts templates by unique name, leaving existing
	// rows untouched.
	UpsertTemplates(ctx context.Context, templates []list.ProductTemplate) error
	DeleteTemplate(ctx context.Context, id string) error

	// Subscribe starts delivering change notifications until ctx is
	// cancelled. The channel is closed when the subscription ends.
	Subscribe(ctx context.Context) (<-chan Change, error)
}
