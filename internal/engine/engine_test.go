package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cestino/shopping-service/internal/list"
	"github.com/cestino/shopping-service/internal/store/localfile"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLocalEngine(t *testing.T, clock *fakeClock) *Engine {
	t.Helper()
	local, err := localfile.New(t.TempDir())
	require.NoError(t, err)
	logger := zerolog.Nop()
	e := New(local, nil, &logger, WithClock(clock.Now))
	require.NoError(t, e.Init(context.Background()))
	return e
}

func findProduct(t *testing.T, e *Engine, name string) list.Product {
	t.Helper()
	for _, p := range e.Snapshot().Products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not found", name)
	return list.Product{}
}

func findTemplate(t *testing.T, e *Engine, name string) list.ProductTemplate {
	t.Helper()
	for _, tpl := range e.Snapshot().Templates {
		if tpl.Name == name {
			return tpl
		}
	}
	t.Fatalf("template %q not found", name)
	return list.ProductTemplate{}
}

func TestOperationsRejectedBeforeInit(t *testing.T) {
	local, err := localfile.New(t.TempDir())
	require.NoError(t, err)
	logger := zerolog.Nop()
	e := New(local, nil, &logger)

	r := e.AddProduct(context.Background(), "Milk", []string{"Lidl"})
	assert.False(t, r.Success)
	assert.Equal(t, "Shopping list is still loading.", r.Message)

	err = e.ToggleProductBought(context.Background(), "some-id", true)
	require.Error(t, err)
	assert.Equal(t, "Shopping list is still loading.", err.Error())
}

func TestAddProductValidation(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	r := e.AddProduct(ctx, "   ", []string{"Lidl"})
	assert.False(t, r.Success)
	assert.Equal(t, "Please enter a product name.", r.Message)

	r = e.AddProduct(ctx, "Milk", []string{"  ", ""})
	assert.False(t, r.Success)
	assert.Equal(t, "Select at least one supermarket.", r.Message)

	assert.Empty(t, e.Snapshot().Products)
}

func TestAddProductRemembersTemplate(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	r := e.AddProduct(ctx, "  Milk  ", []string{" Lidl ", "Lidl", "Continente"})
	require.True(t, r.Success)
	assert.Equal(t, `Added "Milk".`, r.Message)

	p := findProduct(t, e, "Milk")
	assert.Equal(t, []string{"Lidl", "Continente"}, p.Supermarkets)
	assert.False(t, p.IsBought)
	assert.Nil(t, p.BoughtAt)

	tpl := findTemplate(t, e, "Milk")
	assert.Equal(t, []string{"Lidl", "Continente"}, tpl.Supermarkets)
	assert.Empty(t, tpl.PurchaseLog)
}

func TestToggleBoughtRecordsPurchase(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	e := newLocalEngine(t, clock)

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	p := findProduct(t, e, "Milk")

	boughtAt := clock.Now()
	require.NoError(t, e.ToggleProductBought(ctx, p.ID, true))

	p = findProduct(t, e, "Milk")
	assert.True(t, p.IsBought)
	require.NotNil(t, p.BoughtAt)
	assert.True(t, p.BoughtAt.Equal(boughtAt))

	tpl := findTemplate(t, e, "Milk")
	require.Len(t, tpl.PurchaseLog, 1)
	assert.True(t, tpl.PurchaseLog[0].Equal(boughtAt))
}

func TestToggleBoughtIsIdempotent(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	e := newLocalEngine(t, clock)

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	p := findProduct(t, e, "Milk")

	require.NoError(t, e.ToggleProductBought(ctx, p.ID, true))
	clock.Advance(time.Minute)
	require.NoError(t, e.ToggleProductBought(ctx, p.ID, true))

	// Re-asserting the flag must not log a second purchase or restamp.
	tpl := findTemplate(t, e, "Milk")
	assert.Len(t, tpl.PurchaseLog, 1)

	require.NoError(t, e.ToggleProductBought(ctx, p.ID, false))
	require.NoError(t, e.ToggleProductBought(ctx, p.ID, false))

	p = findProduct(t, e, "Milk")
	assert.False(t, p.IsBought)
	assert.Nil(t, p.BoughtAt)
	assert.Len(t, findTemplate(t, e, "Milk").PurchaseLog, 1)
}

func TestToggleBoughtUnknownIDIsIgnored(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	require.NoError(t, e.ToggleProductBought(ctx, "no-such-id", true))

	p := findProduct(t, e, "Milk")
	assert.False(t, p.IsBought)
	assert.Empty(t, findTemplate(t, e, "Milk").PurchaseLog)
}

func TestEditProductUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)

	r := e.EditProduct(ctx, "no-such-id", "Bread", []string{"Continente"})
	assert.True(t, r.Success)

	snap := e.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Milk", snap.Products[0].Name)
}

func TestDeleteProductIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	p := findProduct(t, e, "Milk")

	require.NoError(t, e.DeleteProduct(ctx, p.ID))
	require.NoError(t, e.DeleteProduct(ctx, p.ID))

	snap := e.Snapshot()
	assert.Empty(t, snap.Products)
	// Deleting a product never touches its template.
	assert.Len(t, snap.Templates, 1)
}

func TestSweepExpiredHonorsRetentionBoundary(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	e := newLocalEngine(t, clock)

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	p := findProduct(t, e, "Milk")
	require.NoError(t, e.ToggleProductBought(ctx, p.ID, true))

	clock.Advance(list.Retention - time.Millisecond)
	removed, err := e.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, e.Snapshot().Products, 1)

	clock.Advance(time.Millisecond)
	removed, err = e.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, e.Snapshot().Products)

	// The purchase history survives the product's expiry.
	assert.Len(t, findTemplate(t, e, "Milk").PurchaseLog, 1)
}

func TestInitPrunesAlreadyExpiredProducts(t *testing.T) {
	dir := t.TempDir()
	local, err := localfile.New(dir)
	require.NoError(t, err)

	clock := newFakeClock()
	staleAt := clock.Now().Add(-2 * time.Hour)
	freshAt := clock.Now().Add(-time.Minute)
	require.NoError(t, local.Save(list.State{
		Products: []list.Product{
			{ID: "p1", Name: "Milk", Supermarkets: []string{"Lidl"}, IsBought: true, BoughtAt: &staleAt},
			{ID: "p2", Name: "Bread", Supermarkets: []string{"Lidl"}, IsBought: true, BoughtAt: &freshAt},
		},
		Supermarkets: []string{"Lidl"},
	}))

	logger := zerolog.Nop()
	e := New(local, nil, &logger, WithClock(clock.Now))
	require.NoError(t, e.Init(context.Background()))

	snap := e.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Bread", snap.Products[0].Name)
	// Every surviving product gets a template derived on startup.
	assert.NotEmpty(t, snap.Templates)
}

func TestAddSupermarketRejectsCaseInsensitiveDuplicate(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	r := e.AddSupermarket(ctx, "lidl")
	assert.False(t, r.Success)
	assert.Equal(t, "That supermarket already exists.", r.Message)

	r = e.AddSupermarket(ctx, "  Aldi  ")
	require.True(t, r.Success)
	assert.Equal(t, "Supermarket added successfully.", r.Message)
	assert.Contains(t, e.Snapshot().Supermarkets, "Aldi")
}

func TestEditSupermarketCascadesRename(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl", "Continente"}).Success)
	e.SetSupermarketFilter("Lidl")

	r := e.EditSupermarket(ctx, "lidl", "Aldi")
	require.True(t, r.Success)
	assert.Equal(t, "Supermarket updated.", r.Message)

	snap := e.Snapshot()
	assert.Contains(t, snap.Supermarkets, "Aldi")
	assert.NotContains(t, snap.Supermarkets, "Lidl")
	assert.Equal(t, []string{"Aldi", "Continente"}, findProduct(t, e, "Milk").Supermarkets)
	assert.Equal(t, []string{"Aldi", "Continente"}, findTemplate(t, e, "Milk").Supermarkets)
	// The active market filter follows the rename.
	assert.Equal(t, "Aldi", snap.Filter.Supermarket)
}

func TestEditSupermarketValidation(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	r := e.EditSupermarket(ctx, "Nowhere", "Aldi")
	assert.Equal(t, "Supermarket not found.", r.Message)

	r = e.EditSupermarket(ctx, "Lidl", "   ")
	assert.Equal(t, "Please enter a supermarket name.", r.Message)

	r = e.EditSupermarket(ctx, "Lidl", "continente")
	assert.Equal(t, "Another supermarket already has that name.", r.Message)

	// Renaming only the casing of the same entry is allowed.
	r = e.EditSupermarket(ctx, "Lidl", "LIDL")
	assert.True(t, r.Success)
}

func TestDeleteSupermarketReportsCascadeCounts(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	require.True(t, e.AddProduct(ctx, "Bread", []string{"Lidl"}).Success)
	require.True(t, e.AddProduct(ctx, "Eggs", []string{"Lidl", "Continente"}).Success)

	// Detach one template from Lidl so the counts diverge.
	eggs := findTemplate(t, e, "Eggs")
	require.True(t, e.EditTemplate(ctx, eggs.ID, "Eggs", []string{"Continente"}).Success)

	e.SetSupermarketFilter("Lidl")

	r := e.DeleteSupermarket(ctx, "lidl")
	require.True(t, r.Success)
	assert.Equal(t, `Removed "Lidl". Updated 3 product(s) and 2 database item(s).`, r.Message)

	snap := e.Snapshot()
	assert.NotContains(t, snap.Supermarkets, "Lidl")
	for _, p := range snap.Products {
		assert.NotContains(t, p.Supermarkets, "Lidl")
	}
	for _, tpl := range snap.Templates {
		assert.NotContains(t, tpl.Supermarkets, "Lidl")
	}
	// The filter falls back to "all" when its market disappears.
	assert.Equal(t, list.AllSupermarkets, snap.Filter.Supermarket)
}

func TestDeleteSupermarketUnknownName(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	r := e.DeleteSupermarket(ctx, "Nowhere")
	assert.False(t, r.Success)
	assert.Equal(t, "Supermarket not found.", r.Message)
}

func TestEditTemplateValidation(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	require.True(t, e.AddProduct(ctx, "Bread", []string{"Lidl"}).Success)
	milk := findTemplate(t, e, "Milk")

	r := e.EditTemplate(ctx, "no-such-id", "Juice", []string{"Lidl"})
	assert.Equal(t, "Database item not found.", r.Message)

	r = e.EditTemplate(ctx, milk.ID, "bread", []string{"Lidl"})
	assert.Equal(t, "Another database item already has that name.", r.Message)

	r = e.EditTemplate(ctx, milk.ID, "Oat Milk", []string{"Continente"})
	require.True(t, r.Success)
	assert.Equal(t, "Database item updated.", r.Message)

	tpl := findTemplate(t, e, "Oat Milk")
	assert.Equal(t, []string{"Continente"}, tpl.Supermarkets)
	// Editing a template never touches live products.
	assert.Equal(t, "Milk", findProduct(t, e, "Milk").Name)
}

func TestDeleteTemplateLeavesProducts(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	tpl := findTemplate(t, e, "Milk")

	r := e.DeleteTemplate(ctx, tpl.ID)
	require.True(t, r.Success)
	assert.Equal(t, "Database item deleted.", r.Message)

	snap := e.Snapshot()
	assert.Empty(t, snap.Templates)
	assert.Len(t, snap.Products, 1)

	r = e.DeleteTemplate(ctx, tpl.ID)
	assert.Equal(t, "Database item not found.", r.Message)

	// Buying the product lazily recreates the template with the purchase.
	p := findProduct(t, e, "Milk")
	require.NoError(t, e.ToggleProductBought(ctx, p.ID, true))
	assert.Len(t, findTemplate(t, e, "Milk").PurchaseLog, 1)
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	clock := newFakeClock()
	logger := zerolog.Nop()

	local, err := localfile.New(dir)
	require.NoError(t, err)
	first := New(local, nil, &logger, WithClock(clock.Now))
	require.NoError(t, first.Init(ctx))

	require.True(t, first.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	require.True(t, first.AddSupermarket(ctx, "Aldi").Success)
	p := findProduct(t, first, "Milk")
	require.NoError(t, first.ToggleProductBought(ctx, p.ID, true))

	reopened, err := localfile.New(dir)
	require.NoError(t, err)
	second := New(reopened, nil, &logger, WithClock(clock.Now))
	require.NoError(t, second.Init(ctx))

	want := first.Snapshot()
	got := second.Snapshot()
	assert.Equal(t, want.Products, got.Products)
	assert.Equal(t, want.Supermarkets, got.Supermarkets)
	assert.Equal(t, want.Templates, got.Templates)
}

func TestFilteredProductsFollowFilter(t *testing.T) {
	ctx := context.Background()
	e := newLocalEngine(t, newFakeClock())

	require.True(t, e.AddProduct(ctx, "Milk", []string{"Lidl"}).Success)
	require.True(t, e.AddProduct(ctx, "Bread", []string{"Continente"}).Success)
	p := findProduct(t, e, "Bread")
	require.NoError(t, e.ToggleProductBought(ctx, p.ID, true))

	e.SetSupermarketFilter("Lidl")
	filtered := e.FilteredProducts()
	require.Len(t, filtered, 1)
	assert.Equal(t, "Milk", filtered[0].Name)

	e.SetSupermarketFilter(list.AllSupermarkets)
	e.SetStatusFilter(list.StatusBought)
	filtered = e.FilteredProducts()
	require.Len(t, filtered, 1)
	assert.Equal(t, "Bread", filtered[0].Name)

	e.SetStatusFilter(list.StatusAll)
	e.SetSearch("mil")
	filtered = e.FilteredProducts()
	require.Len(t, filtered, 1)
	assert.Equal(t, "Milk", filtered[0].Name)
}
