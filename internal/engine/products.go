package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cestino/shopping-service/internal/list"
)

// validateProductInput is the single normalization/validation step shared by
// the local and cloud bodies of addProduct and editProduct, so the two paths
// cannot drift.
func validateProductInput(name string, markets []string) (string, []string, *list.ActionResult) {
	normalizedName := list.SanitizeName(name)
	normalizedMarkets := list.NormalizeMarkets(markets)

	if normalizedName == "" {
		r := list.Failure("Please enter a product name.")
		return "", nil, &r
	}
	if len(normalizedMarkets) == 0 {
		r := list.Failure("Select at least one supermarket.")
		return "", nil, &r
	}
	return normalizedName, normalizedMarkets, nil
}

// AddProduct inserts a new product at the head of the list and remembers its
// market selection on the matching template.
func (e *Engine) AddProduct(ctx context.Context, name string, markets []string) list.ActionResult {
	if r, ok := e.checkReady(); !ok {
		return r
	}

	normalizedName, normalizedMarkets, fail := validateProductInput(name, markets)
	if fail != nil {
		return *fail
	}

	if !e.isCloud() {
		e.mu.Lock()
		e.products = list.SortProducts(append([]list.Product{{
			ID:           list.NewID(),
			Name:         normalizedName,
			Supermarkets: normalizedMarkets,
		}}, e.products...))
		e.templates = list.UpsertTemplateMarkets(e.templates, normalizedName, normalizedMarkets)
		e.saveLocalLocked()
		e.mu.Unlock()

		return list.Success(fmt.Sprintf("Added %q.", normalizedName))
	}

	if err := e.remote.InsertProduct(ctx, list.Product{
		ID:           list.NewID(),
		Name:         normalizedName,
		Supermarkets: normalizedMarkets,
	}); err != nil {
		return list.Failure(err.Error())
	}

	e.upsertTemplateMarketsCloud(ctx, normalizedName, normalizedMarkets)

	if err := e.Refresh(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Refresh after add product failed")
	}
	return list.Success(fmt.Sprintf("Added %q.", normalizedName))
}

// EditProduct replaces the name and market list of the identified product.
// An unknown id is a silent no-op.
func (e *Engine) EditProduct(ctx context.Context, id, name string, markets []string) list.ActionResult {
	if r, ok := e.checkReady(); !ok {
		return r
	}

	normalizedName, normalizedMarkets, fail := validateProductInput(name, markets)
	if fail != nil {
		return *fail
	}

	if !e.isCloud() {
		e.mu.Lock()
		for i := range e.products {
			if e.products[i].ID == id {
				e.products[i].Name = normalizedName
				e.products[i].Supermarkets = normalizedMarkets
				break
			}
		}
		e.products = list.SortProducts(e.products)
		e.templates = list.UpsertTemplateMarkets(e.templates, normalizedName, normalizedMarkets)
		e.saveLocalLocked()
		e.mu.Unlock()

		return list.Success("Product updated.")
	}

	if err := e.remote.UpdateProduct(ctx, id, normalizedName, normalizedMarkets); err != nil {
		return list.Failure(err.Error())
	}

	e.upsertTemplateMarketsCloud(ctx, normalizedName, normalizedMarkets)

	if err := e.Refresh(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Refresh after edit product failed")
	}
	return list.Success("Product updated.")
}

// DeleteProduct removes the product. Unknown ids are ignored.
func (e *Engine) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := e.checkReady(); !ok {
		return errors.New(notReadyMessage)
	}

	if !e.isCloud() {
		e.mu.Lock()
		out := e.products[:0]
		for _, p := range e.products {
			if p.ID != id {
				out = append(out, p)
			}
		}
		e.products = out
		e.saveLocalLocked()
		e.mu.Unlock()
		return nil
	}

	if err := e.remote.DeleteProduct(ctx, id); err != nil {
		return err
	}
	return e.Refresh(ctx)
}

// ToggleProductBought flips the bought flag. The false-to-true transition
// stamps boughtAt and appends a purchase-log entry to the product's template;
// the reverse transition clears boughtAt. Re-asserting the current flag is a
// no-op, and an unknown id is ignored.
func (e *Engine) ToggleProductBought(ctx context.Context, id string, isBought bool) error {
	if _, ok := e.checkReady(); !ok {
		return errors.New(notReadyMessage)
	}

	boughtAt := e.now()

	if !e.isCloud() {
		e.mu.Lock()
		defer e.mu.Unlock()

		for i := range e.products {
			p := &e.products[i]
			if p.ID != id {
				continue
			}

			if isBought && !p.IsBought {
				at := boughtAt
				p.IsBought = true
				p.BoughtAt = &at
				e.templates = list.AppendTemplateLog(e.templates, p.Name, p.Supermarkets, boughtAt)
			} else if !isBought && p.IsBought {
				p.IsBought = false
				p.BoughtAt = nil
			}
			break
		}

		e.products = list.SortProducts(e.products)
		e.saveLocalLocked()
		return nil
	}

	e.mu.Lock()
	var target *list.Product
	for _, p := range e.products {
		if p.ID == id {
			copied := p
			target = &copied
			break
		}
	}
	e.mu.Unlock()

	// Re-asserting the current flag must not touch the remote row: a write
	// would re-stamp boughtAt and extend the retention window.
	if target == nil || target.IsBought == isBought {
		return nil
	}

	var at *time.Time
	if isBought {
		at = &boughtAt
	}
	if err := e.remote.SetProductBought(ctx, id, isBought, at); err != nil {
		return err
	}

	if isBought {
		e.appendTemplateLogCloud(ctx, target.Name, target.Supermarkets, boughtAt)
	}

	return e.Refresh(ctx)
}
