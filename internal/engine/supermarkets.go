package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cestino/shopping-service/internal/list"
)

// AddSupermarket appends a new supermarket name. Names are unique under
// case-insensitive comparison.
func (e *Engine) AddSupermarket(ctx context.Context, name string) list.ActionResult {
	if r, ok := e.checkReady(); !ok {
		return r
	}

	normalizedName := list.SanitizeName(name)
	if normalizedName == "" {
		return list.Failure("Please enter a supermarket name.")
	}

	e.mu.Lock()
	duplicate := list.ContainsIgnoreCase(e.supermarkets, normalizedName)
	e.mu.Unlock()

	if duplicate {
		return list.Failure("That supermarket already exists.")
	}

	if !e.isCloud() {
		e.mu.Lock()
		e.supermarkets = append(e.supermarkets, normalizedName)
		e.saveLocalLocked()
		e.mu.Unlock()

		return list.Success("Supermarket added successfully.")
	}

	if err := e.remote.InsertSupermarket(ctx, normalizedName); err != nil {
		return list.Failure(err.Error())
	}
	if err := e.Refresh(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Refresh after add supermarket failed")
	}
	return list.Success("Supermarket added successfully.")
}

// EditSupermarket renames a supermarket and cascades the rename into every
// product's and template's market list. The active market filter follows the
// rename.
func (e *Engine) EditSupermarket(ctx context.Context, currentName, newName string) list.ActionResult {
	if r, ok := e.checkReady(); !ok {
		return r
	}

	normalizedNewName := list.SanitizeName(newName)

	e.mu.Lock()
	existingName := ""
	for _, m := range e.supermarkets {
		if list.EqualsIgnoreCase(m, currentName) {
			existingName = m
			break
		}
	}
	conflict := false
	for _, m := range e.supermarkets {
		if !list.EqualsIgnoreCase(m, existingName) && list.EqualsIgnoreCase(m, normalizedNewName) {
			conflict = true
			break
		}
	}
	e.mu.Unlock()

	if existingName == "" {
		return list.Failure("Supermarket not found.")
	}
	if normalizedNewName == "" {
		return list.Failure("Please enter a supermarket name.")
	}
	if conflict {
		return list.Failure("Another supermarket already has that name.")
	}

	if !e.isCloud() {
		e.mu.Lock()
		for i, m := range e.supermarkets {
			if list.EqualsIgnoreCase(m, existingName) {
				e.supermarkets[i] = normalizedNewName
			}
		}
		for i := range e.products {
			e.products[i].Supermarkets = list.RenameMarket(e.products[i].Supermarkets, existingName, normalizedNewName)
		}
		for i := range e.templates {
			e.templates[i].Supermarkets = list.RenameMarket(e.templates[i].Supermarkets, existingName, normalizedNewName)
		}
		if list.EqualsIgnoreCase(e.filter.Supermarket, existingName) {
			e.filter.Supermarket = normalizedNewName
		}
		e.saveLocalLocked()
		e.mu.Unlock()

		return list.Success("Supermarket updated.")
	}

	e.mu.Lock()
	impactedProducts := impactedProductIDs(e.products, existingName)
	renamedProductMarkets := make(map[string][]string, len(impactedProducts))
	for _, p := range e.products {
		if list.ContainsIgnoreCase(p.Supermarkets, existingName) {
			renamedProductMarkets[p.ID] = list.RenameMarket(p.Supermarkets, existingName, normalizedNewName)
		}
	}
	renamedTemplateMarkets := make(map[string][]string)
	for _, t := range e.templates {
		if list.ContainsIgnoreCase(t.Supermarkets, existingName) {
			renamedTemplateMarkets[t.ID] = list.RenameMarket(t.Supermarkets, existingName, normalizedNewName)
		}
	}
	e.mu.Unlock()

	if err := e.remote.RenameSupermarket(ctx, existingName, normalizedNewName); err != nil {
		return list.Failure(err.Error())
	}

	// The rename and the referencing-row updates are separate calls; a
	// concurrent writer can observe a brief window where both names exist.
	g, gctx := errgroup.WithContext(ctx)
	for id, markets := range renamedProductMarkets {
		id, markets := id, markets
		g.Go(func() error {
			return e.remote.SetProductMarkets(gctx, id, markets)
		})
	}
	for id, markets := range renamedTemplateMarkets {
		id, markets := id, markets
		g.Go(func() error {
			return e.remote.SetTemplateMarkets(gctx, id, markets)
		})
	}
	if err := g.Wait(); err != nil {
		return list.Failure(err.Error())
	}

	e.mu.Lock()
	if list.EqualsIgnoreCase(e.filter.Supermarket, existingName) {
		e.filter.Supermarket = normalizedNewName
	}
	e.mu.Unlock()

	if err := e.Refresh(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Refresh after edit supermarket failed")
	}
	return list.Success("Supermarket updated.")
}

// DeleteSupermarket removes a supermarket and strips it from every product
// and template. The active market filter falls back to "all" when it pointed
// at the deleted name. The success message reports how many products and
// templates were touched.
func (e *Engine) DeleteSupermarket(ctx context.Context, name string) list.ActionResult {
	if r, ok := e.checkReady(); !ok {
		return r
	}

	e.mu.Lock()
	existingName := ""
	for _, m := range e.supermarkets {
		if list.EqualsIgnoreCase(m, name) {
			existingName = m
			break
		}
	}
	impactedProducts := len(impactedProductIDs(e.products, existingName))
	impactedTemplates := 0
	for _, t := range e.templates {
		if list.ContainsIgnoreCase(t.Supermarkets, existingName) {
			impactedTemplates++
		}
	}
	e.mu.Unlock()

	if existingName == "" {
		return list.Failure("Supermarket not found.")
	}

	message := fmt.Sprintf("Removed %q. Updated %d product(s) and %d database item(s).",
		existingName, impactedProducts, impactedTemplates)

	if !e.isCloud() {
		e.mu.Lock()
		kept := e.supermarkets[:0]
		for _, m := range e.supermarkets {
			if !list.EqualsIgnoreCase(m, existingName) {
				kept = append(kept, m)
			}
		}
		e.supermarkets = kept
		for i := range e.products {
			e.products[i].Supermarkets = list.RemoveMarket(e.products[i].Supermarkets, existingName)
		}
		for i := range e.templates {
			e.templates[i].Supermarkets = list.RemoveMarket(e.templates[i].Supermarkets, existingName)
		}
		if list.EqualsIgnoreCase(e.filter.Supermarket, existingName) {
			e.filter.Supermarket = list.AllSupermarkets
		}
		e.saveLocalLocked()
		e.mu.Unlock()

		return list.Success(message)
	}

	e.mu.Lock()
	strippedProductMarkets := make(map[string][]string)
	for _, p := range e.products {
		if list.ContainsIgnoreCase(p.Supermarkets, existingName) {
			strippedProductMarkets[p.ID] = list.RemoveMarket(p.Supermarkets, existingName)
		}
	}
	strippedTemplateMarkets := make(map[string][]string)
	for _, t := range e.templates {
		if list.ContainsIgnoreCase(t.Supermarkets, existingName) {
			strippedTemplateMarkets[t.ID] = list.RemoveMarket(t.Supermarkets, existingName)
		}
	}
	e.mu.Unlock()

	if err := e.remote.DeleteSupermarket(ctx, existingName); err != nil {
		return list.Failure(err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	for id, markets := range strippedProductMarkets {
		id, markets := id, markets
		g.Go(func() error {
			return e.remote.SetProductMarkets(gctx, id, markets)
		})
	}
	for id, markets := range strippedTemplateMarkets {
		id, markets := id, markets
		g.Go(func() error {
			return e.remote.SetTemplateMarkets(gctx, id, markets)
		})
	}
	if err := g.Wait(); err != nil {
		return list.Failure(err.Error())
	}

	e.mu.Lock()
	if list.EqualsIgnoreCase(e.filter.Supermarket, existingName) {
		e.filter.Supermarket = list.AllSupermarkets
	}
	e.mu.Unlock()

	if err := e.Refresh(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Refresh after delete supermarket failed")
	}
	return list.Success(message)
}

func impactedProductIDs(products []list.Product, marketName string) []string {
	if marketName == "" {
		return nil
	}
	var ids []string
	for _, p := range products {
		if list.ContainsIgnoreCase(p.Supermarkets, marketName) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
