package engine

import (
	"context"
	"time"

	"github.com/cestino/shopping-service/internal/list"
)

// upsertTemplateMarketsCloud mirrors the local template upsert against the
// remote store. Failures are logged, not surfaced: a later refresh re-creates
// any template missing for a live product name.
func (e *Engine) upsertTemplateMarketsCloud(ctx context.Context, name string, markets []string) {
	e.mu.Lock()
	i := list.FindTemplateByName(e.templates, name)
	var existing list.ProductTemplate
	if i != -1 {
		existing = e.templates[i]
	}
	e.mu.Unlock()

	if i == -1 {
		err := e.remote.InsertTemplate(ctx, list.ProductTemplate{
			ID:           list.NewID(),
			Name:         name,
			Supermarkets: markets,
			PurchaseLog:  []time.Time{},
		})
		if err != nil {
			e.logger.Warn().Err(err).Str("name", name).Msg("Failed to create template")
		}
		return
	}

	if err := e.remote.UpdateTemplate(ctx, existing.ID, name, markets); err != nil {
		e.logger.Warn().Err(err).Str("name", name).Msg("Failed to update template")
	}
}

// appendTemplateLogCloud records a purchase on the remote template, creating
// it when absent. The remembered market set becomes the union of the current
// template markets and the product's markets.
func (e *Engine) appendTemplateLogCloud(ctx context.Context, name string, markets []string, boughtAt time.Time) {
	e.mu.Lock()
	i := list.FindTemplateByName(e.templates, name)
	var existing list.ProductTemplate
	if i != -1 {
		existing = e.templates[i]
	}
	e.mu.Unlock()

	if i == -1 {
		err := e.remote.InsertTemplate(ctx, list.ProductTemplate{
			ID:           list.NewID(),
			Name:         name,
			Supermarkets: markets,
			PurchaseLog:  []time.Time{boughtAt},
		})
		if err != nil {
			e.logger.Warn().Err(err).Str("name", name).Msg("Failed to create template with purchase log")
		}
		return
	}

	merged := list.NormalizeMarkets(append(append([]string(nil), existing.Supermarkets...), markets...))
	log := append(append([]time.Time(nil), existing.PurchaseLog...), boughtAt)

	if err := e.remote.AppendTemplateLog(ctx, existing.ID, merged, log); err != nil {
		e.logger.Warn().Err(err).Str("name", name).Msg("Failed to append template purchase log")
	}
}

// EditTemplate updates a template's name and market list directly. It never
// cascades into live products.
func (e *Engine) EditTemplate(ctx context.Context, id, name string, markets []string) list.ActionResult {
	if r, ok := e.checkReady(); !ok {
		return r
	}

	normalizedName, normalizedMarkets, fail := validateProductInput(name, markets)
	if fail != nil {
		return *fail
	}

	e.mu.Lock()
	exists := false
	conflict := false
	for _, t := range e.templates {
		if t.ID == id {
			exists = true
		} else if list.EqualsIgnoreCase(t.Name, normalizedName) {
			conflict = true
		}
	}
	e.mu.Unlock()

	if !exists {
		return list.Failure("Database item not found.")
	}
	if conflict {
		return list.Failure("Another database item already has that name.")
	}

	if !e.isCloud() {
		e.mu.Lock()
		for i := range e.templates {
			if e.templates[i].ID == id {
				e.templates[i].Name = normalizedName
				e.templates[i].Supermarkets = normalizedMarkets
				break
			}
		}
		e.saveLocalLocked()
		e.mu.Unlock()

		return list.Success("Database item updated.")
	}

	if err := e.remote.UpdateTemplate(ctx, id, normalizedName, normalizedMarkets); err != nil {
		return list.Failure(err.Error())
	}
	if err := e.Refresh(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Refresh after edit template failed")
	}
	return list.Success("Database item updated.")
}

// DeleteTemplate removes a template without touching live products; the
// template is lazily recreated the next time a matching product is added or
// bought.
func (e *Engine) DeleteTemplate(ctx context.Context, id string) list.ActionResult {
	if r, ok := e.checkReady(); !ok {
		return r
	}

	e.mu.Lock()
	exists := false
	for _, t := range e.templates {
		if t.ID == id {
			exists = true
			break
		}
	}
	e.mu.Unlock()

	if !exists {
		return list.Failure("Database item not found.")
	}

	if !e.isCloud() {
		e.mu.Lock()
		out := e.templates[:0]
		for _, t := range e.templates {
			if t.ID != id {
				out = append(out, t)
			}
		}
		e.templates = out
		e.saveLocalLocked()
		e.mu.Unlock()

		return list.Success("Database item deleted.")
	}

	if err := e.remote.DeleteTemplate(ctx, id); err != nil {
		return list.Failure(err.Error())
	}
	if err := e.Refresh(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Refresh after delete template failed")
	}
	return list.Success("Database item deleted.")
}
