package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cestino/shopping-service/internal/list"
	"github.com/cestino/shopping-service/internal/telemetry"
)

// Refresh runs one full refetch-and-reconcile cycle against the remote store:
// fetch the three collections in parallel, purge expired bought products
// (remotely and from the fetched set), seed default supermarkets when the
// remote set is empty, create templates missing for current product names,
// then replace the in-memory collections with the reconciled result.
//
// Only one refresh runs at a time; an overlapping call is redundant and
// returns immediately.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.remote == nil {
		return fmt.Errorf("no remote store configured")
	}

	if !e.refreshing.CompareAndSwap(false, true) {
		telemetry.RecordRefresh("skipped")
		return nil
	}
	defer e.refreshing.Store(false)

	var (
		products  []list.Product
		markets   []string
		templates []list.ProductTemplate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = e.remote.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		markets, err = e.remote.ListSupermarkets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		templates, err = e.remote.ListTemplates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordRefresh("error")
		return err
	}

	now := e.now()
	if expired := list.ExpiredIDs(products, now); len(expired) > 0 {
		if err := e.remote.DeleteProducts(ctx, expired); err != nil {
			telemetry.RecordRefresh("error")
			return err
		}
		products = list.PruneExpired(products, now)
		telemetry.RecordExpired(len(expired))
	}

	if len(markets) == 0 {
		if err := e.remote.SeedSupermarkets(ctx, list.DefaultSupermarkets); err != nil {
			telemetry.RecordRefresh("error")
			return err
		}
		markets = append([]string(nil), list.DefaultSupermarkets...)
	}

	var missing []list.ProductTemplate
	for _, p := range products {
		if list.FindTemplateByName(templates, p.Name) != -1 {
			continue
		}
		if list.FindTemplateByName(missing, p.Name) != -1 {
			continue
		}
		missing = append(missing, list.ProductTemplate{
			ID:           list.NewID(),
			Name:         p.Name,
			Supermarkets: p.Supermarkets,
			PurchaseLog:  []time.Time{},
		})
	}
	if len(missing) > 0 {
		if err := e.remote.UpsertTemplates(ctx, missing); err != nil {
			telemetry.RecordRefresh("error")
			return err
		}
		// Re-fetch so server-assigned rows come back; keep the previous
		// set when the re-fetch fails.
		if refreshed, err := e.remote.ListTemplates(ctx); err == nil {
			templates = refreshed
		}
	}

	e.mu.Lock()
	e.products = list.SortProducts(products)
	e.supermarkets = markets
	e.templates = templates
	e.syncError = ""
	e.mu.Unlock()

	telemetry.RecordRefresh("ok")
	return nil
}

// subscribe starts the change-notification loop. Each notification enqueues a
// full refresh through the same single-writer surface as user operations.
func (e *Engine) subscribe(ctx context.Context) error {
	changes, err := e.remote.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for change := range changes {
			e.logger.Debug().Str("table", change.Table).Msg("Change notification received")
			if err := e.Refresh(ctx); err != nil {
				e.logger.Error().Err(err).Msg("Refresh after change notification failed")
			}
		}
		if ctx.Err() == nil {
			e.setSyncError("Realtime disconnected.")
		}
	}()

	return nil
}
