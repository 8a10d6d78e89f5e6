// Package engine owns the three shopping-list collections and applies every
// mutation. It arbitrates between a local file store and a remote backend:
// when a remote store is configured and reachable at startup the engine runs
// in cloud mode, writing through to the backend and resynchronizing with full
// refetches; otherwise it falls back to local mode for the session.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cestino/shopping-service/internal/list"
	"github.com/cestino/shopping-service/internal/store"
	"github.com/cestino/shopping-service/internal/telemetry"
)

// Mode says which persistence path is authoritative.
type Mode string

const (
	ModeCloud Mode = "cloud"
	ModeLocal Mode = "local"
)

const notReadyMessage = "Shopping list is still loading."

// Engine is the reconciliation core. All exported methods are safe for
// concurrent use; state is guarded by a single mutex so mutations interleave
// at single-writer granularity.
type Engine struct {
	local  store.Local
	remote store.Remote // nil when no backend is configured
	logger *zerolog.Logger
	now    func() time.Time

	mu           sync.Mutex
	products     []list.Product
	supermarkets []string
	templates    []list.ProductTemplate
	filter       list.Filter
	mode         Mode
	syncError    string
	ready        bool

	// refreshing enforces the single-flight full refresh.
	refreshing atomic.Bool
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the given stores. remote may be nil, in which
// case the engine only ever runs in local mode.
func New(local store.Local, remote store.Remote, logger *zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		local:        local,
		remote:       remote,
		logger:       logger,
		now:          time.Now,
		supermarkets: append([]string(nil), list.DefaultSupermarkets...),
		filter:       list.DefaultFilter(),
		mode:         ModeLocal,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init runs the startup protocol: one full remote refresh when a backend is
// configured, falling back to local mode on any failure and recording the
// reason. No operation is valid until Init returns.
func (e *Engine) Init(ctx context.Context) error {
	if e.remote != nil {
		err := e.Refresh(ctx)
		if err == nil {
			e.mu.Lock()
			e.mode = ModeCloud
			e.syncError = ""
			e.ready = true
			e.mu.Unlock()

			telemetry.SetCloudMode(true)
			e.logger.Info().Msg("Engine initialized in cloud mode")

			if err := e.subscribe(ctx); err != nil {
				e.logger.Warn().Err(err).Msg("Change subscription unavailable")
				e.setSyncError("Realtime disconnected.")
			}
			return nil
		}

		e.mu.Lock()
		e.mode = ModeLocal
		e.syncError = "Cloud sync unavailable: " + err.Error()
		e.mu.Unlock()

		telemetry.RecordFallback()
		telemetry.SetCloudMode(false)
		e.logger.Warn().Err(err).Msg("Cloud refresh failed, falling back to local mode")
	}

	e.hydrateLocal()

	e.mu.Lock()
	e.ready = true
	e.mu.Unlock()

	telemetry.SetCloudMode(false)
	e.logger.Info().Msg("Engine initialized in local mode")
	return nil
}

// hydrateLocal loads the persisted local state, prunes already-expired bought
// products and re-derives a template for every loaded product name.
func (e *Engine) hydrateLocal() {
	state, err := e.local.Load()
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to load local state, starting empty")
		state = list.State{Supermarkets: append([]string(nil), list.DefaultSupermarkets...)}
	}

	products := list.PruneExpired(state.Products, e.now())

	templates := state.Templates
	for _, p := range products {
		templates = list.UpsertTemplateMarkets(templates, p.Name, p.Supermarkets)
	}

	markets := state.Supermarkets
	if len(markets) == 0 {
		markets = append([]string(nil), list.DefaultSupermarkets...)
	}

	e.mu.Lock()
	e.products = list.SortProducts(products)
	e.supermarkets = markets
	e.templates = templates
	e.mu.Unlock()
}

// Snapshot is a read-only copy of the observable engine state.
type Snapshot struct {
	Products         []list.Product         `json:"products"`
	Supermarkets     []string               `json:"supermarkets"`
	Templates        []list.ProductTemplate `json:"templates"`
	FilteredProducts []list.Product         `json:"filteredProducts"`
	Filter           list.Filter            `json:"filter"`
	SyncMode         Mode                   `json:"syncMode"`
	SyncError        string                 `json:"syncError"`
	Ready            bool                   `json:"ready"`
}

// Snapshot returns a copy of everything a consumer may render. The caller
// never receives a mutable handle on engine-owned collections.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Products:         list.CloneProducts(e.products),
		Supermarkets:     append([]string(nil), e.supermarkets...),
		Templates:        list.CloneTemplates(e.templates),
		FilteredProducts: e.filter.Apply(e.products),
		Filter:           e.filter,
		SyncMode:         e.mode,
		SyncError:        e.syncError,
		Ready:            e.ready,
	}
}

// FilteredProducts derives the visible product list for the current filter.
func (e *Engine) FilteredProducts() []list.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Apply(e.products)
}

// SetSearch updates the free-text search term.
func (e *Engine) SetSearch(term string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter.Search = term
}

// SetSupermarketFilter selects a supermarket name, or "all".
func (e *Engine) SetSupermarketFilter(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter.Supermarket = name
}

// SetStatusFilter selects the bought-status filter.
func (e *Engine) SetStatusFilter(status list.StatusFilter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter.Status = status
}

// Mode returns the current sync mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Ready reports whether initialization has completed.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// SyncError returns the current sync error message, empty when healthy.
func (e *Engine) SyncError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncError
}

func (e *Engine) setSyncError(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncError = message
}

// isCloud reports whether cloud writes are in effect.
func (e *Engine) isCloud() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode == ModeCloud && e.remote != nil
}

// checkReady guards mutation operations against use before Init completes.
func (e *Engine) checkReady() (list.ActionResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return list.Failure(notReadyMessage), false
	}
	return list.ActionResult{}, true
}

// saveLocalLocked persists the current collections through the local store.
// Callers must hold e.mu. Persistence failures are logged, never surfaced:
// the in-memory state stays authoritative for the session.
func (e *Engine) saveLocalLocked() {
	if e.local == nil {
		return
	}
	state := list.State{
		Products:     e.products,
		Supermarkets: e.supermarkets,
		Templates:    e.templates,
	}.Clone()

	if err := e.local.Save(state); err != nil {
		e.logger.Error().Err(err).Msg("Failed to persist local state")
	}
}
