// Package list holds the shopping-list domain model and the pure helpers
// the reconciliation engine is built from: name normalization, the bought
// retention policy, and the derived product view.
package list

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSupermarkets is seeded whenever no supermarket exists, locally or
// remotely.
var DefaultSupermarkets = []string{"Continente", "Pingo Doce", "Lidl", "Mercadona"}

// Product is a single shopping-list entry.
type Product struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Supermarkets []string   `json:"supermarkets"`
	IsBought     bool       `json:"isBought"`
	BoughtAt     *time.Time `json:"boughtAt"` // non-nil iff IsBought
}

// ProductTemplate is the remembered definition and purchase history for a
// product name, independent of any live product. Templates are matched by
// case-insensitive name, never by ID.
type ProductTemplate struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Supermarkets []string    `json:"supermarkets"`
	PurchaseLog  []time.Time `json:"purchaseLog"` // append-only, chronological
}

// State bundles the three collections the engine owns.
type State struct {
	Products     []Product
	Supermarkets []string
	Templates    []ProductTemplate
}

// ActionResult is the structured outcome of a mutation operation.
// Validation and transport failures are reported through it, never panicked.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Failure builds a failed result with the given message.
func Failure(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}

// Success builds a successful result with the given message.
func Success(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}

// NewID returns a collision-resistant identifier for a new entity.
func NewID() string {
	return uuid.New().String()
}

// CloneProducts returns a deep copy of the product slice.
func CloneProducts(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p
		out[i].Supermarkets = append([]string(nil), p.Supermarkets...)
		if p.BoughtAt != nil {
			at := *p.BoughtAt
			out[i].BoughtAt = &at
		}
	}
	return out
}

// CloneTemplates returns a deep copy of the template slice.
func CloneTemplates(templates []ProductTemplate) []ProductTemplate {
	out := make([]ProductTemplate, len(templates))
	for i, t := range templates {
		out[i] = t
		out[i].Supermarkets = append([]string(nil), t.Supermarkets...)
		out[i].PurchaseLog = append([]time.Time(nil), t.PurchaseLog...)
	}
	return out
}

// Clone returns a deep copy of the full state.
func (s State) Clone() State {
	return State{
		Products:     CloneProducts(s.Products),
		Supermarkets: append([]string(nil), s.Supermarkets...),
		Templates:    CloneTemplates(s.Templates),
	}
}
