// Package localfile persists the shopping-list state as three independently
// keyed JSON files under a base directory. Malformed or missing files are
// silently replaced by safe defaults, never surfaced as failures.
package localfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cestino/shopping-service/internal/list"
)

const (
	productsKey     = "products.json"
	supermarketsKey = "supermarkets.json"
	templatesKey    = "templates.json"
)

// Store implements store.Local on the local filesystem.
type Store struct {
	basePath string
}

// New creates a file store rooted at basePath, creating the directory if
// needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

// Load reads the three collections, sanitizing each entry and dropping
// anything unusable. A corrupt or missing file yields that collection's
// default.
func (s *Store) Load() (list.State, error) {
	var rawProducts []list.Product
	readJSON(s.keyToPath(productsKey), &rawProducts)

	products := make([]list.Product, 0, len(rawProducts))
	for _, p := range rawProducts {
		p.Name = list.SanitizeName(p.Name)
		p.Supermarkets = list.NormalizeMarkets(p.Supermarkets)
		if !p.IsBought {
			p.BoughtAt = nil
		}
		if p.ID == "" || p.Name == "" {
			continue
		}
		products = append(products, p)
	}

	var rawMarkets []string
	readJSON(s.keyToPath(supermarketsKey), &rawMarkets)

	markets := list.NormalizeMarkets(rawMarkets)
	if len(markets) == 0 {
		markets = append([]string(nil), list.DefaultSupermarkets...)
	}

	var rawTemplates []list.ProductTemplate
	readJSON(s.keyToPath(templatesKey), &rawTemplates)

	templates := make([]list.ProductTemplate, 0, len(rawTemplates))
	for _, t := range rawTemplates {
		t.Name = list.SanitizeName(t.Name)
		t.Supermarkets = list.NormalizeMarkets(t.Supermarkets)
		if t.ID == "" || t.Name == "" {
			continue
		}
		templates = append(templates, t)
	}

	return list.State{
		Products:     products,
		Supermarkets: markets,
		Templates:    templates,
	}, nil
}

// Save replaces all three files with the given snapshot.
func (s *Store) Save(state list.State) error {
	if err := writeJSON(s.keyToPath(productsKey), state.Products); err != nil {
		return err
	}
	if err := writeJSON(s.keyToPath(supermarketsKey), state.Supermarkets); err != nil {
		return err
	}
	return writeJSON(s.keyToPath(templatesKey), state.Templates)
}

// BasePath returns the directory the store writes into.
func (s *Store) BasePath() string {
	return s.basePath
}

func (s *Store) keyToPath(key string) string {
	return filepath.Join(s.basePath, key)
}

// readJSON decodes the file into v, leaving v untouched on any failure.
func readJSON(path string, v interface{}) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(content, v)
}

func writeJSON(path string, v interface{}) error {
	content, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
