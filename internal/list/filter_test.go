package list

import "testing"

func sampleProducts() []Product {
	return []Product{
		{ID: "1", Name: "Bread", Supermarkets: []string{"Lidl"}, IsBought: true},
		{ID: "2", Name: "Milk", Supermarkets: []string{"Continente", "Lidl"}},
		{ID: "3", Name: "Almond milk", Supermarkets: []string{"Mercadona"}},
	}
}

func TestFilterStatus(t *testing.T) {
	products := sampleProducts()

	tests := []struct {
		name     string
		status   StatusFilter
		expected []string
	}{
		{"Active only", StatusActive, []string{"Milk", "Almond milk"}},
		{"Bought only", StatusBought, []string{"Bread"}},
		{"All, unbought first", StatusAll, []string{"Milk", "Almond milk", "Bread"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilter()
			f.Status = tt.status
			got := f.Apply(products)
			if len(got) != len(tt.expected) {
				t.Fatalf("Apply returned %d products, want %d", len(got), len(tt.expected))
			}
			for i, p := range got {
				if p.Name != tt.expected[i] {
					t.Errorf("Apply[%d] = %q, want %q", i, p.Name, tt.expected[i])
				}
			}
		})
	}
}

func TestFilterSearch(t *testing.T) {
	f := DefaultFilter()
	f.Search = "  MILK "

	got := f.Apply(sampleProducts())
	if len(got) != 2 {
		t.Fatalf("Apply returned %d products, want 2", len(got))
	}
	if got[0].Name != "Milk" || got[1].Name != "Almond milk" {
		t.Errorf("Apply = [%s, %s], want [Milk, Almond milk]", got[0].Name, got[1].Name)
	}
}

func TestFilterSupermarket(t *testing.T) {
	f := DefaultFilter()
	f.Supermarket = "Lidl"

	got := f.Apply(sampleProducts())
	if len(got) != 2 {
		t.Fatalf("Apply returned %d products, want 2", len(got))
	}
	// Unbought Milk sorts before bought Bread.
	if got[0].Name != "Milk" || got[1].Name != "Bread" {
		t.Errorf("Apply = [%s, %s], want [Milk, Bread]", got[0].Name, got[1].Name)
	}
}

func TestSortProductsStable(t *testing.T) {
	products := []Product{
		{ID: "1", Name: "a", IsBought: true},
		{ID: "2", Name: "b"},
		{ID: "3", Name: "c", IsBought: true},
		{ID: "4", Name: "d"},
	}

	got := SortProducts(products)
	wantOrder := []string{"b", "d", "a", "c"}
	for i, p := range got {
		if p.Name != wantOrder[i] {
			t.Errorf("SortProducts[%d] = %q, want %q", i, p.Name, wantOrder[i])
		}
	}

	// Input is not mutated.
	if products[0].Name != "a" {
		t.Error("SortProducts mutated its input")
	}
}
