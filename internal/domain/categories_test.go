package domain

import (
	"reflect"
	"testing"
)

func TestFilterLabelsMergesBothSources(t *testing.T) {
	categories := DecodeCategories([]any{"Burger", "Pizza"})
	products := []Product{{Name: "Tiramisu", Category: "Dessert"}}

	got := FilterLabels(categories, products)
	want := []string{"All", "Burger", "Pizza", "Dessert"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFilterLabelsEmpty(t *testing.T) {
	got := FilterLabels(nil, nil)
	if !reflect.DeepEqual(got, []string{"All"}) {
		t.Fatalf(`expected just "All", got %v`, got)
	}
}

func TestFilterLabelsDeduplicatesFirstOccurrenceWins(t *testing.T) {
	categories := []Category{{Name: "Pizza"}, {Name: "Pizza"}, {Name: "pizza"}}
	products := []Product{
		{Category: "Pizza"},
		{Category: "Dessert"},
		{Category: "Dessert"},
	}

	got := FilterLabels(categories, products)
	want := []string{"All", "Pizza", "pizza", "Dessert"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected case-sensitive de-dup %v, got %v", want, got)
	}
	seen := map[string]int{}
	for _, label := range got {
		seen[label]++
		if seen[label] > 1 {
			t.Fatalf("duplicate label %q in %v", label, got)
		}
	}
}

func TestFilterProducts(t *testing.T) {
	products := []Product{
		{Name: "Margherita", Category: "Pizza"},
		{Name: "Tiramisu", Category: "Dessert"},
	}

	if got := FilterProducts(products, "All"); len(got) != 2 {
		t.Fatalf(`"All" should pass everything, got %d`, len(got))
	}
	if got := FilterProducts(products, ""); len(got) != 2 {
		t.Fatalf("empty label should pass everything, got %d", len(got))
	}
	got := FilterProducts(products, "Pizza")
	if len(got) != 1 || got[0].Name != "Margherita" {
		t.Fatalf("category filter broken: %+v", got)
	}
}
