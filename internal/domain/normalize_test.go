package domain

import (
	"reflect"
	"testing"
)

func TestNormalizeKeyedMap(t *testing.T) {
	value := map[string]any{
		"-Nb1": map[string]any{"name": "Margherita", "price": 9.5},
		"-Na0": map[string]any{"name": "Diavola"},
	}

	records := Normalize(value)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "-Na0" || records[1].ID != "-Nb1" {
		t.Fatalf("expected sorted key order, got %q, %q", records[0].ID, records[1].ID)
	}
	if records[1].Fields["price"] != 9.5 {
		t.Fatalf("fields not carried through: %v", records[1].Fields)
	}
}

func TestNormalizeLegacyArrayOfStrings(t *testing.T) {
	records := Normalize([]any{"Burger", "Pizza", "Dessert"})
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"0", "1", "2"} {
		if records[i].ID != want {
			t.Fatalf("record %d: expected positional id %q, got %q", i, want, records[i].ID)
		}
	}
	if records[1].Fields["name"] != "Pizza" {
		t.Fatalf("expected name field, got %v", records[1].Fields)
	}
}

func TestNormalizeArrayOfObjects(t *testing.T) {
	records := Normalize([]any{
		map[string]any{"id": "c9", "name": "Drinks"},
		map[string]any{"name": "Sides"},
		map[string]any{"label": "nameless"},
	})
	if records[0].ID != "c9" {
		t.Fatalf("explicit id ignored: %q", records[0].ID)
	}
	if records[1].ID != "1" || records[1].Fields["name"] != "Sides" {
		t.Fatalf("positional fallback broken: %+v", records[1])
	}
	if records[2].Fields["name"] == "" {
		t.Fatalf("expected stringified fallback for nameless object")
	}
}

func TestNormalizeAbsentAndScalar(t *testing.T) {
	if got := Normalize(nil); len(got) != 0 {
		t.Fatalf("absent input should normalize to empty, got %v", got)
	}
	records := Normalize("Pizza")
	if len(records) != 1 || records[0].ID != "0" || records[0].Fields["name"] != "Pizza" {
		t.Fatalf("scalar fallback broken: %+v", records)
	}
	records = Normalize(42.0)
	if records[0].Fields["name"] != "42" {
		t.Fatalf("numeric scalar should stringify, got %v", records[0].Fields)
	}
}

func TestDecodeProducts(t *testing.T) {
	value := map[string]any{
		"p1": map[string]any{
			"name":        "  Margherita",
			"description": "Tomato, mozzarella",
			"category":    "Pizza",
			"price":       9.5,
			"tags":        []any{"popular"},
		},
	}

	products := DecodeProducts(value)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.ID != "p1" || p.Category != "Pizza" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if p.Price == nil || *p.Price != 9.5 {
		t.Fatalf("price not decoded: %+v", p.Price)
	}
	if !reflect.DeepEqual(p.Tags, []string{"popular"}) {
		t.Fatalf("tags not decoded: %v", p.Tags)
	}
}

func TestDecodeProductsCoercesStringPrice(t *testing.T) {
	products := DecodeProducts(map[string]any{
		"p1": map[string]any{"name": "Cola", "category": "Drinks", "price": "3.5"},
	})
	if products[0].Price == nil || *products[0].Price != 3.5 {
		t.Fatalf("string price not coerced: %+v", products[0].Price)
	}
}

func TestDecodeCategoriesBothShapes(t *testing.T) {
	fromMap := DecodeCategories(map[string]any{"c1": map[string]any{"name": "Pizza"}})
	if len(fromMap) != 1 || fromMap[0].ID != "c1" || fromMap[0].Name != "Pizza" {
		t.Fatalf("keyed map decode broken: %+v", fromMap)
	}

	fromArray := DecodeCategories([]any{"Burger", "Pizza"})
	if len(fromArray) != 2 || fromArray[0].ID != "0" || fromArray[1].Name != "Pizza" {
		t.Fatalf("legacy array decode broken: %+v", fromArray)
	}
}

func TestDecodeSettings(t *testing.T) {
	s := DecodeSettings(map[string]any{
		"title":              "Trattoria",
		"heroOverlayOpacity": "0.5",
		"showBadges":         true,
	})
	if s.Title != "Trattoria" || !s.ShowBadges {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.HeroOverlayOpacity != "0.5" {
		t.Fatalf("opacity should stay untyped: %v", s.HeroOverlayOpacity)
	}

	if got := DecodeSettings("not-a-map"); got != (SiteSettings{}) {
		t.Fatalf("non-map settings should decode empty, got %+v", got)
	}
}

func TestDecodeBackgroundsDisplayImagePrecedence(t *testing.T) {
	items := DecodeBackgrounds(map[string]any{
		"b1": map[string]any{"title": "Hero", "image": "https://x/pic.png", "imageBase64": "data:image/png;base64,aa"},
	})
	if items[0].DisplayImage() != "data:image/png;base64,aa" {
		t.Fatalf("inlined image should win: %q", items[0].DisplayImage())
	}
}
