package domain

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Normalize converts whatever shape a collection path holds into an ordered
// record list. Three shapes occur in practice: a keyed map of field records
// (the usual case), a legacy array of names or partial objects (old category
// storage), and the odd bare scalar. Anything unrecognized degrades to a
// best-effort stringified name. Absent input yields an empty list; Normalize
// never fails.
func Normalize(value any) []Record {
	switch v := value.(type) {
	case nil:
		return []Record{}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		records := make([]Record, 0, len(keys))
		for _, k := range keys {
			records = append(records, Record{ID: k, Fields: recordFields(v[k])})
		}
		return records
	case []any:
		records := make([]Record, 0, len(v))
		for i, elem := range v {
			records = append(records, sequenceRecord(i, elem))
		}
		return records
	default:
		return []Record{{ID: "0", Fields: map[string]any{"name": cast.ToString(v)}}}
	}
}

func recordFields(value any) map[string]any {
	if fields, ok := value.(map[string]any); ok {
		return fields
	}
	return map[string]any{"name": cast.ToString(value)}
}

// sequenceRecord handles one legacy array element: strings become the name
// under a positional identifier, objects keep their own id and name fields
// when present.
func sequenceRecord(index int, elem any) Record {
	id := strconv.Itoa(index)
	switch v := elem.(type) {
	case string:
		return Record{ID: id, Fields: map[string]any{"name": v}}
	case map[string]any:
		if explicit, ok := v["id"].(string); ok && explicit != "" {
			id = explicit
		}
		if _, ok := v["name"]; !ok {
			return Record{ID: id, Fields: map[string]any{"name": fmt.Sprintf("%v", v)}}
		}
		return Record{ID: id, Fields: v}
	default:
		return Record{ID: id, Fields: map[string]any{"name": cast.ToString(v)}}
	}
}

func decodeInto(fields map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(fields)
}

// DecodeProducts normalizes the products path into typed products. Records
// whose fields resist decoding are kept with whatever decoded cleanly.
func DecodeProducts(value any) []Product {
	records := Normalize(value)
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		p := Product{ID: rec.ID}
		_ = decodeInto(rec.Fields, &p)
		products = append(products, p)
	}
	return products
}

// DecodeCategories normalizes the categories path, covering both the keyed
// map and the legacy array form.
func DecodeCategories(value any) []Category {
	records := Normalize(value)
	categories := make([]Category, 0, len(records))
	for _, rec := range records {
		c := Category{ID: rec.ID}
		_ = decodeInto(rec.Fields, &c)
		categories = append(categories, c)
	}
	return categories
}

// DecodeGallery normalizes the gallery path into typed items.
func DecodeGallery(value any) []GalleryItem {
	records := Normalize(value)
	items := make([]GalleryItem, 0, len(records))
	for _, rec := range records {
		item := GalleryItem{ID: rec.ID}
		_ = decodeInto(rec.Fields, &item)
		items = append(items, item)
	}
	return items
}

// DecodeBackgrounds normalizes the background path into typed items.
func DecodeBackgrounds(value any) []BackgroundItem {
	records := Normalize(value)
	items := make([]BackgroundItem, 0, len(records))
	for _, rec := range records {
		item := BackgroundItem{ID: rec.ID}
		_ = decodeInto(rec.Fields, &item)
		items = append(items, item)
	}
	return items
}

// DecodeSettings decodes the siteSettings singleton. A non-map value, which
// a mistyped write could leave behind, yields empty settings.
func DecodeSettings(value any) SiteSettings {
	fields, ok := value.(map[string]any)
	if !ok {
		return SiteSettings{}
	}
	var s SiteSettings
	_ = decodeInto(fields, &s)
	return s
}
