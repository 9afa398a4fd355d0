package domain

// AllLabel is the synthetic first filter chip on the public page.
const AllLabel = "All"

// FilterLabels merges the explicit category list with the categories present
// on products into the ordered filter row. "All" always leads, explicit
// names follow in fetch order, then product categories in product order.
// De-duplication is by exact string match, first occurrence wins.
func FilterLabels(categories []Category, products []Product) []string {
	labels := []string{AllLabel}
	seen := map[string]struct{}{AllLabel: {}}
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		labels = append(labels, name)
	}
	for _, c := range categories {
		add(c.Name)
	}
	for _, p := range products {
		add(p.Category)
	}
	return labels
}

// FilterProducts returns the products matching label, everything for "All"
// or an empty label.
func FilterProducts(products []Product, label string) []Product {
	if label == "" || label == AllLabel {
		return products
	}
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == label {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
