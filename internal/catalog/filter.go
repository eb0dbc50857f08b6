// Package catalog holds the pure views computed over the book collection:
// search filtering, category facets, pricing and seller analytics.
package catalog

import (
	"math"
	"strings"

	"emarket/internal/models"
)

// AllCategories is the category sentinel that matches every book
const AllCategories = "All"

// Filter returns the books matching query and category, in catalog order.
// query matches case-insensitively against title, author or category; an
// empty query matches everything.
func Filter(books []models.Book, query, category string) []models.Book {
	q := strings.ToLower(query)
	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		if !matchesQuery(b, q) {
			continue
		}
		if category != AllCategories && b.Category != category {
			continue
		}
		out = append(out, b)
	}
	return out
}

func matchesQuery(b models.Book, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), lowered) ||
		strings.Contains(strings.ToLower(b.Author), lowered) ||
		strings.Contains(strings.ToLower(b.Category), lowered)
}

// Categories returns "All" followed by the distinct categories in first-seen order
func Categories(books []models.Book) []string {
	seen := make(map[string]struct{}, len(books))
	out := []string{AllCategories}
	for _, b := range books {
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		out = append(out, b.Category)
	}
	return out
}

// SelectByID returns the books whose id is in ids, in catalog order. Ids
// without a matching book are ignored.
func SelectByID(books []models.Book, ids models.IDSet) []models.Book {
	out := make([]models.Book, 0, len(ids))
	for _, b := range books {
		if ids.Has(b.ID) {
			out = append(out, b)
		}
	}
	return out
}

// Find looks a book up by id
func Find(books []models.Book, id string) (models.Book, bool) {
	for _, b := range books {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}

// OwnedIDs returns the set of book ids referenced by purchases
func OwnedIDs(purchases []models.Purchase) models.IDSet {
	ids := models.NewIDSet()
	for _, p := range purchases {
		ids.Add(p.BookID)
	}
	return ids
}

// EffectiveMRP is the reference price shown for a book. Listings without an
// MRP display a quarter above the selling price.
func EffectiveMRP(b models.Book) float64 {
	if b.MRP > 0 {
		return b.MRP
	}
	return math.Floor(b.Price * 1.25)
}

// Discount returns round((mrp-price)/mrp*100). A non-positive mrp yields 0.
func Discount(mrp, price float64) int {
	if mrp <= 0 {
		return 0
	}
	return int(math.Round((mrp - price) / mrp * 100))
}

// BookDiscount applies Discount to a book's effective MRP
func BookDiscount(b models.Book) int {
	return Discount(EffectiveMRP(b), b.Price)
}
