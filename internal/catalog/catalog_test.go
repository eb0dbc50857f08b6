package catalog

import (
	"strings"
	"testing"

	"emarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioBooks() []models.Book {
	return []models.Book{
		{ID: "A", Title: "Atlas", Author: "Ann Lee", Category: "Finance", Price: 100, MRP: 200},
		{ID: "B", Title: "Beacon", Author: "Bo Park", Category: "Fiction", Price: 50, MRP: 50},
	}
}

func TestFilterEmptyQueryAllReturnsEverythingInOrder(t *testing.T) {
	books := SeedBooks()
	assert.Equal(t, books, Filter(books, "", AllCategories))
}

func TestFilterScenario(t *testing.T) {
	books := scenarioBooks()

	got := Filter(books, "atl", AllCategories)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)

	assert.Equal(t, 50, BookDiscount(books[0]))
	assert.Equal(t, 0, BookDiscount(books[1]))
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	books := scenarioBooks()
	for _, q := range []string{"atl", "ATL", "aTl", "Atl"} {
		got := Filter(books, q, AllCategories)
		require.Len(t, got, 1, q)
		assert.Equal(t, "A", got[0].ID)
	}
}

func TestFilterMatchesAuthorAndCategory(t *testing.T) {
	books := scenarioBooks()

	got := Filter(books, "bo park", AllCategories)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].ID)

	got = Filter(books, "fin", AllCategories)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)
}

func TestFilterAndsCategory(t *testing.T) {
	books := SeedBooks()

	got := Filter(books, "", "Finance")
	require.Len(t, got, 2)
	for _, b := range got {
		assert.Equal(t, "Finance", b.Category)
	}

	assert.Empty(t, Filter(books, "habits", "Finance"))
	assert.Len(t, Filter(books, "habits", "Self-Help"), 1)
	assert.Empty(t, Filter(books, "", "finance"), "category match is exact")
}

func TestFilterResultSatisfiesBothPredicates(t *testing.T) {
	books := SeedBooks()
	for _, q := range []string{"", "a", "the", "MONEY", "zzz"} {
		for _, cat := range Categories(books) {
			for _, b := range Filter(books, q, cat) {
				l := strings.ToLower(q)
				assert.True(t,
					strings.Contains(strings.ToLower(b.Title), l) ||
						strings.Contains(strings.ToLower(b.Author), l) ||
						strings.Contains(strings.ToLower(b.Category), l))
				assert.True(t, cat == AllCategories || b.Category == cat)
			}
		}
	}
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"All", "Finance", "Self-Help", "Fiction", "Productivity"},
		Categories(SeedBooks()))
	assert.Equal(t, []string{"All"}, Categories(nil))
}

func TestDiscount(t *testing.T) {
	assert.Equal(t, 50, Discount(200, 100))
	assert.Equal(t, 0, Discount(50, 50))
	assert.Equal(t, 40, Discount(499, 299))
	assert.Equal(t, 0, Discount(0, 10))

	for _, b := range SeedBooks() {
		assert.GreaterOrEqual(t, BookDiscount(b), 0, b.Title)
	}
}

func TestEffectiveMRPWithoutMRP(t *testing.T) {
	b := models.Book{Price: 100}
	assert.Equal(t, 125.0, EffectiveMRP(b))
	assert.Equal(t, 20, BookDiscount(b))
}

func TestSelectByIDIgnoresDanglingIDs(t *testing.T) {
	books := scenarioBooks()
	got := SelectByID(books, models.NewIDSet("B", "gone", "A"))
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
}

func TestOwnedIDsAndFind(t *testing.T) {
	owned := OwnedIDs([]models.Purchase{{BookID: "A"}, {BookID: "A"}, {BookID: "gone"}})
	assert.Len(t, owned, 2)

	_, ok := Find(scenarioBooks(), "gone")
	assert.False(t, ok)
	b, ok := Find(scenarioBooks(), "B")
	assert.True(t, ok)
	assert.Equal(t, "Beacon", b.Title)
}

func TestAnalytics(t *testing.T) {
	books := scenarioBooks()
	purchases := []models.Purchase{
		{ID: "p1", BookID: "A"},
		{ID: "p2", BookID: "A"},
		{ID: "p3", BookID: "B"},
		{ID: "p4", BookID: "deleted"},
	}

	d := Analytics(books, purchases)
	assert.Equal(t, 250.0, d.TotalEarnings)
	assert.Equal(t, 3, d.TotalSales)
	assert.Equal(t, 2, d.TotalListings)
	require.Len(t, d.Listings, 2)
	assert.Equal(t, 2, d.Listings[0].Sold)
	assert.Equal(t, 200.0, d.Listings[0].Revenue)
	assert.Equal(t, 1, d.Listings[1].Sold)
}
