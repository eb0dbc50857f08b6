package catalog

import "emarket/internal/models"

// BookSales is the sales line of one listing
type BookSales struct {
	Book    models.Book `json:"book"`
	Sold    int         `json:"sold"`
	Revenue float64     `json:"revenue"`
}

// Dashboard summarises seller sales
type Dashboard struct {
	TotalEarnings float64     `json:"totalEarnings"`
	TotalSales    int         `json:"totalSales"`
	TotalListings int         `json:"totalListings"`
	Listings      []BookSales `json:"listings"`
}

// Analytics computes the seller dashboard. Purchases of books that are no
// longer in the catalog are not counted.
func Analytics(books []models.Book, purchases []models.Purchase) Dashboard {
	byID := make(map[string]models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	sold := make(map[string]int, len(books))
	d := Dashboard{TotalListings: len(books)}
	for _, p := range purchases {
		b, ok := byID[p.BookID]
		if !ok {
			continue
		}
		sold[p.BookID]++
		d.TotalSales++
		d.TotalEarnings += b.Price
	}

	d.Listings = make([]BookSales, 0, len(books))
	for _, b := range books {
		n := sold[b.ID]
		d.Listings = append(d.Listings, BookSales{
			Book:    b,
			Sold:    n,
			Revenue: float64(n) * b.Price,
		})
	}
	return d
}
