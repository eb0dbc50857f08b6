package catalog

import "emarket/internal/models"

var demoSeller = models.SellerInfo{
	Mobile:        "9876543210",
	UpiID:         "emarket@upi",
	AccountHolder: "eMarket Books",
	BankAccount:   "50100234567890",
	IFSC:          "HDFC0001234",
	IsKycVerified: true,
}

// SeedBooks is the catalog of a fresh storefront profile
func SeedBooks() []models.Book {
	return []models.Book{
		{
			ID:       "1",
			Title:    "The Psychology of Money",
			Author:   "Morgan Housel",
			Price:    299,
			MRP:      499,
			CoverURL: "https://images.unsplash.com/photo-1592496431122-2349e0fbc666?w=400",
			Synopsis: "Timeless lessons on wealth, greed, and happiness.",
			Category: "Finance",
			Rating:   4.7,
			PdfURL:   "seed/psychology-of-money.pdf",
			Seller:   demoSeller,
		},
		{
			ID:       "2",
			Title:    "Atomic Habits",
			Author:   "James Clear",
			Price:    349,
			MRP:      599,
			CoverURL: "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=400",
			Synopsis: "An easy and proven way to build good habits and break bad ones.",
			Category: "Self-Help",
			Rating:   4.8,
			PdfURL:   "seed/atomic-habits.pdf",
			Seller:   demoSeller,
		},
		{
			ID:       "3",
			Title:    "Project Hail Mary",
			Author:   "Andy Weir",
			Price:    399,
			MRP:      399,
			CoverURL: "https://images.unsplash.com/photo-1614544048536-0d28caf77f41?w=400",
			Synopsis: "A lone astronaut must save the earth from disaster.",
			Category: "Fiction",
			Rating:   4.6,
			PdfURL:   "seed/project-hail-mary.pdf",
			Seller:   demoSeller,
		},
		{
			ID:       "4",
			Title:    "Rich Dad Poor Dad",
			Author:   "Robert T. Kiyosaki",
			Price:    199,
			MRP:      350,
			CoverURL: "https://images.unsplash.com/photo-1589829085413-56de8ae18c73?w=400",
			Synopsis: "What the rich teach their kids about money that the poor and middle class do not.",
			Category: "Finance",
			Rating:   4.5,
			PdfURL:   "seed/rich-dad-poor-dad.pdf",
			Seller:   demoSeller,
		},
		{
			ID:       "5",
			Title:    "Deep Work",
			Author:   "Cal Newport",
			Price:    279,
			MRP:      450,
			CoverURL: "https://images.unsplash.com/photo-1512820790803-83ca734da794?w=400",
			Synopsis: "Rules for focused success in a distracted world.",
			Category: "Productivity",
			Rating:   4.4,
			PdfURL:   "seed/deep-work.pdf",
			Seller:   demoSeller,
		},
	}
}

// SeedReviews is the review ledger of a fresh storefront profile
func SeedReviews() []models.Review {
	return []models.Review{
		{ID: "r1", BookID: "1", User: "Aarav Sharma", Rating: 5, Comment: "Changed how I think about saving.", Date: "2024-03-12"},
		{ID: "r2", BookID: "2", User: "Priya Nair", Rating: 4, Comment: "Practical and easy to apply.", Date: "2024-02-28"},
	}
}
