package models

import "time"

// Event types
const (
	EventTypeBookListed        = "BOOK_LISTED"
	EventTypePurchaseConfirmed = "PURCHASE_CONFIRMED"
	EventTypeReviewPosted      = "REVIEW_POSTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// BookListedEvent published when a seller lists a book
type BookListedEvent struct {
	BaseEvent
	BookID   string  `json:"book_id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// PurchaseConfirmedEvent published when a checkout is confirmed
type PurchaseConfirmedEvent struct {
	BaseEvent
	PurchaseID   string  `json:"purchase_id"`
	BookID       string  `json:"book_id"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	SellerMobile string  `json:"seller_mobile"`
	BuyerID      string  `json:"buyer_id"`
}

// ReviewPostedEvent published when a review is added
type ReviewPostedEvent struct {
	BaseEvent
	ReviewID string `json:"review_id"`
	BookID   string `json:"book_id"`
	Rating   int    `json:"rating"`
}
