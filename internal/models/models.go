package models

import (
	"encoding/json"
	"sort"
)

// SellerInfo carries the seller's contact and payout details for a listing
type SellerInfo struct {
	Mobile        string `json:"mobile"`
	UpiID         string `json:"upiId,omitempty"`
	QRCodeURL     string `json:"qrCodeUrl,omitempty"`
	BankAccount   string `json:"bankAccount,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	AccountHolder string `json:"accountHolder,omitempty"`
	IsKycVerified bool   `json:"isKycVerified,omitempty"`
}

// Book represents a listing in the catalog
type Book struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Author   string     `json:"author"`
	Price    float64    `json:"price"`
	MRP      float64    `json:"mrp"`
	CoverURL string     `json:"coverUrl"`
	Synopsis string     `json:"synopsis"`
	Category string     `json:"category"`
	Rating   float64    `json:"rating"`
	PdfURL   string     `json:"pdfUrl"`
	Seller   SellerInfo `json:"seller"`
}

// Purchase is a buyer's claim to own a book. BookID is a weak reference.
// Only the identity named by BuyerID owns the book.
type Purchase struct {
	ID            string `json:"id"`
	BookID        string `json:"bookId"`
	BuyerID       string `json:"buyerId"`
	Status        string `json:"status"`
	ScreenshotURL string `json:"screenshotUrl"`
	Timestamp     int64  `json:"timestamp"`
}

// Review is reader feedback on a book
type Review struct {
	ID      string `json:"id"`
	BookID  string `json:"bookId"`
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

// Purchase statuses
const (
	PurchaseStatusPending  = "pending"
	PurchaseStatusApproved = "approved"
)

// Roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// ValidRole reports whether r is a selectable role
func ValidRole(r string) bool {
	return r == RoleBuyer || r == RoleSeller
}

// Views a session can be on. Only wishlist, details and cart change
// storefront behaviour; the rest are carried for clients.
const (
	ViewStore     = "store"
	ViewLibrary   = "library"
	ViewDetails   = "details"
	ViewWishlist  = "wishlist"
	ViewSell      = "sell"
	ViewCart      = "cart"
	ViewDashboard = "dashboard"
)

// ValidView reports whether v names a known view
func ValidView(v string) bool {
	switch v {
	case ViewStore, ViewLibrary, ViewDetails, ViewWishlist, ViewSell, ViewCart, ViewDashboard:
		return true
	}
	return false
}

// Notification severities
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Notification is the single user-facing message slot
type Notification struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsVisible bool   `json:"isVisible"`
}

// Identity is the authenticated user as reported by the identity provider
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// IDSet is a set of book identifiers. It is stored as a JSON array.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Remove deletes id; absent ids are ignored
func (s IDSet) Remove(id string) {
	delete(s, id)
}

// Slice returns the members sorted
func (s IDSet) Slice() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// MarshalJSON encodes the set as an array
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array into the set
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
