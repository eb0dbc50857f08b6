package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"emarket/internal/catalog"
	"emarket/internal/models"
	"emarket/internal/store"
	"emarket/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultReviewer is the author recorded when an identity has no display name
const DefaultReviewer = "Reader"

// Storefront owns the shared catalog, purchase ledger and reviews, plus the
// wishlist and cart of every identity. Mutations are serialized and saved
// right after they are applied.
type Storefront struct {
	mu        sync.Mutex
	store     *store.Store
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time

	books     []models.Book
	purchases []models.Purchase
	reviews   []models.Review
	shelves   map[string]*shelf
	roles     map[string]string
}

// shelf is the wishlist and cart of one identity
type shelf struct {
	wishlist models.IDSet
	cart     models.IDSet
}

// Holdings is an identity's relation to the catalog
type Holdings struct {
	Wishlist models.IDSet
	Cart     models.IDSet
	Owned    models.IDSet
}

// NewStorefront loads the shared collections from st, falling back to the
// seed catalog and reviews when nothing usable is stored. Shelves are
// loaded on first use.
func NewStorefront(ctx context.Context, st *store.Store, publisher EventPublisher) *Storefront {
	ctx, span := util.StartSpan(ctx, "Storefront.Load")
	defer span.End()

	s := &Storefront{
		store:     st,
		publisher: publisher,
		logger:    util.GetLogger(),
		now:       time.Now,
		shelves:   make(map[string]*shelf),
		roles:     make(map[string]string),
	}

	s.books = store.Load(ctx, st, store.KeyBooks, catalog.SeedBooks())
	s.purchases = store.Load(ctx, st, store.KeyPurchases, []models.Purchase{})
	s.reviews = store.Load(ctx, st, store.KeyReviews, catalog.SeedReviews())

	s.logger.Info("Storefront loaded",
		zap.Int("books", len(s.books)),
		zap.Int("purchases", len(s.purchases)),
		zap.Int("reviews", len(s.reviews)))
	return s
}

func (s *Storefront) shelfLocked(ctx context.Context, identityID string) *shelf {
	if sh, ok := s.shelves[identityID]; ok {
		return sh
	}
	sh := &shelf{
		wishlist: store.Load(ctx, s.store, store.WishlistKey(identityID), models.NewIDSet()),
		cart:     store.Load(ctx, s.store, store.CartKey(identityID), models.NewIDSet()),
	}
	if sh.wishlist == nil {
		sh.wishlist = models.NewIDSet()
	}
	if sh.cart == nil {
		sh.cart = models.NewIDSet()
	}
	s.shelves[identityID] = sh
	return sh
}

// persist saves a collection. In-memory state stays authoritative when the
// write fails.
func (s *Storefront) persist(ctx context.Context, key string, value interface{}) {
	if err := s.store.Save(ctx, key, value); err != nil {
		s.logger.Warn("Failed to persist collection", zap.String("key", key), zap.Error(err))
	}
}

// Books returns the catalog in stored order
func (s *Storefront) Books() []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Book(nil), s.books...)
}

// Book looks a book up by id
func (s *Storefront) Book(id string) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := catalog.Find(s.books, id)
	if !ok {
		return models.Book{}, models.ErrBookNotFound
	}
	return b, nil
}

// Search filters the catalog by free-text query and category
func (s *Storefront) Search(query, category string) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Filter(s.books, query, category)
}

// Categories returns the category facet
func (s *Storefront) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Categories(s.books)
}

// Purchases returns the purchase ledger of every buyer in append order
func (s *Storefront) Purchases() []models.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Purchase(nil), s.purchases...)
}

// IsOwned reports whether buyerID holds a purchase of bookID
func (s *Storefront) IsOwned(buyerID, bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownedLocked(buyerID, bookID)
}

func (s *Storefront) ownedLocked(buyerID, bookID string) bool {
	if buyerID == "" {
		return false
	}
	for _, p := range s.purchases {
		if p.BuyerID == buyerID && p.BookID == bookID {
			return true
		}
	}
	return false
}

func (s *Storefront) ownedIDsLocked(buyerID string) models.IDSet {
	ids := models.NewIDSet()
	if buyerID == "" {
		return ids
	}
	for _, p := range s.purchases {
		if p.BuyerID == buyerID {
			ids.Add(p.BookID)
		}
	}
	return ids
}

// PurchasedBooks returns the books buyerID owns in catalog order
func (s *Storefront) PurchasedBooks(buyerID string) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.SelectByID(s.books, s.ownedIDsLocked(buyerID))
}

// WishlistBooks returns the books wishlisted by identityID in catalog order
func (s *Storefront) WishlistBooks(ctx context.Context, identityID string) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.SelectByID(s.books, s.shelfLocked(ctx, identityID).wishlist)
}

// CartBooks returns the books in the cart of identityID in catalog order
func (s *Storefront) CartBooks(ctx context.Context, identityID string) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.SelectByID(s.books, s.shelfLocked(ctx, identityID).cart)
}

// InWishlist reports wishlist membership
func (s *Storefront) InWishlist(ctx context.Context, identityID, bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shelfLocked(ctx, identityID).wishlist.Has(bookID)
}

// InCart reports cart membership
func (s *Storefront) InCart(ctx context.Context, identityID, bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shelfLocked(ctx, identityID).cart.Has(bookID)
}

// Holdings returns copies of the wishlist, cart and owned books of
// identityID
func (s *Storefront) Holdings(ctx context.Context, identityID string) Holdings {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := s.shelfLocked(ctx, identityID)
	return Holdings{
		Wishlist: sh.wishlist.Clone(),
		Cart:     sh.cart.Clone(),
		Owned:    s.ownedIDsLocked(identityID),
	}
}

// ToggleWishlist flips membership of bookID in the wishlist of identityID
// and reports whether it is now wishlisted. Ids are not checked against the
// catalog.
func (s *Storefront) ToggleWishlist(ctx context.Context, identityID, bookID string) bool {
	ctx, span := util.StartSpan(ctx, "Storefront.ToggleWishlist")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleWishlistLocked(ctx, identityID, bookID)
}

func (s *Storefront) toggleWishlistLocked(ctx context.Context, identityID, bookID string) bool {
	sh := s.shelfLocked(ctx, identityID)
	added := !sh.wishlist.Has(bookID)
	if added {
		sh.wishlist.Add(bookID)
		util.WishlistTogglesTotal.WithLabelValues("added").Inc()
	} else {
		sh.wishlist.Remove(bookID)
		util.WishlistTogglesTotal.WithLabelValues("removed").Inc()
	}
	s.persist(ctx, store.WishlistKey(identityID), sh.wishlist)
	return added
}

// AddToCart adds bookID to the cart of identityID and reports whether the
// cart changed
func (s *Storefront) AddToCart(ctx context.Context, identityID, bookID string) bool {
	ctx, span := util.StartSpan(ctx, "Storefront.AddToCart")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.shelfLocked(ctx, identityID)
	if sh.cart.Has(bookID) {
		util.CartOperationsTotal.WithLabelValues("already_present").Inc()
		return false
	}
	sh.cart.Add(bookID)
	util.CartOperationsTotal.WithLabelValues("added").Inc()
	s.persist(ctx, store.CartKey(identityID), sh.cart)
	return true
}

// RemoveFromCart removes bookID from the cart of identityID whether or not
// it is present
func (s *Storefront) RemoveFromCart(ctx context.Context, identityID, bookID string) {
	ctx, span := util.StartSpan(ctx, "Storefront.RemoveFromCart")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.shelfLocked(ctx, identityID)
	sh.cart.Remove(bookID)
	util.CartOperationsTotal.WithLabelValues("removed").Inc()
	s.persist(ctx, store.CartKey(identityID), sh.cart)
}

// RecordPurchase appends a purchase of bookID by buyerID and clears the
// book from that buyer's cart and wishlist.
func (s *Storefront) RecordPurchase(ctx context.Context, buyerID, bookID, proofRef, status string) (models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "Storefront.RecordPurchase")
	defer span.End()

	if strings.TrimSpace(buyerID) == "" {
		return models.Purchase{}, fmt.Errorf("failed to record purchase of %s: missing buyer", bookID)
	}
	if strings.TrimSpace(proofRef) == "" {
		return models.Purchase{}, models.ErrProofRequired
	}

	s.mu.Lock()
	book, ok := catalog.Find(s.books, bookID)
	if !ok {
		s.mu.Unlock()
		return models.Purchase{}, models.ErrBookNotFound
	}

	purchase := models.Purchase{
		ID:            uuid.New().String(),
		BookID:        bookID,
		BuyerID:       buyerID,
		Status:        status,
		ScreenshotURL: proofRef,
		Timestamp:     s.now().UnixMilli(),
	}
	s.purchases = append(s.purchases, purchase)
	s.persist(ctx, store.KeyPurchases, s.purchases)

	sh := s.shelfLocked(ctx, buyerID)
	sh.cart.Remove(bookID)
	s.persist(ctx, store.CartKey(buyerID), sh.cart)

	if sh.wishlist.Has(bookID) {
		s.toggleWishlistLocked(ctx, buyerID, bookID)
	}
	s.mu.Unlock()

	util.PurchasesConfirmedTotal.WithLabelValues(status).Inc()
	s.logger.Info("Purchase recorded",
		zap.String("purchase_id", purchase.ID),
		zap.String("book_id", bookID),
		zap.String("buyer_id", buyerID),
		zap.String("status", status))

	event := &models.PurchaseConfirmedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePurchaseConfirmed,
			Timestamp: s.now(),
		},
		PurchaseID:   purchase.ID,
		BookID:       bookID,
		Title:        book.Title,
		Category:     book.Category,
		Amount:       book.Price,
		Status:       status,
		SellerMobile: book.Seller.Mobile,
		BuyerID:      buyerID,
	}
	if err := s.publisher.PublishPurchaseConfirmed(ctx, event); err != nil {
		s.logger.Error("Failed to publish PurchaseConfirmed event", zap.Error(err))
	}

	return purchase, nil
}

// AddReview prepends a review of bookID. Rating must be 1..5 and the
// comment must not be blank.
func (s *Storefront) AddReview(ctx context.Context, bookID, author string, rating int, comment string) (models.Review, error) {
	ctx, span := util.StartSpan(ctx, "Storefront.AddReview")
	defer span.End()

	if rating < 1 || rating > 5 {
		util.ReviewsRejectedTotal.WithLabelValues("rating").Inc()
		return models.Review{}, models.NewValidationError("rating", "Please select a rating.")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		util.ReviewsRejectedTotal.WithLabelValues("comment").Inc()
		return models.Review{}, models.NewValidationError("comment", "Please write a comment.")
	}
	if strings.TrimSpace(author) == "" {
		author = DefaultReviewer
	}

	review := models.Review{
		ID:      uuid.New().String(),
		BookID:  bookID,
		User:    author,
		Rating:  rating,
		Comment: comment,
		Date:    s.now().UTC().Format("2006-01-02"),
	}

	s.mu.Lock()
	s.reviews = append([]models.Review{review}, s.reviews...)
	s.persist(ctx, store.KeyReviews, s.reviews)
	s.mu.Unlock()

	util.ReviewsPostedTotal.Inc()

	event := &models.ReviewPostedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReviewPosted,
			Timestamp: s.now(),
		},
		ReviewID: review.ID,
		BookID:   bookID,
		Rating:   rating,
	}
	if err := s.publisher.PublishReviewPosted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReviewPosted event", zap.Error(err))
	}

	return review, nil
}

// Reviews returns the reviews of bookID, newest first
func (s *Storefront) Reviews(bookID string) []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Review, 0)
	for _, r := range s.reviews {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	return out
}

// ListBook validates req and puts the new book at the front of the catalog
func (s *Storefront) ListBook(ctx context.Context, req *ListingRequest) (models.Book, error) {
	ctx, span := util.StartSpan(ctx, "Storefront.ListBook")
	defer span.End()

	if err := req.Validate(); err != nil {
		var field string
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			field = ve.Field
		}
		util.ListingsRejectedTotal.WithLabelValues(field).Inc()
		return models.Book{}, err
	}

	book := req.book(uuid.New().String())

	s.mu.Lock()
	s.books = append([]models.Book{book}, s.books...)
	s.persist(ctx, store.KeyBooks, s.books)
	s.mu.Unlock()

	util.BooksListedTotal.Inc()
	s.logger.Info("Book listed", zap.String("book_id", book.ID), zap.String("title", book.Title))

	event := &models.BookListedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBookListed,
			Timestamp: s.now(),
		},
		BookID:   book.ID,
		Title:    book.Title,
		Author:   book.Author,
		Category: book.Category,
		Price:    book.Price,
	}
	if err := s.publisher.PublishBookListed(ctx, event); err != nil {
		s.logger.Error("Failed to publish BookListed event", zap.Error(err))
	}

	return book, nil
}

// Dashboard summarises sales of the catalog
func (s *Storefront) Dashboard() catalog.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Analytics(s.books, s.purchases)
}

// Role returns the role chosen by identityID, if any
func (s *Storefront) Role(ctx context.Context, identityID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role, ok := s.roles[identityID]; ok {
		return role, true
	}
	role := store.Load(ctx, s.store, store.RoleKey(identityID), "")
	if !models.ValidRole(role) {
		return "", false
	}
	s.roles[identityID] = role
	return role, true
}

// SetRole records the role chosen by identityID
func (s *Storefront) SetRole(ctx context.Context, identityID, role string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("%w: %q", models.ErrInvalidRole, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[identityID] = role
	s.persist(ctx, store.RoleKey(identityID), role)
	s.logger.Info("Role selected", zap.String("identity_id", identityID), zap.String("role", role))
	return nil
}
