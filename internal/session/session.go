// Package session keeps the ephemeral, per-identity state of a storefront
// visit: the notification slot, the debounced search, the current view and
// the open checkout.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"emarket/internal/catalog"
	"emarket/internal/models"
	"emarket/internal/notify"
	"emarket/internal/service"
	"emarket/internal/timer"
)

// SearchDebounce is the quiet period before a typed query takes effect
const SearchDebounce = 300 * time.Millisecond

// Notification texts
const (
	MsgWishlistAdded   = "Added to wishlist"
	MsgWishlistRemoved = "Removed from wishlist"
	MsgCartAdded       = "Added to cart successfully!"
	MsgCartRemoved     = "Removed from cart"
	MsgReviewPosted    = "Review posted successfully!"
	MsgBookListed      = "Your eBook has been listed for sale successfully!"
)

// Snapshot is the client-visible state of a session
type Snapshot struct {
	Identity     models.Identity              `json:"identity"`
	Role         string                       `json:"role,omitempty"`
	View         string                       `json:"view"`
	Query        string                       `json:"query"`
	Category     string                       `json:"category"`
	Notification models.Notification          `json:"notification"`
	Checkout     *service.Checkout            `json:"checkout,omitempty"`
	Instructions *service.PaymentInstructions `json:"paymentInstructions,omitempty"`
}

// Session is one signed-in identity's view of the storefront
type Session struct {
	mu         sync.Mutex
	identity   models.Identity
	view       string
	category   string
	search     *timer.Debouncer[string]
	notice     *notify.Channel
	checkout   *service.Checkout
	storefront *service.Storefront
	checkouts  *service.CheckoutService
}

func newSession(
	ctx context.Context,
	id models.Identity,
	storefront *service.Storefront,
	checkouts *service.CheckoutService,
	sched timer.Scheduler,
	dismissAfter time.Duration,
) *Session {
	s := &Session{
		identity:   id,
		view:       models.ViewStore,
		category:   catalog.AllCategories,
		search:     timer.NewDebouncer(sched, SearchDebounce, ""),
		notice:     notify.NewChannel(sched, dismissAfter),
		storefront: storefront,
		checkouts:  checkouts,
	}
	if role, ok := storefront.Role(ctx, id.ID); ok {
		s.view = homeView(role)
	}
	return s
}

func homeView(role string) string {
	if role == models.RoleSeller {
		return models.ViewDashboard
	}
	return models.ViewStore
}

// Identity returns the identity owning the session
func (s *Session) Identity() models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Role returns the identity's role, if one was chosen
func (s *Session) Role(ctx context.Context) (string, bool) {
	return s.storefront.Role(ctx, s.Identity().ID)
}

// Snapshot captures the session state
func (s *Session) Snapshot(ctx context.Context) Snapshot {
	role, _ := s.Role(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Identity:     s.identity,
		Role:         role,
		View:         s.view,
		Query:        s.search.Current(),
		Category:     s.category,
		Notification: s.notice.Current(),
	}
	if s.checkout != nil {
		co := *s.checkout
		in := co.Instructions()
		snap.Checkout = &co
		snap.Instructions = &in
	}
	return snap
}

// SetRole records the chosen role, moves to the role's home view and
// welcomes the user
func (s *Session) SetRole(ctx context.Context, role string) error {
	id := s.Identity()
	if err := s.storefront.SetRole(ctx, id.ID, role); err != nil {
		return err
	}

	name := id.DisplayName
	if name == "" {
		name = "User"
	}

	s.mu.Lock()
	s.view = homeView(role)
	s.mu.Unlock()

	s.notice.Success(fmt.Sprintf("Welcome, %s!", name))
	return nil
}

// View returns the current view
func (s *Session) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView moves to view
func (s *Session) SetView(view string) error {
	if !models.ValidView(view) {
		return models.NewValidationError("view", fmt.Sprintf("Unknown view %q.", view))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	return nil
}

// Search records a keystroke. The query takes effect after SearchDebounce
// of inactivity; the category applies at once.
func (s *Session) Search(query, category string) {
	s.search.Push(query)
	if category == "" {
		category = catalog.AllCategories
	}
	s.mu.Lock()
	s.category = category
	s.mu.Unlock()
}

// Results filters the catalog with the effective query and category
func (s *Session) Results() []models.Book {
	s.mu.Lock()
	category := s.category
	s.mu.Unlock()
	return s.storefront.Search(s.search.Current(), category)
}

// Notification returns the notification slot
func (s *Session) Notification() models.Notification {
	return s.notice.Current()
}

// DismissNotification hides the notification
func (s *Session) DismissNotification() {
	s.notice.Dismiss()
}

// ToggleWishlist flips bookID in the wishlist. Removal is silent on the
// wishlist and details views, where the change is already visible.
func (s *Session) ToggleWishlist(ctx context.Context, bookID string) bool {
	added := s.storefront.ToggleWishlist(ctx, s.Identity().ID, bookID)
	if added {
		s.notice.Success(MsgWishlistAdded)
		return true
	}

	view := s.View()
	if view != models.ViewWishlist && view != models.ViewDetails {
		s.notice.Success(MsgWishlistRemoved)
	}
	return false
}

// AddToCart adds bookID. A book already in the cart redirects the session
// to the cart view instead.
func (s *Session) AddToCart(ctx context.Context, bookID string) bool {
	if !s.storefront.AddToCart(ctx, s.Identity().ID, bookID) {
		s.mu.Lock()
		s.view = models.ViewCart
		s.mu.Unlock()
		return false
	}
	s.notice.Success(MsgCartAdded)
	return true
}

// RemoveFromCart removes bookID from the cart. Absent ids are announced
// all the same.
func (s *Session) RemoveFromCart(ctx context.Context, bookID string) {
	s.storefront.RemoveFromCart(ctx, s.Identity().ID, bookID)
	s.notice.Success(MsgCartRemoved)
}

// AddReview posts a review under the identity's display name. Only owners
// of the book may review it.
func (s *Session) AddReview(ctx context.Context, bookID string, rating int, comment string) (models.Review, error) {
	if _, err := s.storefront.Book(bookID); err != nil {
		return models.Review{}, err
	}
	id := s.Identity()
	if !s.storefront.IsOwned(id.ID, bookID) {
		return models.Review{}, models.ErrNotOwned
	}

	review, err := s.storefront.AddReview(ctx, bookID, id.DisplayName, rating, comment)
	if err != nil {
		return models.Review{}, err
	}
	s.notice.Success(MsgReviewPosted)
	return review, nil
}

// ListBook lists a new book and returns to the dashboard
func (s *Session) ListBook(ctx context.Context, req *service.ListingRequest) (models.Book, error) {
	book, err := s.storefront.ListBook(ctx, req)
	if err != nil {
		return models.Book{}, err
	}

	s.mu.Lock()
	s.view = models.ViewDashboard
	s.mu.Unlock()

	s.notice.Success(MsgBookListed)
	return book, nil
}

// BeginCheckout opens a checkout for bookID, replacing any open one. A
// checkout that is being confirmed cannot be replaced.
func (s *Session) BeginCheckout(ctx context.Context, bookID string) (service.Checkout, error) {
	co, err := s.checkouts.Begin(ctx, s.Identity().ID, bookID)
	if err != nil {
		return service.Checkout{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout != nil {
		if err := s.checkouts.Cancel(ctx, s.checkout); err != nil {
			return service.Checkout{}, err
		}
	}
	s.checkout = co
	return *co, nil
}

// Checkout returns the open checkout
func (s *Session) Checkout() (service.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout == nil {
		return service.Checkout{}, models.ErrNoCheckout
	}
	return *s.checkout, nil
}

// SelectPaymentMethod switches the payment method of the open checkout
func (s *Session) SelectPaymentMethod(method string) (service.Checkout, error) {
	return s.withCheckout(func(co *service.Checkout) error {
		return co.SelectMethod(method)
	})
}

// MarkPaid moves the open checkout to the proof upload step
func (s *Session) MarkPaid() (service.Checkout, error) {
	return s.withCheckout(func(co *service.Checkout) error {
		return co.MarkPaid()
	})
}

// AttachProof attaches the uploaded payment screenshot
func (s *Session) AttachProof(ctx context.Context, proofRef string) (service.Checkout, error) {
	return s.withCheckout(func(co *service.Checkout) error {
		return s.checkouts.AttachProof(ctx, co, proofRef)
	})
}

// ConfirmCheckout records the purchase, closes the checkout and announces
// the download. The checkout is claimed for the duration of verification so
// a concurrent confirm or cancel fails instead of racing it.
func (s *Session) ConfirmCheckout(ctx context.Context) (models.Purchase, error) {
	s.mu.Lock()
	co := s.checkout
	if co == nil {
		s.mu.Unlock()
		return models.Purchase{}, models.ErrNoCheckout
	}
	if err := co.StartConfirm(); err != nil {
		s.mu.Unlock()
		return models.Purchase{}, err
	}
	claimed := *co
	s.mu.Unlock()

	purchase, err := s.checkouts.Confirm(ctx, &claimed, s.Identity().ID)

	s.mu.Lock()
	if err != nil {
		co.Release()
		s.mu.Unlock()
		return models.Purchase{}, err
	}
	*co = claimed
	if s.checkout == co {
		s.checkout = nil
	}
	s.mu.Unlock()

	s.notice.Success(fmt.Sprintf("Payment successful! You can now download \"%s\".", co.Book.Title))
	return purchase, nil
}

// CancelCheckout discards the open checkout and its proof
func (s *Session) CancelCheckout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout == nil {
		return models.ErrNoCheckout
	}
	if err := s.checkouts.Cancel(ctx, s.checkout); err != nil {
		return err
	}
	s.checkout = nil
	return nil
}

func (s *Session) withCheckout(fn func(co *service.Checkout) error) (service.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout == nil {
		return service.Checkout{}, models.ErrNoCheckout
	}
	if err := fn(s.checkout); err != nil {
		return *s.checkout, err
	}
	return *s.checkout, nil
}

// Close stops the session's timers and drops any open checkout
func (s *Session) Close() {
	s.search.Stop()
	s.notice.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout != nil && s.checkout.State != service.StateConfirming {
		_ = s.checkouts.Cancel(context.Background(), s.checkout)
		s.checkout = nil
	}
}
