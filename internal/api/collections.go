package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getWishlist returns the wishlisted books
func (h *Handler) getWishlist(c *gin.Context) {
	books := h.storefront.WishlistBooks(c.Request.Context(), currentIdentity(c).ID)
	c.JSON(http.StatusOK, gin.H{"books": h.views(c, books)})
}

// toggleWishlist flips a book in the wishlist
func (h *Handler) toggleWishlist(c *gin.Context) {
	s := currentSession(c)
	added := s.ToggleWishlist(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"inWishlist":   added,
		"notification": s.Notification(),
	})
}

// getCart returns the books in the cart
func (h *Handler) getCart(c *gin.Context) {
	books := h.storefront.CartBooks(c.Request.Context(), currentIdentity(c).ID)
	c.JSON(http.StatusOK, gin.H{"books": h.views(c, books)})
}

// addToCart adds a book to the cart. A book already there redirects the
// session to the cart view.
func (h *Handler) addToCart(c *gin.Context) {
	s := currentSession(c)
	added := s.AddToCart(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"added":        added,
		"view":         s.View(),
		"notification": s.Notification(),
	})
}

// removeFromCart removes a book from the cart
func (h *Handler) removeFromCart(c *gin.Context) {
	s := currentSession(c)
	s.RemoveFromCart(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"notification": s.Notification()})
}

// getLibrary returns the books the caller bought
func (h *Handler) getLibrary(c *gin.Context) {
	books := h.storefront.PurchasedBooks(currentIdentity(c).ID)
	c.JSON(http.StatusOK, gin.H{"books": h.views(c, books)})
}
