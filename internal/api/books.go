package api

import (
	"net/http"

	"emarket/internal/catalog"
	"emarket/internal/models"
	"emarket/internal/service"

	"github.com/gin-gonic/gin"
)

// bookView is a catalog entry as a buyer sees it
type bookView struct {
	models.Book
	DisplayMRP float64 `json:"displayMrp"`
	Discount   int     `json:"discount"`
	InWishlist bool    `json:"inWishlist"`
	InCart     bool    `json:"inCart"`
	Owned      bool    `json:"owned"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// views decorates books with the caller's wishlist, cart and ownership
func (h *Handler) views(c *gin.Context, books []models.Book) []bookView {
	held := h.storefront.Holdings(c.Request.Context(), currentIdentity(c).ID)
	out := make([]bookView, 0, len(books))
	for _, b := range books {
		out = append(out, bookView{
			Book:       b,
			DisplayMRP: catalog.EffectiveMRP(b),
			Discount:   catalog.BookDiscount(b),
			InWishlist: held.Wishlist.Has(b.ID),
			InCart:     held.Cart.Has(b.ID),
			Owned:      held.Owned.Has(b.ID),
		})
	}
	return out
}

// listBooks filters the catalog. Without explicit q or category parameters
// the session's debounced search applies.
func (h *Handler) listBooks(c *gin.Context) {
	q, hasQuery := c.GetQuery("q")
	category, hasCategory := c.GetQuery("category")

	var books []models.Book
	if hasQuery || hasCategory {
		if category == "" {
			category = catalog.AllCategories
		}
		books = h.storefront.Search(q, category)
	} else {
		books = currentSession(c).Results()
	}

	c.JSON(http.StatusOK, gin.H{"books": h.views(c, books)})
}

// listCategories returns the category facet
func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.storefront.Categories()})
}

// getBook returns a book with its reviews
func (h *Handler) getBook(c *gin.Context) {
	book, err := h.storefront.Book(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"book":    h.views(c, []models.Book{book})[0],
		"reviews": h.storefront.Reviews(book.ID),
	})
}

// listBook publishes a seller's new listing
func (h *Handler) listBook(c *gin.Context) {
	var req service.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	book, err := currentSession(c).ListBook(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// previewBook returns the generated marketing hook
func (h *Handler) previewBook(c *gin.Context) {
	text, err := h.reading.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hook": text})
}

// readBook returns the opening chapter of an owned book
func (h *Handler) readBook(c *gin.Context) {
	text, err := h.reading.Chapter(c.Request.Context(), currentIdentity(c).ID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapter": text})
}

// downloadBook returns the eBook link of an owned book
func (h *Handler) downloadBook(c *gin.Context) {
	link, err := h.reading.DownloadURL(c.Request.Context(), currentIdentity(c).ID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

// listReviews returns the reviews of a book, newest first
func (h *Handler) listReviews(c *gin.Context) {
	book, err := h.storefront.Book(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": h.storefront.Reviews(book.ID)})
}

// addReview posts a review of an owned book
func (h *Handler) addReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	review, err := currentSession(c).AddReview(c.Request.Context(), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// getDashboard returns the seller's sales analytics
func (h *Handler) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.storefront.Dashboard())
}
