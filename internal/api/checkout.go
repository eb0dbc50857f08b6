package api

import (
	"fmt"
	"net/http"

	"emarket/internal/models"
	"emarket/internal/service"
	"emarket/internal/storage"

	"github.com/gin-gonic/gin"
)

type beginCheckoutRequest struct {
	BookID string `json:"bookId" binding:"required"`
}

type methodRequest struct {
	Method string `json:"method" binding:"required"`
}

type checkoutResponse struct {
	Checkout     service.Checkout            `json:"checkout"`
	Instructions service.PaymentInstructions `json:"paymentInstructions"`
}

func checkoutJSON(co service.Checkout) checkoutResponse {
	return checkoutResponse{Checkout: co, Instructions: co.Instructions()}
}

// beginCheckout opens the payment flow for a book
func (h *Handler) beginCheckout(c *gin.Context) {
	var req beginCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	co, err := currentSession(c).BeginCheckout(c.Request.Context(), req.BookID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkoutJSON(co))
}

// getCheckout returns the open checkout
func (h *Handler) getCheckout(c *gin.Context) {
	co, err := currentSession(c).Checkout()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutJSON(co))
}

// selectPaymentMethod switches between UPI and bank transfer
func (h *Handler) selectPaymentMethod(c *gin.Context) {
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	co, err := currentSession(c).SelectPaymentMethod(req.Method)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutJSON(co))
}

// markPaid moves the checkout to the proof upload step
func (h *Handler) markPaid(c *gin.Context) {
	co, err := currentSession(c).MarkPaid()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutJSON(co))
}

// uploadProof stores the payment screenshot and attaches it to the checkout.
// Nothing is stored unless the checkout is waiting for a proof.
func (h *Handler) uploadProof(c *gin.Context) {
	s := currentSession(c)
	co, err := s.Checkout()
	if err != nil {
		abortWithError(c, err)
		return
	}
	if co.State != service.StateProofUploaded {
		abortWithError(c, fmt.Errorf("%w: cannot attach proof in state %s", models.ErrInvalidTransition, co.State))
		return
	}

	ref, ok := h.storeUpload(c, storage.KindProof)
	if !ok {
		return
	}

	co, err = s.AttachProof(c.Request.Context(), ref)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutJSON(co))
}

// confirmCheckout records the purchase
func (h *Handler) confirmCheckout(c *gin.Context) {
	s := currentSession(c)
	purchase, err := s.ConfirmCheckout(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"purchase":     purchase,
		"notification": s.Notification(),
	})
}

// cancelCheckout abandons the open checkout and discards any uploaded proof
func (h *Handler) cancelCheckout(c *gin.Context) {
	if err := currentSession(c).CancelCheckout(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
