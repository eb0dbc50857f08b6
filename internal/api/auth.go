package api

import (
	"context"
	"net/http"

	"emarket/internal/identity"
	"emarket/internal/models"
	"emarket/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
}

type providerRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type authResponse struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
	Role     string          `json:"role,omitempty"`
}

// signIn handles email/password sign-in
func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	h.completeAuth(c, "password", func(ctx context.Context) (models.Identity, error) {
		return h.provider.SignIn(ctx, identity.Credentials{Email: req.Email, Password: req.Password})
	})
}

// signUp handles account creation
func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	h.completeAuth(c, "signup", func(ctx context.Context) (models.Identity, error) {
		return h.provider.SignUp(ctx, identity.Credentials{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
		})
	})
}

// signInWithProvider handles federated sign-in with a provider id token
func (h *Handler) signInWithProvider(c *gin.Context) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	h.completeAuth(c, "provider", func(ctx context.Context) (models.Identity, error) {
		return h.provider.SignInWithProvider(ctx, req.IDToken)
	})
}

func (h *Handler) completeAuth(c *gin.Context, method string, authenticate func(context.Context) (models.Identity, error)) {
	ctx, span := util.StartSpan(c.Request.Context(), "Handler.Authenticate")
	defer span.End()

	id, err := authenticate(ctx)
	if err != nil {
		util.AuthAttemptsTotal.WithLabelValues(method, "rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": identity.UserMessage(err, "Authentication failed")})
		return
	}

	token, err := h.tokens.Issue(id)
	if err != nil {
		util.AuthAttemptsTotal.WithLabelValues(method, "error").Inc()
		h.logger.Error("Failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	util.AuthAttemptsTotal.WithLabelValues(method, "accepted").Inc()
	h.watcher.Publish(identity.Change{Identity: id, SignedIn: true})

	role, _ := h.storefront.Role(ctx, id.ID)
	c.JSON(http.StatusOK, authResponse{Token: token, Identity: id, Role: role})
}

// signOut ends the session and revokes its token
func (h *Handler) signOut(c *gin.Context) {
	id := currentIdentity(c)

	if err := h.provider.SignOut(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": identity.UserMessage(err, "Sign out failed")})
		return
	}
	if err := h.tokens.Revoke(c.GetString(ctxToken)); err != nil {
		h.logger.Warn("Failed to revoke session token", zap.Error(err))
	}
	h.watcher.Publish(identity.Change{Identity: id, SignedIn: false})

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
