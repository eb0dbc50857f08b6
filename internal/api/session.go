package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

type viewRequest struct {
	View string `json:"view" binding:"required"`
}

type searchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

// getSession returns the session snapshot
func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Snapshot(c.Request.Context()))
}

// setRole records the role chosen by the signed-in identity
func (h *Handler) setRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	s := currentSession(c)
	if err := s.SetRole(c.Request.Context(), req.Role); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot(c.Request.Context()))
}

// setView moves the session to another view
func (h *Handler) setView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	s := currentSession(c)
	if err := s.SetView(req.View); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": s.View()})
}

// setSearch records a search keystroke; the query applies after the
// debounce period
func (h *Handler) setSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	currentSession(c).Search(req.Query, req.Category)
	c.Status(http.StatusAccepted)
}

// getNotification returns the notification slot
func (h *Handler) getNotification(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Notification())
}

// dismissNotification hides the notification
func (h *Handler) dismissNotification(c *gin.Context) {
	currentSession(c).DismissNotification()
	c.Status(http.StatusNoContent)
}
