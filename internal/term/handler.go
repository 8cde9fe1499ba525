package term

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// CreateTerm - POST /admin/terms
func (h *Handler) CreateTerm(c *gin.Context) {
	var req CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	t, err := h.Service.CreateTerm(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// ListTerms - GET /admin/terms
func (h *Handler) ListTerms(c *gin.Context) {
	terms, err := h.Service.ListTerms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list terms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terms": terms})
}

// GetTermForDate - GET /admin/terms/for-date?date=2026-02-02
func (h *Handler) GetTermForDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date. Use YYYY-MM-DD"})
		return
	}

	t, err := h.Service.TermFor(c.Request.Context(), date)
	if errors.Is(err, ErrNoTerm) {
		// Fall back to the next term for mid-holiday dates.
		t, err = h.Service.NextTermAfter(c.Request.Context(), date)
		if errors.Is(err, ErrNoTerm) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no term contains or follows this date"})
			return
		}
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "term lookup failed"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTerm - DELETE /admin/terms/:id
func (h *Handler) DeleteTerm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid term id"})
		return
	}
	if err := h.Service.DeleteTerm(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete term"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "term deleted"})
}

// CreateClosure - POST /admin/closures
func (h *Handler) CreateClosure(c *gin.Context) {
	var req CreateClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	closure, err := h.Service.CreateClosure(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, closure)
}

// ListClosures - GET /admin/closures?from=...&to=...
func (h *Handler) ListClosures(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.DefaultQuery("from", "2000-01-01"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := time.Parse("2006-01-02", c.DefaultQuery("to", "2100-01-01"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}

	closures, err := h.Service.ListClosures(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list closures"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closures": closures})
}

// DeleteClosure - DELETE /admin/closures/:id
func (h *Handler) DeleteClosure(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid closure id"})
		return
	}
	if err := h.Service.DeleteClosure(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "closure not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete closure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "closure deleted"})
}
