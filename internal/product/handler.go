package product

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{Repo: repo}
}

// CreateProduct - POST /admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	window := SessionWindow(req.SessionWindow)
	switch window {
	case "":
		window = WindowStandard
	case WindowStandard, WindowFullDay:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_window. Must be 'standard' or 'full_day'"})
		return
	}

	switch req.ProductType {
	case TypeCamp, TypeWeekly, TypeParty:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_type. Must be 'camp', 'weekly' or 'party'"})
		return
	}

	capacity := req.DefaultCapacity
	if capacity <= 0 {
		capacity = 20
	}

	p := &Product{
		Name:            req.Name,
		ProductType:     req.ProductType,
		Description:     req.Description,
		Price:           req.Price,
		SessionWindow:   window,
		DefaultCapacity: capacity,
		LocationID:      req.LocationID,
		IsActive:        true,
	}
	if err := h.Repo.Create(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListProducts - GET /admin/products?type=camp&active=true
func (h *Handler) ListProducts(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	products, err := h.Repo.List(c.Request.Context(), c.Query("type"), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct - GET /admin/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	p, err := h.Repo.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	c.JSON(http.StatusOK, p)
}
