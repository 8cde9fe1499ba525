package scheduler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ExpandTemplate generates events for a recurring template across one
// term's dates. Safe to call repeatedly.
func (h *Handler) ExpandTemplate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}
	termID, err := strconv.ParseUint(c.Query("term_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term_id query parameter required"})
		return
	}

	result, err := h.service.ExpandTemplate(c.Request.Context(), id, uint(termID), userIDFrom(c), middleware.GetIPFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrConfigInvalid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "expansion failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReconcileOrder settles one paid order into bookings and events.
func (h *Handler) ReconcileOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	result, err := h.service.ReconcileOrder(c.Request.Context(), id, userIDFrom(c), middleware.GetIPFromContext(c))
	if err != nil {
		var capErr *CapacityError
		switch {
		case errors.As(err, &capErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "event is fully booked",
				"event":   capErr,
				"partial": result,
			})
		case errors.Is(err, ErrOrderNotPaid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// RepairOrders re-reconciles every paid order in one batch.
func (h *Handler) RepairOrders(c *gin.Context) {
	result, err := h.service.RepairAllPaidOrders(c.Request.Context(), userIDFrom(c), middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "repair run failed"})
		return
	}

	status := http.StatusOK
	if len(result.Failures) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

// CancelBooking cancels a single booking and frees its seat.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, userIDFrom(c), middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancellation failed"})
		return
	}

	c.JSON(http.StatusOK, b)
}

// CancelEvent cancels a session and cascades to its bookings.
func (h *Handler) CancelEvent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	ev, err := h.service.CancelEvent(c.Request.Context(), id, userIDFrom(c), middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ev)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

func userIDFrom(c *gin.Context) *uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
