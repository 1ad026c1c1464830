package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/Velimir1992/parkbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type confirmBookingRequest struct {
	SpotID      int64            `json:"spot_id"`
	PaymentRef  string           `json:"payment_ref"`
	AmountCents int64            `json:"amount_cents"`
	Slots       []string         `json:"slots,omitempty"`
	Interval    *domain.Interval `json:"interval,omitempty"`
}

type confirmBookingResponse struct {
	SagaID           string  `json:"saga_id,omitempty"`
	ReservationIDs   []int64 `json:"reservation_ids"`
	PaymentRef       string  `json:"payment_ref"`
	AmountCents      int64   `json:"amount_cents"`
	AlreadyProcessed bool    `json:"already_processed"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/confirm", h.confirm)
	router.GET("/mine", h.listMine)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	var req confirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	result, err := h.service.Confirm(c.Request.Context(), booking.ConfirmBookingInput{
		SpotID:      req.SpotID,
		UserID:      userID,
		PaymentRef:  req.PaymentRef,
		AmountCents: req.AmountCents,
		SlotLabels:  req.Slots,
		Interval:    req.Interval,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	c.JSON(status, confirmBookingResponse{
		SagaID:           result.SagaID,
		ReservationIDs:   result.ReservationIDs,
		PaymentRef:       result.PaymentRef,
		AmountCents:      result.AmountCents,
		AlreadyProcessed: result.AlreadyProcessed,
	})
}

func (h *BookingHandler) listMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	reservations, err := h.service.ListUserReservations(c.Request.Context(), userID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// writeBookingError maps the service error taxonomy to status codes.
// Validation and conflict responses carry enough detail to fix the
// request; upstream failures stay opaque and retryable.
func writeBookingError(c *gin.Context, err error) {
	var validation *booking.ValidationError
	var conflict *booking.ConflictError
	var alloc *booking.AllocationError
	var partial *booking.PartialBatchFailure
	var upstream *booking.UpstreamError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &partial):
		c.JSON(http.StatusConflict, gin.H{
			"error":  partial.Error(),
			"groups": partial.Groups,
		})
	case errors.As(err, &conflict):
		body := gin.H{"error": conflict.Error()}
		if conflict.Existing.IsValid() {
			body["conflicting_interval"] = conflict.Existing
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &alloc):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not allocate reservation, retry later"})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// callerID resolves the authenticated user from the request context.
// The identity is trusted as given; session handling lives upstream.
func callerID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseRFC3339(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
