package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/Velimir1992/parkbooking/internal/repository"
	"github.com/Velimir1992/parkbooking/internal/service/booking"
	"github.com/Velimir1992/parkbooking/internal/service/spots"
	"github.com/gin-gonic/gin"
)

type SpotHandler struct {
	service  spots.SpotUseCase
	bookings booking.BookingUseCase
}

func NewSpotHandler(service spots.SpotUseCase, bookings booking.BookingUseCase) *SpotHandler {
	return &SpotHandler{service: service, bookings: bookings}
}

func (h *SpotHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.availability)
}

func (h *SpotHandler) list(c *gin.Context) {
	if from, to := c.Query("from"), c.Query("to"); from != "" || to != "" {
		h.searchFree(c, from, to)
		return
	}

	spots, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, spots)
}

func (h *SpotHandler) searchFree(c *gin.Context, from, to string) {
	window, err := parseWindow(from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spots, err := h.service.SearchFree(c.Request.Context(), window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, spots)
}

func (h *SpotHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	spot, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSpotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "spot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, spot)
}

func (h *SpotHandler) availability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	window, err := parseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	free, err := h.bookings.Availability(c.Request.Context(), id, window)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spot_id": id, "free": free})
}

func parseWindow(from, to string) (domain.Interval, error) {
	if from == "" || to == "" {
		return domain.Interval{}, errors.New("from and to are required")
	}
	start, err := parseRFC3339(from)
	if err != nil {
		return domain.Interval{}, errors.New("from must be RFC3339")
	}
	end, err := parseRFC3339(to)
	if err != nil {
		return domain.Interval{}, errors.New("to must be RFC3339")
	}
	window := domain.Interval{Start: start, End: end}
	if !window.IsValid() {
		return domain.Interval{}, errors.New("from must be before to")
	}
	return window, nil
}
