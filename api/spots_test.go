package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/Velimir1992/parkbooking/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSpotUseCase struct {
	mock.Mock
}

func (m *MockSpotUseCase) List(ctx context.Context) ([]domain.Spot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Spot), args.Error(1)
}

func (m *MockSpotUseCase) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Spot), args.Error(1)
}

func (m *MockSpotUseCase) SearchFree(ctx context.Context, window domain.Interval) ([]domain.Spot, error) {
	args := m.Called(ctx, window)
	return args.Get(0).([]domain.Spot), args.Error(1)
}

func TestSpotHandler_list(t *testing.T) {
	mockService := &MockSpotUseCase{}
	handler := NewSpotHandler(mockService, &MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/spots/", nil)

	spots := []domain.Spot{{ID: 7, Title: "Covered spot near the stadium"}}
	mockService.On("List", c.Request.Context()).Return(spots, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []domain.Spot
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)

	mockService.AssertExpectations(t)
}

func TestSpotHandler_list_WithWindowFiltersFreeSpots(t *testing.T) {
	mockService := &MockSpotUseCase{}
	handler := NewSpotHandler(mockService, &MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	from := "2026-01-05T10:00:00Z"
	to := "2026-01-05T12:00:00Z"
	c.Request = httptest.NewRequest("GET", "/spots/?from="+from+"&to="+to, nil)

	window := domain.Interval{
		Start: time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC),
	}
	mockService.On("SearchFree", c.Request.Context(), window).Return([]domain.Spot{{ID: 2}}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
	mockService.AssertNotCalled(t, "List")
}

func TestSpotHandler_get(t *testing.T) {
	mockService := &MockSpotUseCase{}
	handler := NewSpotHandler(mockService, &MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("GET", "/spots/7", nil)

	spot := &domain.Spot{ID: 7, Title: "Covered spot near the stadium"}
	mockService.On("GetByID", c.Request.Context(), int64(7)).Return(spot, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestSpotHandler_get_NotFound(t *testing.T) {
	mockService := &MockSpotUseCase{}
	handler := NewSpotHandler(mockService, &MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "999"}}
	c.Request = httptest.NewRequest("GET", "/spots/999", nil)

	mockService.On("GetByID", c.Request.Context(), int64(999)).Return(nil, repository.ErrSpotNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSpotHandler_availability(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	handler := NewSpotHandler(&MockSpotUseCase{}, mockBookings)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	from := "2026-01-05T10:00:00Z"
	to := "2026-01-05T12:00:00Z"
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("GET", "/spots/7/availability?from="+from+"&to="+to, nil)

	window := domain.Interval{
		Start: time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC),
	}
	mockBookings.On("Availability", c.Request.Context(), int64(7), window).Return(true, nil)

	handler.availability(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		SpotID int64 `json:"spot_id"`
		Free   bool  `json:"free"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(7), response.SpotID)
	assert.True(t, response.Free)

	mockBookings.AssertExpectations(t)
}

func TestSpotHandler_availability_BadWindow(t *testing.T) {
	handler := NewSpotHandler(&MockSpotUseCase{}, &MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("GET", "/spots/7/availability?from=2026-01-05T12:00:00Z&to=2026-01-05T10:00:00Z", nil)

	handler.availability(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
