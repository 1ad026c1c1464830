package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/Velimir1992/parkbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Confirm(ctx context.Context, input booking.ConfirmBookingInput) (*booking.BookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingResult), args.Error(1)
}

func (m *MockBookingUseCase) Availability(ctx context.Context, spotID int64, window domain.Interval) (bool, error) {
	args := m.Called(ctx, spotID, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingUseCase) ListUserReservations(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func confirmRequest(t *testing.T, body interface{}, userID string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest("POST", "/bookings/confirm", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	return req
}

func TestBookingHandler_confirm(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := confirmBookingRequest{
		SpotID:      7,
		PaymentRef:  "pi_123",
		AmountCents: 1500,
		Slots:       []string{"Mon Jan 05 2026-9", "Mon Jan 05 2026-10"},
	}
	c.Request = confirmRequest(t, body, "3")

	result := &booking.BookingResult{
		SagaID:         "saga-1",
		ReservationIDs: []int64{101},
		PaymentRef:     "pi_123",
		AmountCents:    1500,
	}
	mockService.On("Confirm", c.Request.Context(), booking.ConfirmBookingInput{
		SpotID:      7,
		UserID:      3,
		PaymentRef:  "pi_123",
		AmountCents: 1500,
		SlotLabels:  body.Slots,
	}).Return(result, nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response confirmBookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, []int64{101}, response.ReservationIDs)
	assert.Equal(t, "pi_123", response.PaymentRef)
	assert.False(t, response.AlreadyProcessed)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_confirm_Replay(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := confirmBookingRequest{SpotID: 7, PaymentRef: "pi_123", AmountCents: 1500, Slots: []string{"Mon Jan 05 2026-9"}}
	c.Request = confirmRequest(t, body, "3")

	result := &booking.BookingResult{
		ReservationIDs:   []int64{42},
		PaymentRef:       "pi_123",
		AmountCents:      1500,
		AlreadyProcessed: true,
	}
	mockService.On("Confirm", c.Request.Context(), mock.Anything).Return(result, nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response confirmBookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.AlreadyProcessed)
}

func TestBookingHandler_confirm_MissingIdentity(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := confirmBookingRequest{SpotID: 7, PaymentRef: "pi_123", AmountCents: 1500, Slots: []string{"Mon Jan 05 2026-9"}}
	c.Request = confirmRequest(t, body, "")

	handler.confirm(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Confirm")
}

func TestBookingHandler_confirm_ErrorMapping(t *testing.T) {
	base := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	candidate := domain.Interval{Start: base.Add(10 * time.Hour), End: base.Add(12 * time.Hour)}
	existing := domain.Interval{Start: base.Add(11 * time.Hour), End: base.Add(13 * time.Hour)}

	testCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "validation error",
			err:            &booking.ValidationError{Msg: "payment reference is required"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "conflict error",
			err:            &booking.ConflictError{Candidate: candidate, Existing: existing},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "allocation error",
			err:            &booking.AllocationError{Attempts: 3},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "partial batch failure",
			err: &booking.PartialBatchFailure{
				Groups: []booking.GroupOutcome{{Interval: candidate, Status: booking.GroupRollbackFailed}},
				Cause:  &booking.ConflictError{Candidate: candidate, Existing: existing},
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "upstream error",
			err:            &booking.UpstreamError{Op: "record transaction"},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			body := confirmBookingRequest{SpotID: 7, PaymentRef: "pi_123", AmountCents: 1500, Slots: []string{"Mon Jan 05 2026-9"}}
			c.Request = confirmRequest(t, body, "3")

			mockService.On("Confirm", c.Request.Context(), mock.Anything).Return(nil, tc.err)

			handler.confirm(c)

			assert.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}

func TestBookingHandler_listMine(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/bookings/mine", nil)
	c.Request.Header.Set("X-User-ID", "3")

	reservations := []domain.Reservation{{ID: 101, SpotID: 7, UserID: 3}}
	mockService.On("ListUserReservations", c.Request.Context(), int64(3)).Return(reservations, nil)

	handler.listMine(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []domain.Reservation
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	assert.Equal(t, int64(101), response[0].ID)

	mockService.AssertExpectations(t)
}
