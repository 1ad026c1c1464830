package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/Velimir1992/parkbooking/internal/kafka"
	"github.com/Velimir1992/parkbooking/internal/logging"
	"github.com/Velimir1992/parkbooking/internal/repository"
	"github.com/Velimir1992/parkbooking/internal/schedule"
	"github.com/Velimir1992/parkbooking/internal/slots"
)

type BookingUseCase interface {
	Confirm(ctx context.Context, input ConfirmBookingInput) (*BookingResult, error)
	Availability(ctx context.Context, spotID int64, window domain.Interval) (bool, error)
	ListUserReservations(ctx context.Context, userID int64) ([]domain.Reservation, error)
}

type Cache interface {
	AcquireSpotLock(ctx context.Context, spotID int64, sagaID string, ttl time.Duration) (bool, error)
	ReleaseSpotLock(ctx context.Context, spotID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ConfirmBookingInput is the validated boundary DTO for one confirmed
// payment. Either SlotLabels or Interval must be set, not both.
type ConfirmBookingInput struct {
	SpotID      int64            `json:"spot_id"`
	UserID      int64            `json:"user_id"`
	PaymentRef  string           `json:"payment_ref"`
	AmountCents int64            `json:"amount_cents"`
	SlotLabels  []string         `json:"slots,omitempty"`
	Interval    *domain.Interval `json:"interval,omitempty"`
}

type BookingResult struct {
	SagaID           string  `json:"saga_id"`
	ReservationIDs   []int64 `json:"reservation_ids"`
	PaymentRef       string  `json:"payment_ref"`
	AmountCents      int64   `json:"amount_cents"`
	AlreadyProcessed bool    `json:"already_processed"`
}

type BookingService struct {
	reservations       repository.ReservationRepository
	transactions       repository.TransactionRepository
	spots              repository.SpotRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	txAttempts         int
	allocAttempts      int
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithRetryBudgets(txAttempts, allocAttempts int) BookingServiceOption {
	return func(s *BookingService) {
		if txAttempts > 0 {
			s.txAttempts = txAttempts
		}
		if allocAttempts > 0 {
			s.allocAttempts = allocAttempts
		}
	}
}

func NewBookingService(
	reservations repository.ReservationRepository,
	transactions repository.TransactionRepository,
	spots repository.SpotRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		reservations:  reservations,
		transactions:  transactions,
		spots:         spots,
		cache:         cache,
		producer:      producer,
		bookingTopic:  bookingTopic,
		lockTTL:       lockTTL,
		txAttempts:    3,
		allocAttempts: 3,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Confirm turns one confirmed payment into durable reservations plus
// exactly one transaction record. On a mid-batch failure every
// reservation created by this call is deleted again; the request either
// books everything it asked for or books nothing.
func (s *BookingService) Confirm(ctx context.Context, input ConfirmBookingInput) (*BookingResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	groups, err := buildGroups(input)
	if err != nil {
		return nil, err
	}

	// A payment reference that already has a transaction was fully
	// processed before; replaying it must not create anything.
	existing, err := s.transactions.GetByPaymentRef(ctx, input.PaymentRef)
	if err != nil {
		return nil, &UpstreamError{Op: "load transaction", Err: err}
	}
	if existing != nil {
		return &BookingResult{
			ReservationIDs:   []int64{existing.ReservationID},
			PaymentRef:       existing.PaymentRef,
			AmountCents:      existing.AmountCents,
			AlreadyProcessed: true,
		}, nil
	}

	if _, err := s.spots.GetByID(ctx, input.SpotID); err != nil {
		if errors.Is(err, repository.ErrSpotNotFound) {
			return nil, &ValidationError{Msg: "unknown spot"}
		}
		return nil, &UpstreamError{Op: "load spot", Err: err}
	}

	sagaID := uuid.NewString()
	log := logging.L().With(
		zap.String("saga_id", sagaID),
		zap.Int64("spot_id", input.SpotID),
		zap.String("payment_ref", input.PaymentRef))

	locked, err := s.cache.AcquireSpotLock(ctx, input.SpotID, sagaID, s.lockTTL)
	if err != nil {
		return nil, &UpstreamError{Op: "acquire spot lock", Err: err}
	}
	if !locked {
		return nil, &ConflictError{Msg: "another booking for this spot is in progress"}
	}
	defer func() {
		if err := s.cache.ReleaseSpotLock(ctx, input.SpotID); err != nil {
			log.Warn("failed to release spot lock", zap.Error(err))
		}
	}()

	created, err := s.reserveGroups(ctx, input, groups, log)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		PaymentRef:    input.PaymentRef,
		ReservationID: created[0].ID,
		AmountCents:   input.AmountCents,
		Paid:          true,
	}
	if err := s.recordTransaction(ctx, tx, log); err != nil {
		// The reservations are committed and the spot is truthfully
		// occupied, so they stay. Only the transaction write failed.
		return nil, err
	}

	s.publishEvents(ctx, sagaID, input.PaymentRef, created, log)

	ids := make([]int64, len(created))
	for i, r := range created {
		ids[i] = r.ID
	}
	log.Info("booking confirmed", zap.Int64s("reservation_ids", ids))

	return &BookingResult{
		SagaID:         sagaID,
		ReservationIDs: ids,
		PaymentRef:     input.PaymentRef,
		AmountCents:    input.AmountCents,
	}, nil
}

// reserveGroups books every interval or rolls all of them back.
func (s *BookingService) reserveGroups(ctx context.Context, input ConfirmBookingInput, groups []domain.Interval, log *zap.Logger) ([]domain.Reservation, error) {
	created := make([]domain.Reservation, 0, len(groups))
	for i, group := range groups {
		taken, err := s.reservations.ListIntervals(ctx, input.SpotID)
		if err != nil {
			return nil, s.rollback(ctx, groups, created, i,
				&UpstreamError{Op: "list reservations", Err: err}, log)
		}
		if conflict, found := schedule.FirstConflict(group, taken); found {
			return nil, s.rollback(ctx, groups, created, i,
				&ConflictError{Candidate: group, Existing: conflict}, log)
		}

		reservation, err := s.allocate(ctx, input.SpotID, input.UserID, group)
		if err != nil {
			return nil, s.rollback(ctx, groups, created, i, err, log)
		}
		created = append(created, *reservation)
	}
	return created, nil
}

// allocate assigns an identity from the store's sequence and inserts
// the reservation, retrying on id collisions. An interval conflict here
// means the database exclusion constraint caught a race that the
// in-memory check missed.
func (s *BookingService) allocate(ctx context.Context, spotID, userID int64, interval domain.Interval) (*domain.Reservation, error) {
	var lastErr error
	for attempt := 0; attempt < s.allocAttempts; attempt++ {
		id, err := s.reservations.NextID(ctx)
		if err != nil {
			return nil, &UpstreamError{Op: "next reservation id", Err: err}
		}

		reservation := &domain.Reservation{
			ID:     id,
			SpotID: spotID,
			UserID: userID,
			Start:  interval.Start,
			End:    interval.End,
		}
		err = s.reservations.Insert(ctx, reservation)
		if err == nil {
			return reservation, nil
		}
		if errors.Is(err, repository.ErrIntervalTaken) {
			return nil, &ConflictError{Candidate: interval, Msg: "interval was taken by a concurrent booking"}
		}
		if errors.Is(err, repository.ErrIDTaken) {
			lastErr = err
			continue
		}
		return nil, &UpstreamError{Op: "insert reservation", Err: err}
	}
	return nil, &AllocationError{Attempts: s.allocAttempts, Err: lastErr}
}

// rollback deletes the reservations created so far, newest first. If
// every delete succeeds the original cause is returned unchanged; if
// any reservation cannot be removed the caller gets a
// PartialBatchFailure describing where each group ended up.
func (s *BookingService) rollback(ctx context.Context, groups []domain.Interval, created []domain.Reservation, failedAt int, cause error, log *zap.Logger) error {
	if len(created) == 0 {
		return cause
	}
	log.Warn("compensating booking saga",
		zap.Int("created", len(created)),
		zap.NamedError("cause", cause))

	failed := make(map[int64]error)
	for i := len(created) - 1; i >= 0; i-- {
		if err := s.reservations.Delete(ctx, created[i].ID); err != nil {
			log.Error("compensation delete failed",
				zap.Int64("reservation_id", created[i].ID),
				zap.Error(err))
			failed[created[i].ID] = err
		}
	}
	if len(failed) == 0 {
		return cause
	}

	outcomes := make([]GroupOutcome, len(groups))
	for i, group := range groups {
		outcome := GroupOutcome{Interval: group}
		switch {
		case i < len(created):
			outcome.ReservationID = created[i].ID
			if err, ok := failed[created[i].ID]; ok {
				outcome.Status = GroupRollbackFailed
				outcome.Detail = err.Error()
			} else {
				outcome.Status = GroupRolledBack
			}
		case i == failedAt:
			outcome.Status = GroupFailed
			outcome.Detail = cause.Error()
		default:
			outcome.Status = GroupNotAttempted
		}
		outcomes[i] = outcome
	}
	return &PartialBatchFailure{Groups: outcomes, Cause: cause}
}

// recordTransaction writes the single transaction for this payment,
// retrying with linear backoff. The insert is keyed by payment
// reference and ignores duplicates, so a retry after an ambiguous
// failure cannot record the payment twice.
func (s *BookingService) recordTransaction(ctx context.Context, tx *domain.Transaction, log *zap.Logger) error {
	var lastErr error
	for attempt := 0; attempt < s.txAttempts; attempt++ {
		err := s.transactions.Insert(ctx, tx)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("transaction write attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < s.txAttempts-1 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
		}
	}
	return &UpstreamError{Op: "record transaction", Err: lastErr}
}

func (s *BookingService) publishEvents(ctx context.Context, sagaID, paymentRef string, created []domain.Reservation, log *zap.Logger) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	for _, r := range created {
		event := kafka.ReservationEvent{
			Type:          kafka.EventReservationConfirmed,
			SagaID:        sagaID,
			ReservationID: r.ID,
			SpotID:        r.SpotID,
			UserID:        r.UserID,
			Start:         r.Start,
			End:           r.End,
			PaymentRef:    paymentRef,
		}
		if err := s.producer.Publish(ctx, s.bookingTopic, sagaID, event); err != nil {
			log.Warn("failed to publish reservation event", zap.Error(err))
		}
		if s.notificationsTopic != "" {
			if err := s.producer.Publish(ctx, s.notificationsTopic, sagaID, event); err != nil {
				log.Warn("failed to publish notification event", zap.Error(err))
			}
		}
	}
}

func (s *BookingService) Availability(ctx context.Context, spotID int64, window domain.Interval) (bool, error) {
	if !window.IsValid() {
		return false, &ValidationError{Msg: "window start must be before end"}
	}
	taken, err := s.reservations.ListIntervalsOverlapping(ctx, spotID, window)
	if err != nil {
		return false, &UpstreamError{Op: "list reservations", Err: err}
	}
	return schedule.IsFree(window, taken), nil
}

func (s *BookingService) ListUserReservations(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	reservations, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, &UpstreamError{Op: "list user reservations", Err: err}
	}
	return reservations, nil
}

func validateInput(input ConfirmBookingInput) error {
	switch {
	case input.PaymentRef == "":
		return &ValidationError{Msg: "payment reference is required"}
	case input.AmountCents <= 0:
		return &ValidationError{Msg: "amount must be positive"}
	case input.SpotID <= 0:
		return &ValidationError{Msg: "spot id is required"}
	case input.UserID <= 0:
		return &ValidationError{Msg: "user id is required"}
	case len(input.SlotLabels) == 0 && input.Interval == nil:
		return &ValidationError{Msg: "either slots or an interval is required"}
	case len(input.SlotLabels) > 0 && input.Interval != nil:
		return &ValidationError{Msg: "slots and interval are mutually exclusive"}
	}
	return nil
}

func buildGroups(input ConfirmBookingInput) ([]domain.Interval, error) {
	if input.Interval != nil {
		if !input.Interval.IsValid() {
			return nil, &ValidationError{Msg: "interval start must be before end"}
		}
		return []domain.Interval{*input.Interval}, nil
	}

	groups, err := slots.Group(input.SlotLabels)
	if err != nil {
		return nil, &ValidationError{Msg: "bad slot selection", Err: err}
	}
	return groups, nil
}

var _ BookingUseCase = (*BookingService)(nil)
