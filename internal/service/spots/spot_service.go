package spots

import (
	"context"

	"github.com/Velimir1992/parkbooking/internal/domain"
	"github.com/Velimir1992/parkbooking/internal/repository"
	"github.com/Velimir1992/parkbooking/internal/schedule"
)

type SpotUseCase interface {
	List(ctx context.Context) ([]domain.Spot, error)
	GetByID(ctx context.Context, id int64) (*domain.Spot, error)
	SearchFree(ctx context.Context, window domain.Interval) ([]domain.Spot, error)
}

type Cache interface {
	GetSpots(ctx context.Context) ([]domain.Spot, error)
	SetSpots(ctx context.Context, spots []domain.Spot) error
}

type SpotService struct {
	repo         repository.SpotRepository
	reservations repository.ReservationRepository
	cache        Cache
}

func NewSpotService(repo repository.SpotRepository, reservations repository.ReservationRepository, cache Cache) *SpotService {
	return &SpotService{repo: repo, reservations: reservations, cache: cache}
}

func (s *SpotService) List(ctx context.Context) ([]domain.Spot, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSpots(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	spots, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSpots(ctx, spots)
	}
	return spots, nil
}

func (s *SpotService) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	return s.repo.GetByID(ctx, id)
}

// SearchFree filters the listing to spots whose schedule has the whole
// window free. Read-only and lock-free: a result can go stale the
// moment it is returned, and a later booking will still be checked
// under the spot's critical section.
func (s *SpotService) SearchFree(ctx context.Context, window domain.Interval) ([]domain.Spot, error) {
	spots, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	free := make([]domain.Spot, 0, len(spots))
	for _, spot := range spots {
		taken, err := s.reservations.ListIntervalsOverlapping(ctx, spot.ID, window)
		if err != nil {
			return nil, err
		}
		if schedule.IsFree(window, taken) {
			free = append(free, spot)
		}
	}
	return free, nil
}

var _ SpotUseCase = (*SpotService)(nil)
