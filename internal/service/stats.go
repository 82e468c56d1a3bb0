package service

import (
	"context"
	"fmt"
	"time"

	"github.com/atinyakov/HydroPal/internal/metrics"
	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/google/uuid"
)

const (
	// DefaultRankingLimit is the ranking size when none is requested.
	DefaultRankingLimit = 10
	// MaxRankingLimit caps requested ranking sizes.
	MaxRankingLimit = 100
	// MinWaterAmount is the smallest loggable water amount in ml.
	MinWaterAmount = 1
	// MaxWaterAmount is the largest water amount in ml a single entry may record.
	MaxWaterAmount = 1_000_000
)

// StatsRepository defines the aggregation queries needed by the StatsService.
type StatsRepository interface {
	CreateEntry(ctx context.Context, e *models.Entry) error
	SumAmount(ctx context.Context, userID string, logType models.LogType, from, to time.Time) (float64, error)
	DeleteRange(ctx context.Context, userID string, logType models.LogType, from, to time.Time) (int64, error)
	Ranking(ctx context.Context, logType models.LogType, from, to time.Time, limit int) ([]models.RankEntry, error)
	MonthlyTotals(ctx context.Context, userID string, logType models.LogType, from, to time.Time, tz string) (map[int]float64, error)
}

// StatsService computes water statistics. Day and month boundaries are
// taken in loc, never in the host's local zone.
type StatsService struct {
	repo StatsRepository
	loc  *time.Location
	now  func() time.Time
}

// NewStatsService constructs a StatsService computing windows in loc.
// A nil loc means UTC.
func NewStatsService(repo StatsRepository, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{repo: repo, loc: loc, now: time.Now}
}

// today returns [midnight today, midnight tomorrow) in the configured zone.
func (s *StatsService) today() (time.Time, time.Time) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// CurrentYear is the calendar year now in the configured zone.
func (s *StatsService) CurrentYear() int {
	return s.now().In(s.loc).Year()
}

// LogWater records amountMl millilitres of water for userID.
func (s *StatsService) LogWater(ctx context.Context, userID string, amountMl float64) (*models.Entry, error) {
	if !(amountMl >= MinWaterAmount && amountMl <= MaxWaterAmount) {
		return nil, invalid("amount", "Valid water amount is required")
	}
	e := &models.Entry{
		ID:      uuid.NewString(),
		UserID:  userID,
		LogType: models.Water,
		Data:    models.Data{Amount: &amountMl, Unit: models.Millilitre},
		Amount:  amountMl,
	}
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("log water: %w", err)
	}
	metrics.RecordEntryCreated(models.Water, amountMl)
	return e, nil
}

// TodayTotal sums the millilitres userID logged today.
func (s *StatsService) TodayTotal(ctx context.Context, userID string) (float64, error) {
	from, to := s.today()
	total, err := s.repo.SumAmount(ctx, userID, models.Water, from, to)
	if err != nil {
		return 0, fmt.Errorf("today total: %w", err)
	}
	return total, nil
}

// ClearToday deletes userID's water entries of today in one statement and
// returns how many were removed.
func (s *StatsService) ClearToday(ctx context.Context, userID string) (int64, error) {
	from, to := s.today()
	n, err := s.repo.DeleteRange(ctx, userID, models.Water, from, to)
	if err != nil {
		return 0, fmt.Errorf("clear today: %w", err)
	}
	return n, nil
}

// Ranking returns today's top water drinkers, at most limit of them,
// ordered by total descending and then by user id. A non-positive limit
// means DefaultRankingLimit; larger than MaxRankingLimit is clamped.
func (s *StatsService) Ranking(ctx context.Context, limit int) ([]models.RankEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}
	from, to := s.today()
	ranking, err := s.repo.Ranking(ctx, models.Water, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// MonthlyTotals returns twelve monthly water totals for userID in year,
// January first. Months without entries are 0. A zero year means the
// current one.
func (s *StatsService) MonthlyTotals(ctx context.Context, userID string, year int) ([]float64, error) {
	if year == 0 {
		year = s.CurrentYear()
	}
	if year < 1970 || year > 9999 {
		return nil, invalid("year", "year must be between 1970 and 9999")
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(1, 0, 0)
	byMonth, err := s.repo.MonthlyTotals(ctx, userID, models.Water, from, to, s.loc.String())
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}

	totals := make([]float64, 12)
	for month, total := range byMonth {
		if month >= 1 && month <= 12 {
			totals[month-1] = total
		}
	}
	return totals, nil
}
