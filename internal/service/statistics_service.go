package service

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatisticsService aggregates workflow throughput for the admin dashboard.
// Reads are cross-table aggregates, so it queries gorm directly instead of
// going through the row-oriented repositories.
type StatisticsService interface {
	GetStatistics(ctx context.Context, start, end time.Time) (*model.StatisticsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

func (s *statisticsService) GetStatistics(ctx context.Context, start, end time.Time) (*model.StatisticsResponse, error) {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, -1, 0)
	}

	resp := &model.StatisticsResponse{
		TimeRangeStartDate: start,
		TimeRangeEndDate:   end,
	}

	db := s.db.WithContext(ctx)

	type statusCount struct {
		Status string
		Total  int64
	}
	var counts []statusCount
	if err := db.Model(&model.Letter{}).
		Select("status, COUNT(*) AS total").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		resp.TotalSubmitted += c.Total
		switch c.Status {
		case model.LetterCompleted:
			resp.TotalCompleted = c.Total
		case model.LetterRejected:
			resp.TotalRejected = c.Total
		case model.LetterCancelled:
			resp.TotalCancelled = c.Total
		case model.LetterProcessing:
			resp.TotalInFlight = c.Total
		}
	}

	avgDays, err := s.avgCompletionDays(db, start, end)
	if err != nil {
		return nil, err
	}
	resp.AvgCompletionDays = avgDays

	resp.RejectionRate = ratePercent(resp.TotalRejected, resp.TotalSubmitted)

	revisions, err := s.revisionCount(db, start, end)
	if err != nil {
		return nil, err
	}
	if resp.TotalSubmitted > 0 {
		resp.RevisionsPerLetter = decimal.NewFromInt(revisions).
			Div(decimal.NewFromInt(resp.TotalSubmitted)).
			Round(2)
	} else {
		resp.RevisionsPerLetter = decimal.Zero
	}

	loads, err := s.stepLoads(db)
	if err != nil {
		return nil, err
	}
	resp.StepLoads = loads

	return resp, nil
}

// avgCompletionDays measures submission-to-numbering wall time from the
// ledger itself, so the result stays honest even if letter rows are edited.
func (s *statisticsService) avgCompletionDays(db *gorm.DB, start, end time.Time) (decimal.Decimal, error) {
	var avgSeconds *float64
	err := db.Raw(`
		SELECT AVG(EXTRACT(EPOCH FROM done.created_at - sub.created_at))
		FROM letter_step_histories sub
		JOIN letter_step_histories done
		  ON done.letter_id = sub.letter_id AND done.action = ?
		WHERE sub.action = ?
		  AND sub.created_at BETWEEN ? AND ?`,
		model.ActionNumbered, model.ActionSubmitted, start, end,
	).Scan(&avgSeconds).Error
	if err != nil {
		return decimal.Zero, err
	}
	if avgSeconds == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(*avgSeconds).
		Div(decimal.NewFromInt(86400)).
		Round(2), nil
}

func (s *statisticsService) revisionCount(db *gorm.DB, start, end time.Time) (int64, error) {
	var total int64
	err := db.Model(&model.LetterStepHistory{}).
		Where("action IN ?", []string{model.ActionRevised, model.ActionSelfRevised}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&total).Error
	return total, err
}

func (s *statisticsService) stepLoads(db *gorm.DB) ([]model.StepLoad, error) {
	type row struct {
		Step    int
		Pending int64
	}
	var rows []row
	err := db.Model(&model.Letter{}).
		Select("current_step AS step, COUNT(*) AS pending").
		Where("status = ? AND current_step IS NOT NULL", model.LetterProcessing).
		Group("current_step").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byStep := make(map[int]int64, len(rows))
	for _, r := range rows {
		byStep[r.Step] = r.Pending
	}

	loads := make([]model.StepLoad, 0, model.StepCount)
	for step := model.StepSupervisor; step <= model.StepNumbering; step++ {
		loads = append(loads, model.StepLoad{
			Step:    int(step),
			Role:    step.RoleKey(),
			Pending: byStep[int(step)],
		})
	}
	return loads, nil
}

func ratePercent(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		Round(2)
}
