package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StepLoad counts letters currently waiting at one approval step.
type StepLoad struct {
	Step    int    `json:"step"`
	Role    string `json:"role"`
	Pending int64  `json:"pending"`
}

// StatisticsResponse aggregates workflow throughput over a time range.
// Durations are reported as fixed-point days to survive JSON round trips
// without float drift.
type StatisticsResponse struct {
	TimeRangeStartDate time.Time `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time `json:"time_range_end_date"`

	TotalSubmitted int64 `json:"total_submitted"`
	TotalCompleted int64 `json:"total_completed"`
	TotalRejected  int64 `json:"total_rejected"`
	TotalCancelled int64 `json:"total_cancelled"`
	TotalInFlight  int64 `json:"total_in_flight"`

	AvgCompletionDays decimal.Decimal `json:"avg_completion_days"`
	RejectionRate     decimal.Decimal `json:"rejection_rate"` // 0..100, two decimal places
	RevisionsPerLetter decimal.Decimal `json:"revisions_per_letter"`

	StepLoads []StepLoad `json:"step_loads"`
}
