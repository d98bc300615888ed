package service

import (
	"fmt"
	"math"
)

// ScoreService owns the single rounding rule for percent scores. The client
// also computes a score for display, but the stored value is always this one.
type ScoreService interface {
	ComputePercent(correct, total int) (float64, error)
}

type scoreService struct{}

func NewScoreService() ScoreService {
	return &scoreService{}
}

// ComputePercent returns correct/total as a percentage rounded to one decimal.
func (s *scoreService) ComputePercent(correct, total int) (float64, error) {
	if total <= 0 {
		return 0, fmt.Errorf("total questions must be positive, got %d", total)
	}
	if correct < 0 || correct > total {
		return 0, fmt.Errorf("correct answers %d out of valid range 0-%d", correct, total)
	}
	percent := float64(correct) / float64(total) * 100
	return math.Round(percent*10) / 10, nil
}
