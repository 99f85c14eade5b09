package service

import (
	"testing"

	"skill_quest_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeThresholds struct {
	experience map[int]int
	ranks      []struct {
		rank      string
		minRating int
	}
}

func (f *fakeThresholds) MinExperienceForLevel(level int) (int, error) {
	xp, ok := f.experience[level]
	if !ok {
		return 0, util.ErrUnknownLevel
	}
	return xp, nil
}

func (f *fakeThresholds) RankForRating(rating int) (string, error) {
	best := ""
	bestMin := -1
	for _, r := range f.ranks {
		if r.minRating <= rating && r.minRating > bestMin {
			best = r.rank
			bestMin = r.minRating
		}
	}
	if best == "" {
		return "", util.ErrNoQualifyingRank
	}
	return best, nil
}

func defaultThresholds() *fakeThresholds {
	return &fakeThresholds{
		experience: map[int]int{
			1: 100, 2: 250, 3: 450, 4: 700, 5: 1000,
			6: 1350, 7: 1650, 8: 2000, 9: 2400, 10: 2850,
		},
		ranks: []struct {
			rank      string
			minRating int
		}{
			{"Bronze", 0},
			{"Silver", 400},
			{"Gold", 800},
			{"Platinum", 1200},
			{"Diamond", 1600},
		},
	}
}

func newRatingService() *RatingService {
	thresholds := defaultThresholds()
	return NewRatingService(thresholds, thresholds)
}

func TestCalibrateRating_FloorAppliesAtEveryLevel(t *testing.T) {
	svc := newRatingService()

	for level := 1; level <= 10; level++ {
		placement, err := svc.CalibrateRating(level, nil)
		require.NoError(t, err, "level %d", level)
		assert.GreaterOrEqual(t, placement.Rating, 100, "level %d", level)
		assert.Equal(t, level, placement.Level)
		assert.NotEmpty(t, placement.Rank)
	}
}

func TestCalibrateRating_ConcreteScenario(t *testing.T) {
	// 8级、2000经验、无表现数据：2000 * (0.55 + 0.10) = 1300
	svc := newRatingService()

	placement, err := svc.CalibrateRating(8, nil)
	require.NoError(t, err)
	assert.Equal(t, 1300, placement.Rating)
	assert.Equal(t, "Platinum", placement.Rank)
}

func TestBracketBonus_Monotonic(t *testing.T) {
	prev := bracketBonus(1)
	for level := 2; level <= 10; level++ {
		bonus := bracketBonus(level)
		assert.GreaterOrEqual(t, bonus, prev, "bracket bonus dropped at level %d", level)
		prev = bonus
	}
	assert.Equal(t, -0.10, bracketBonus(3))
	assert.Equal(t, 0.00, bracketBonus(4))
	assert.Equal(t, 0.10, bracketBonus(7))
	assert.Equal(t, 0.20, bracketBonus(9))
}

func TestPerformanceMultiplier(t *testing.T) {
	tests := []struct {
		name string
		t    *PerformanceTelemetry
		want float64
	}{
		{"nil telemetry", nil, 1.0},
		{"perfect mastery run clamps at max", &PerformanceTelemetry{
			CorrectAnswers: 10, TotalQuestions: 10, TerminationReason: TerminationMastery,
		}, 1.2},
		{"total failure", &PerformanceTelemetry{
			CorrectAnswers: 0, TotalQuestions: 10, TerminationReason: TerminationFailure,
		}, 0.85},
		{"bounce keeps accuracy only", &PerformanceTelemetry{
			CorrectAnswers: 5, TotalQuestions: 10, TerminationReason: TerminationBounce,
		}, 1.0},
		{"full run bonus", &PerformanceTelemetry{
			CorrectAnswers: 5, TotalQuestions: 10, TerminationReason: TerminationCompleted,
		}, 1.05},
		{"zero questions guards division", &PerformanceTelemetry{
			CorrectAnswers: 0, TotalQuestions: 0, TerminationReason: TerminationCompleted,
		}, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, performanceMultiplier(tt.t), 1e-9)
		})
	}
}

func TestCalibrateRating_TelemetryAffectsRating(t *testing.T) {
	svc := newRatingService()

	strong, err := svc.CalibrateRating(8, &PerformanceTelemetry{
		CorrectAnswers: 12, TotalQuestions: 15, TerminationReason: TerminationCompleted,
	})
	require.NoError(t, err)

	weak, err := svc.CalibrateRating(8, &PerformanceTelemetry{
		CorrectAnswers: 4, TotalQuestions: 15, TerminationReason: TerminationBounce,
	})
	require.NoError(t, err)

	assert.Greater(t, strong.Rating, weak.Rating)
}

func TestCalibrateRating_InvalidLevel(t *testing.T) {
	svc := newRatingService()

	for _, level := range []int{0, -1, 11} {
		_, err := svc.CalibrateRating(level, nil)
		assert.ErrorIs(t, err, util.ErrInvalidFinalLevel, "level %d", level)
	}
}

func TestCalibrateRating_MissingThresholdIsFatal(t *testing.T) {
	thresholds := defaultThresholds()
	delete(thresholds.experience, 7)
	svc := NewRatingService(thresholds, thresholds)

	_, err := svc.CalibrateRating(7, nil)
	assert.ErrorIs(t, err, util.ErrUnknownLevel)
}

func TestCalibrateRating_NoQualifyingRankIsFatal(t *testing.T) {
	thresholds := defaultThresholds()
	thresholds.ranks = thresholds.ranks[:0]
	svc := NewRatingService(thresholds, thresholds)

	_, err := svc.CalibrateRating(5, nil)
	assert.ErrorIs(t, err, util.ErrNoQualifyingRank)
}
