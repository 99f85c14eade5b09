package service

import (
	"math"

	"skill_quest_backend/internal/util"
)

const (
	// 基准系数：最终评分 = baseXP * (0.55 + 档位加成) * 表现系数
	baselineMultiplier = 0.55

	// 任何学员的起始评分不低于 100
	ratingFloor = 100

	perfMultiplierMin = 0.8
	perfMultiplierMax = 1.2
)

// PerformanceTelemetry 诊断过程的表现数据，可选
type PerformanceTelemetry struct {
	CorrectAnswers    int               `json:"correctAnswers"`
	TotalQuestions    int               `json:"totalQuestions"`
	TerminationReason TerminationReason `json:"terminationReason"`
	LevelHistory      []int             `json:"levelHistory"`
}

type Placement struct {
	Rating int    `json:"rating"`
	Rank   string `json:"rank"`
	Level  int    `json:"level"`
}

// LevelExperienceStore 等级 → 最低经验值阈值表
type LevelExperienceStore interface {
	MinExperienceForLevel(level int) (int, error)
}

// RankStore 段位阈值表
type RankStore interface {
	RankForRating(rating int) (string, error)
}

type RatingService struct {
	Levels LevelExperienceStore
	Ranks  RankStore
}

func NewRatingService(levels LevelExperienceStore, ranks RankStore) *RatingService {
	return &RatingService{Levels: levels, Ranks: ranks}
}

// CalibrateRating 把诊断定级转换为数值评分和段位。
// 对阈值表而言是只读的纯计算，阈值缺失属于配置错误。
func (s *RatingService) CalibrateRating(finalLevel int, telemetry *PerformanceTelemetry) (*Placement, error) {
	if finalLevel < MinWorkingLevel || finalLevel > MaxWorkingLevel {
		return nil, util.ErrInvalidFinalLevel
	}

	baseXP, err := s.Levels.MinExperienceForLevel(finalLevel)
	if err != nil {
		return nil, err
	}

	multiplier := baselineMultiplier + bracketBonus(finalLevel)
	performance := performanceMultiplier(telemetry)

	rating := int(math.Round(float64(baseXP) * multiplier * performance))
	if rating < ratingFloor {
		rating = ratingFloor
	}

	rank, err := s.Ranks.RankForRating(rating)
	if err != nil {
		return nil, err
	}

	return &Placement{
		Rating: rating,
		Rank:   rank,
		Level:  finalLevel,
	}, nil
}

// bracketBonus 定级档位加成：高分段拿到更大比例的档位基准经验，
// 低分段更小，避免两端定级失准
func bracketBonus(level int) float64 {
	switch {
	case level <= 3:
		return -0.10
	case level <= 6:
		return 0.00
	case level <= 8:
		return 0.10
	default:
		return 0.20
	}
}

// performanceMultiplier 表现系数：正确率映射到 0.9-1.1，
// 再按结束原因修正，整体截断在 [0.8, 1.2]
func performanceMultiplier(t *PerformanceTelemetry) float64 {
	if t == nil {
		return 1.0
	}

	accuracy := 0.0
	if t.TotalQuestions > 0 {
		accuracy = float64(t.CorrectAnswers) / float64(t.TotalQuestions)
	}
	m := 0.9 + accuracy*0.2

	switch t.TerminationReason {
	case TerminationMastery:
		m += 0.10
	case TerminationFailure:
		m -= 0.05
	case TerminationCompleted:
		m += 0.05
	}

	if m < perfMultiplierMin {
		m = perfMultiplierMin
	}
	if m > perfMultiplierMax {
		m = perfMultiplierMax
	}
	return m
}
