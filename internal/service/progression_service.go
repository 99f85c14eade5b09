package service

import (
	"skill_quest_backend/internal/model"
)

const (
	AchievementPersonalBest = "Personal Best Achieved"
	AchievementComeback     = "Comeback Completed"
	AchievementImprovements = "Consecutive Improvements"
)

const (
	// 回升成就的噪声过滤：跌幅小于 3 分不算下跌事件
	comebackDropThreshold = 3

	// 连续提升成就在连胜恰好到 5 时触发一次
	improvementStreakTarget = 5
)

// SessionOutcome 一次会话结算的全部结果：新达成的成就名 + 待持久化的字段
type SessionOutcome struct {
	Qualified []string

	BestRatingEver        int
	LastSessionRating     int
	PreviousSessionRating int
	ImprovementStreak     int
	LastRatingDrop        int

	// Updates 直接交给 UserRepository.UpdateFields 落库
	Updates map[string]interface{}
}

// ProgressionService 会话结束后更新长期进度并判定新成就。
// 不做任何 IO，持久化与成就解锁由调用方各自处理，两者互不阻塞。
type ProgressionService struct{}

func NewProgressionService() *ProgressionService {
	return &ProgressionService{}
}

// ApplySessionResult 结算一次已完成的会话。
// 对任意输入都不报错：进度字段为零值时视为首次会话并引导初始化。
func (s *ProgressionService) ApplySessionResult(user *model.User, newRating, sessionStartRating int) SessionOutcome {
	best := user.BestRatingEver
	streak := user.ImprovementStreak
	drop := user.LastRatingDrop

	previous := user.LastSessionRating
	if previous == 0 {
		// 首次会话：上一场评分以本场起始评分引导
		previous = sessionStartRating
	}

	var qualified []string

	// 个人最佳
	if newRating > best {
		qualified = append(qualified, AchievementPersonalBest)
		best = newRating
	}

	// 下跌-回升
	dropFromBest := best - newRating
	if dropFromBest >= comebackDropThreshold {
		// 下跌事件进行中，记录谷底，不判定成就
		if drop == 0 || newRating < drop {
			drop = newRating
		}
	} else if drop > 0 && newRating >= best {
		if best-drop >= comebackDropThreshold {
			qualified = append(qualified, AchievementComeback)
			drop = 0
		}
	}

	// 连续提升
	sessionDelta := newRating - sessionStartRating
	if sessionDelta > 0 {
		streak++
		if streak == improvementStreakTarget {
			qualified = append(qualified, AchievementImprovements)
		}
	} else if sessionDelta < 0 {
		streak = 0
	}

	return SessionOutcome{
		Qualified:             qualified,
		BestRatingEver:        best,
		LastSessionRating:     newRating,
		PreviousSessionRating: previous,
		ImprovementStreak:     streak,
		LastRatingDrop:        drop,
		Updates: map[string]interface{}{
			"best_rating_ever":    best,
			"last_session_rating": newRating,
			"improvement_streak":  streak,
			"last_rating_drop":    drop,
		},
	}
}
