package service

import (
	"testing"

	"skill_quest_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userWith(best, lastSession, streak, drop int) *model.User {
	return &model.User{
		BestRatingEver:    best,
		LastSessionRating: lastSession,
		ImprovementStreak: streak,
		LastRatingDrop:    drop,
	}
}

func TestApplySessionResult_FirstSessionBootstrap(t *testing.T) {
	svc := NewProgressionService()

	// 全零的新用户不报错，上一场评分以起始评分引导
	outcome := svc.ApplySessionResult(&model.User{}, 850, 800)

	assert.Equal(t, 800, outcome.PreviousSessionRating)
	assert.Equal(t, 850, outcome.LastSessionRating)
	assert.Equal(t, 850, outcome.BestRatingEver)
	assert.Equal(t, 1, outcome.ImprovementStreak)
	assert.Contains(t, outcome.Qualified, AchievementPersonalBest)
}

func TestApplySessionResult_PersonalBest(t *testing.T) {
	svc := NewProgressionService()

	outcome := svc.ApplySessionResult(userWith(1000, 1000, 0, 0), 1010, 1000)
	assert.Contains(t, outcome.Qualified, AchievementPersonalBest)
	assert.Equal(t, 1010, outcome.BestRatingEver)

	// 未超过历史最佳不触发
	outcome = svc.ApplySessionResult(userWith(1000, 990, 0, 0), 995, 990)
	assert.NotContains(t, outcome.Qualified, AchievementPersonalBest)
	assert.Equal(t, 1000, outcome.BestRatingEver)
}

func TestApplySessionResult_BestNeverBelowCurrent(t *testing.T) {
	svc := NewProgressionService()

	outcome := svc.ApplySessionResult(userWith(500, 500, 0, 0), 900, 500)
	assert.GreaterOrEqual(t, outcome.BestRatingEver, outcome.LastSessionRating)
}

func TestApplySessionResult_ComebackRoundTrip(t *testing.T) {
	svc := NewProgressionService()

	// 从1000跌到990：记录谷底，不触发成就
	user := userWith(1000, 1000, 0, 0)
	outcome := svc.ApplySessionResult(user, 990, 1000)
	assert.Empty(t, outcome.Qualified)
	assert.Equal(t, 990, outcome.LastRatingDrop)

	// 回升到1005（≥ 历史最佳）：恰好触发一次回升成就
	user = userWith(1000, 990, 0, 990)
	outcome = svc.ApplySessionResult(user, 1005, 990)
	assert.Contains(t, outcome.Qualified, AchievementComeback)
	assert.Equal(t, 0, outcome.LastRatingDrop)

	// 再次回升不重复触发
	user = userWith(1005, 1005, 1, 0)
	outcome = svc.ApplySessionResult(user, 1010, 1005)
	assert.NotContains(t, outcome.Qualified, AchievementComeback)
}

func TestApplySessionResult_SmallDropNeverQualifiesComeback(t *testing.T) {
	svc := NewProgressionService()

	// 只跌2分：不记录下跌事件
	user := userWith(1000, 1000, 0, 0)
	outcome := svc.ApplySessionResult(user, 998, 1000)
	assert.Equal(t, 0, outcome.LastRatingDrop)

	// 回升后自然也没有回升成就
	user = userWith(1000, 998, 0, 0)
	outcome = svc.ApplySessionResult(user, 1001, 998)
	assert.NotContains(t, outcome.Qualified, AchievementComeback)
}

func TestApplySessionResult_DropTracksLowestPoint(t *testing.T) {
	svc := NewProgressionService()

	// 已有谷底985，继续跌到980：谷底更新
	user := userWith(1000, 985, 0, 985)
	outcome := svc.ApplySessionResult(user, 980, 985)
	assert.Equal(t, 980, outcome.LastRatingDrop)

	// 回升到995但未到历史最佳：谷底保留
	user = userWith(1000, 980, 0, 980)
	outcome = svc.ApplySessionResult(user, 995, 980)
	assert.Equal(t, 980, outcome.LastRatingDrop)
	assert.NotContains(t, outcome.Qualified, AchievementComeback)
}

func TestApplySessionResult_ImprovementStreak(t *testing.T) {
	svc := NewProgressionService()

	user := &model.User{}
	start := 100
	var qualifications int
	for i := 0; i < 6; i++ {
		end := start + 10
		outcome := svc.ApplySessionResult(user, end, start)

		for _, name := range outcome.Qualified {
			if name == AchievementImprovements {
				qualifications++
				// 恰好在第5场触发
				assert.Equal(t, 5, outcome.ImprovementStreak)
				assert.Equal(t, 4, i)
			}
		}

		user.BestRatingEver = outcome.BestRatingEver
		user.LastSessionRating = outcome.LastSessionRating
		user.ImprovementStreak = outcome.ImprovementStreak
		user.LastRatingDrop = outcome.LastRatingDrop
		start = end
	}

	assert.Equal(t, 1, qualifications)
}

func TestApplySessionResult_StreakResetAndHold(t *testing.T) {
	svc := NewProgressionService()

	// 下跌清零
	outcome := svc.ApplySessionResult(userWith(1000, 900, 3, 0), 890, 900)
	assert.Equal(t, 0, outcome.ImprovementStreak)

	// 持平不变
	outcome = svc.ApplySessionResult(userWith(1000, 900, 3, 0), 900, 900)
	assert.Equal(t, 3, outcome.ImprovementStreak)
}

func TestApplySessionResult_AlwaysSetsLastSessionRating(t *testing.T) {
	svc := NewProgressionService()

	for _, end := range []int{100, 500, 1000} {
		outcome := svc.ApplySessionResult(userWith(1000, 700, 0, 0), end, 700)
		assert.Equal(t, end, outcome.LastSessionRating)
		require.Contains(t, outcome.Updates, "last_session_rating")
		assert.Equal(t, end, outcome.Updates["last_session_rating"])
	}
}
