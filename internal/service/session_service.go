package service

import (
	"skill_quest_backend/internal/model"
	"skill_quest_backend/internal/util"
	"skill_quest_backend/pkg/logger"

	"go.uber.org/zap"
)

// UserStore 会话结算需要的用户读写能力
type UserStore interface {
	FindByID(id uint) (*model.User, error)
	UpdateFields(userID uint, fields map[string]interface{}) error
}

// SessionService 串联会话结算链路：定级 → 进度更新 → 成就解锁
type SessionService struct {
	UserRepo     UserStore
	Rating       *RatingService
	Progression  *ProgressionService
	Achievements *AchievementService
}

func NewSessionService(
	userRepo UserStore,
	rating *RatingService,
	progression *ProgressionService,
	achievements *AchievementService,
) *SessionService {
	return &SessionService{
		UserRepo:     userRepo,
		Rating:       rating,
		Progression:  progression,
		Achievements: achievements,
	}
}

type SessionCompletionResult struct {
	Rating               int      `json:"rating"`
	Rank                 string   `json:"rank"`
	Level                int      `json:"level"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
}

// CompleteDiagnostic 诊断结束后的结算。
// diagnosticCompleted 必须成功落库，否则学员可以重复测试，
// 所以这里的写失败作为可重试错误上抛；进度字段的写失败则只记日志。
func (s *SessionService) CompleteDiagnostic(userID uint, finalLevel int, telemetry *PerformanceTelemetry) (*SessionCompletionResult, error) {
	if finalLevel < MinWorkingLevel || finalLevel > MaxWorkingLevel {
		return nil, util.ErrInvalidFinalLevel
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if user.DiagnosticCompleted {
		// 已定级的评分不允许通过重测覆盖
		return nil, util.ErrDiagnosticAlreadyDone
	}

	placement, err := s.Rating.CalibrateRating(finalLevel, telemetry)
	if err != nil {
		return nil, err
	}

	outcome := s.Progression.ApplySessionResult(user, placement.Rating, user.RatingCurrent)

	err = s.UserRepo.UpdateFields(userID, map[string]interface{}{
		"rating_current":       placement.Rating,
		"level":                placement.Level,
		"rank":                 placement.Rank,
		"diagnostic_completed": true,
	})
	if err != nil {
		logger.Log.Error("failed to persist diagnostic completion",
			zap.Uint("userId", userID), zap.Error(err))
		return nil, util.ErrDiagnosticPersist
	}

	s.persistProgress(userID, outcome)

	return &SessionCompletionResult{
		Rating:               placement.Rating,
		Rank:                 placement.Rank,
		Level:                placement.Level,
		UnlockedAchievements: s.unlockQualified(userID, outcome.Qualified),
	}, nil
}

// CompletePractice 练习/对战会话结算，起始与结束评分由调用方给定，不重新定级
func (s *SessionService) CompletePractice(userID uint, sessionStartRating, sessionEndRating int) (*SessionCompletionResult, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	outcome := s.Progression.ApplySessionResult(user, sessionEndRating, sessionStartRating)

	rank, err := s.Rating.Ranks.RankForRating(sessionEndRating)
	if err != nil {
		return nil, err
	}

	err = s.UserRepo.UpdateFields(userID, map[string]interface{}{
		"rating_current": sessionEndRating,
		"rank":           rank,
	})
	if err != nil {
		// 评分落库失败不阻塞成就判定，调用方可重试
		logger.Log.Error("failed to persist session rating",
			zap.Uint("userId", userID), zap.Error(err))
	}

	s.persistProgress(userID, outcome)

	return &SessionCompletionResult{
		Rating:               sessionEndRating,
		Rank:                 rank,
		Level:                user.Level,
		UnlockedAchievements: s.unlockQualified(userID, outcome.Qualified),
	}, nil
}

// persistProgress 进度字段的写失败与成就解锁解耦，只记日志
func (s *SessionService) persistProgress(userID uint, outcome SessionOutcome) {
	if err := s.UserRepo.UpdateFields(userID, outcome.Updates); err != nil {
		logger.Log.Error("failed to persist progress fields",
			zap.Uint("userId", userID), zap.Error(err))
	}
}

func (s *SessionService) unlockQualified(userID uint, qualified []string) []string {
	unlocked := make([]string, 0, len(qualified))
	for _, name := range qualified {
		if record := s.Achievements.Unlock(userID, name); record != nil {
			unlocked = append(unlocked, name)
		}
	}
	return unlocked
}
