package service

import (
	"errors"
	"sync"
	"time"

	"skill_quest_backend/internal/model"
	"skill_quest_backend/internal/repository"
	"skill_quest_backend/pkg/logger"
	"skill_quest_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AchievementDefinitionStore 成就定义协作方
type AchievementDefinitionStore interface {
	ListAll() ([]model.Achievement, error)
}

// UnlockStore 解锁记录协作方
type UnlockStore interface {
	FindUnlock(userID, achievementID uint) (*model.UserAchievement, error)
	CreateUnlock(unlock *model.UserAchievement) error
}

// AchievementService 幂等解锁网关 + 成就读取接口。
// name→id 缓存懒加载，进程级生命周期，可通过 InvalidateCache 手动失效。
type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	UserRepo        *repository.UserRepository

	Definitions AchievementDefinitionStore
	Unlocks     UnlockStore

	mu       sync.RWMutex
	nameToID map[string]uint
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	userRepo *repository.UserRepository,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		UserRepo:        userRepo,
		Definitions:     achievementRepo,
		Unlocks:         achievementRepo,
	}
}

// Unlock 幂等记录解锁。所有失败都只记日志不上抛：
// 徽章写入失败绝不能拖垮答题或会话结算请求。
func (s *AchievementService) Unlock(userID uint, achievementName string) *model.UserAchievement {
	achievementID, ok := s.resolveID(achievementName)
	if !ok {
		// 成就未配置：静默跳过
		logger.Log.Warn("achievement not configured, skipping unlock",
			zap.String("name", achievementName))
		monitoring.AchievementUnlocks.WithLabelValues("unknown").Inc()
		return nil
	}

	existing, err := s.Unlocks.FindUnlock(userID, achievementID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Error("unlock lookup failed",
			zap.Uint("userId", userID),
			zap.String("name", achievementName),
			zap.Error(err))
		monitoring.AchievementUnlocks.WithLabelValues("error").Inc()
		return nil
	}
	if existing != nil {
		monitoring.AchievementUnlocks.WithLabelValues("already_unlocked").Inc()
		return nil
	}

	unlock := &model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    time.Now(),
	}
	if err := s.Unlocks.CreateUnlock(unlock); err != nil {
		// 先查后插不是原子操作，并发时可能撞唯一索引，同样按幂等处理
		logger.Log.Error("unlock insert failed",
			zap.Uint("userId", userID),
			zap.String("name", achievementName),
			zap.Error(err))
		monitoring.AchievementUnlocks.WithLabelValues("error").Inc()
		return nil
	}

	monitoring.AchievementUnlocks.WithLabelValues("unlocked").Inc()
	return unlock
}

// InvalidateCache 清空 name→id 缓存，下次解锁时重新加载
func (s *AchievementService) InvalidateCache() {
	s.mu.Lock()
	s.nameToID = nil
	s.mu.Unlock()
}

func (s *AchievementService) resolveID(name string) (uint, bool) {
	s.mu.RLock()
	cache := s.nameToID
	s.mu.RUnlock()

	if cache == nil {
		definitions, err := s.Definitions.ListAll()
		if err != nil {
			logger.Log.Error("failed to load achievement definitions", zap.Error(err))
			return 0, false
		}
		cache = make(map[string]uint, len(definitions))
		for _, d := range definitions {
			cache[d.Name] = d.ID
		}
		// 并发初始化时最多重复加载一次，结果等价
		s.mu.Lock()
		s.nameToID = cache
		s.mu.Unlock()
	}

	id, ok := cache[name]
	return id, ok
}

type UserAchievements struct {
	Rating      int                 `json:"rating"`
	Rank        string              `json:"rank"`
	Level       int                 `json:"level"`
	Badges      []model.Achievement `json:"badges"`
	Leaderboard []LeaderboardEntry  `json:"leaderboard"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	User   string `json:"user"`
	Rating int    `json:"rating"`
}

func (s *AchievementService) GetUserAchievements(userID uint) (*UserAchievements, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	achievements, err := s.AchievementRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.GetLeaderboard(10)
	if err != nil {
		return nil, err
	}

	return &UserAchievements{
		Rating:      user.RatingCurrent,
		Rank:        user.Rank,
		Level:       user.Level,
		Badges:      achievements,
		Leaderboard: leaderboard,
	}, nil
}

func (s *AchievementService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	users, err := s.UserRepo.FindTopByRating(limit)
	if err != nil {
		return nil, err
	}

	leaderboard := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		leaderboard[i] = LeaderboardEntry{
			Rank:   i + 1,
			User:   user.Name,
			Rating: user.RatingCurrent,
		}
	}

	return leaderboard, nil
}
