package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skill_quest_backend/internal/model"
	"skill_quest_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const questionCacheTTL = 5 * time.Minute

type QuestionRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewQuestionRepository(db *gorm.DB, rdb *redis.Client) *QuestionRepository {
	return &QuestionRepository{DB: db, RDB: rdb}
}

// FindByLevel 按难度等级取题，读多写少，经过 Redis 缓存
func (r *QuestionRepository) FindByLevel(level int) ([]model.Question, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("questions:level:%d", level)

	if r.RDB != nil {
		cached, err := r.RDB.Get(ctx, cacheKey).Result()
		if err == nil {
			var questions []model.Question
			if err := json.Unmarshal([]byte(cached), &questions); err == nil {
				return questions, nil
			}
		}
	}

	var questions []model.Question
	if err := r.DB.Where("level = ?", level).Find(&questions).Error; err != nil {
		return nil, err
	}

	if r.RDB != nil && len(questions) > 0 {
		data, err := json.Marshal(questions)
		if err == nil {
			if err := r.RDB.Set(ctx, cacheKey, data, questionCacheTTL).Err(); err != nil {
				logger.Log.Warn("question cache write failed", zap.Int("level", level), zap.Error(err))
			}
		}
	}

	return questions, nil
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}
