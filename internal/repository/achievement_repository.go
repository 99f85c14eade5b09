package repository

import (
	"skill_quest_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) ListAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Find(&achievements).Error
	return achievements, err
}

// FindUnlock 查询用户是否已解锁某成就，未解锁返回 gorm.ErrRecordNotFound
func (r *AchievementRepository) FindUnlock(userID, achievementID uint) (*model.UserAchievement, error) {
	var unlock model.UserAchievement
	err := r.DB.Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&unlock).Error
	if err != nil {
		return nil, err
	}
	return &unlock, nil
}

func (r *AchievementRepository) CreateUnlock(unlock *model.UserAchievement) error {
	return r.DB.Create(unlock).Error
}

// FindByUserID 返回用户已解锁的成就定义
func (r *AchievementRepository) FindByUserID(userID uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}
