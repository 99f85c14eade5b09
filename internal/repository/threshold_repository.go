package repository

import (
	"errors"

	"skill_quest_backend/internal/model"
	"skill_quest_backend/internal/util"

	"gorm.io/gorm"
)

type ThresholdRepository struct {
	DB *gorm.DB
}

func NewThresholdRepository(db *gorm.DB) *ThresholdRepository {
	return &ThresholdRepository{DB: db}
}

func (r *ThresholdRepository) MinExperienceForLevel(level int) (int, error) {
	var t model.LevelThreshold
	err := r.DB.Where("level = ?", level).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, util.ErrUnknownLevel
	}
	if err != nil {
		return 0, err
	}
	return t.MinExperience, nil
}

// RankForRating 取阈值不超过评分的最高段位
func (r *ThresholdRepository) RankForRating(rating int) (string, error) {
	var t model.RankThreshold
	err := r.DB.Where("min_rating <= ?", rating).
		Order("min_rating DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrNoQualifyingRank
	}
	if err != nil {
		return "", err
	}
	return t.Rank, nil
}
