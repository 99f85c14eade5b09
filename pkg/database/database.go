package database

import (
	"fmt"
	"log"

	"skill_quest_backend/internal/config"
	"skill_quest_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.LevelThreshold{},
		&model.RankThreshold{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认等级经验阈值（1-10级）
	var ltCount int64
	db.Model(&model.LevelThreshold{}).Count(&ltCount)
	if ltCount == 0 {
		defaults := []model.LevelThreshold{
			{Level: 1, MinExperience: 100},
			{Level: 2, MinExperience: 250},
			{Level: 3, MinExperience: 450},
			{Level: 4, MinExperience: 700},
			{Level: 5, MinExperience: 1000},
			{Level: 6, MinExperience: 1350},
			{Level: 7, MinExperience: 1650},
			{Level: 8, MinExperience: 2000},
			{Level: 9, MinExperience: 2400},
			{Level: 10, MinExperience: 2850},
		}
		for _, t := range defaults {
			db.Create(&t)
		}
	}

	// 默认段位阈值，最低段位必须为 0，否则段位查找可能无解
	var rtCount int64
	db.Model(&model.RankThreshold{}).Count(&rtCount)
	if rtCount == 0 {
		defaults := []model.RankThreshold{
			{Rank: "Bronze", MinRating: 0},
			{Rank: "Silver", MinRating: 400},
			{Rank: "Gold", MinRating: 800},
			{Rank: "Platinum", MinRating: 1200},
			{Rank: "Diamond", MinRating: 1600},
			{Rank: "Master", MinRating: 2000},
			{Rank: "Grandmaster", MinRating: 2400},
		}
		for _, t := range defaults {
			db.Create(&t)
		}
	}

	// 默认成就定义
	var acCount int64
	db.Model(&model.Achievement{}).Count(&acCount)
	if acCount == 0 {
		defaults := []model.Achievement{
			{Name: "Personal Best Achieved", Description: "刷新个人最佳评分", Icon: "trophy", ConditionType: "personal_best", ConditionValue: 0},
			{Name: "Comeback Completed", Description: "评分下跌后恢复到历史最佳", Icon: "phoenix", ConditionType: "comeback", ConditionValue: 3},
			{Name: "Consecutive Improvements", Description: "连续5次学习会话评分提升", Icon: "flame", ConditionType: "improvement_streak", ConditionValue: 5},
		}
		for _, a := range defaults {
			db.Create(&a)
		}
	}

	return db, nil
}
