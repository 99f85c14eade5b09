package model

import "time"

// Achievement 成就定义（静态参考数据）
type Achievement struct {
	BaseModel
	Name           string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description    string `gorm:"size:255" json:"description"`
	Icon           string `gorm:"size:255" json:"icon"`
	ConditionType  string `gorm:"size:50" json:"conditionType"`
	ConditionValue int    `gorm:"default:0" json:"conditionValue"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户解锁记录，(user_id, achievement_id) 唯一
type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;type:bigint unsigned" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement;type:bigint unsigned" json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
