package model

// LevelThreshold 等级 → 最低经验值映射
type LevelThreshold struct {
	BaseModel
	Level         int `gorm:"uniqueIndex;not null" json:"level"`
	MinExperience int `gorm:"not null" json:"minExperience"`
}

func (LevelThreshold) TableName() string {
	return "level_thresholds"
}

// RankThreshold 段位 → 最低评分映射，最低段位的 min_rating 必须为 0
type RankThreshold struct {
	BaseModel
	Rank      string `gorm:"size:50;uniqueIndex;not null" json:"rank"`
	MinRating int    `gorm:"not null" json:"minRating"`
}

func (RankThreshold) TableName() string {
	return "rank_thresholds"
}
