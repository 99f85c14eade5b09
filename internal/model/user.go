package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"Name"`
	Email    string   `gorm:"size:100;unique;not null" json:"Email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('student','admin');default:'student'" json:"Role"`

	// 技能评分与段位
	RatingCurrent int    `gorm:"default:0" json:"ratingCurrent"`
	Level         int    `gorm:"default:1" json:"level"`
	Rank          string `gorm:"size:50" json:"rank"`

	// 跨学习会话的长期进度字段
	BestRatingEver    int `gorm:"default:0" json:"bestRatingEver"`
	LastSessionRating int `gorm:"default:0" json:"lastSessionRating"`
	ImprovementStreak int `gorm:"default:0" json:"improvementStreak"`
	LastRatingDrop    int `gorm:"default:0" json:"lastRatingDrop"`

	DiagnosticCompleted bool      `gorm:"default:false" json:"diagnosticCompleted"`
	LastLogin           time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"LastLogin"`
}

func (User) TableName() string {
	return "users"
}
