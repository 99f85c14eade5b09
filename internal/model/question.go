package model

import "encoding/json"

// Question 诊断测试题目，按难度等级（1-10）分层
type Question struct {
	BaseModel
	Level        int             `gorm:"index;not null" json:"level"`
	QuestionType string          `gorm:"size:50" json:"questionType"`
	Content      string          `gorm:"type:text;not null" json:"content"`
	Options      json.RawMessage `gorm:"type:json" json:"options"`
	Answer       string          `gorm:"size:255" json:"-"`
	Explanation  string          `gorm:"type:text" json:"explanation,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
