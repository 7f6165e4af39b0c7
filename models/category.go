package models

import (
	"time"

	"gorm.io/gorm"
)

// ExpenseCategory 推荐消费类别
// 仅作为录入时的候选列表，消费记录的类别不强制来自此表。
type ExpenseCategory struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Sort      int            `json:"sort" gorm:"default:0;index"`
	Color     string         `json:"color" gorm:"size:20;default:#64748b"` // 颜色代码，如 #ef4444
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

// GetDefaultCategories 内置的默认消费类别
func GetDefaultCategories() []string {
	return []string{"餐饮", "交通", "购物", "娱乐", "医疗", "教育", "住房", "其他"}
}
