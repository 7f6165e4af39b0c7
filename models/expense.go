package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense 消费记录模型
// 类别为自由文本标签，区分大小写，原样参与统计分组。
// 记录创建后消费时间与归属用户不可修改，只允许更新金额、类别和说明。
type Expense struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category    string         `json:"category" gorm:"size:50;not null"`
	Description string         `json:"description" gorm:"size:255"`
	ExpenseTime time.Time      `json:"expense_time" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
