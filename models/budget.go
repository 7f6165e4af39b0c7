package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultBudgetName 未命名预算的默认名称
const DefaultBudgetName = "Budget"

// AllocationMap 类别到预算金额的映射，数据库中序列化为 JSON 对象
// （{"餐饮": 1200, "交通": 300} 形式，所有消费端按此格式消费）。
type AllocationMap map[string]float64

// Value 实现 driver.Valuer
func (m AllocationMap) Value() (driver.Value, error) {
	if m == nil {
		m = AllocationMap{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner
func (m *AllocationMap) Scan(value interface{}) error {
	if value == nil {
		*m = AllocationMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("无法解析 allocation 字段: %T", value)
	}
}

// Budget 预算模型：总额 + 各类别分配
// 一个用户可以同时持有多份预算，更新时间最新的一份视为“当前预算”。
type Budget struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:100;not null;default:Budget"`
	TotalAmount float64        `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Allocation  AllocationMap  `json:"allocation" gorm:"type:json"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}
