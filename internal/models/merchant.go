package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant 商户账号表（仪表盘登录）
type Merchant struct {
	ID           uint           `gorm:"primarykey" json:"id"`                  // 主键
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`  // 登录名
	PasswordHash string         `gorm:"not null" json:"-"`                     // 密码哈希
	CreatedAt    time.Time      `json:"created_at"`                            // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                            // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                        // 软删除时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
