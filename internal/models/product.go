package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                    // 主键
	Name        string         `gorm:"not null;index" json:"name"`              // 商品名称
	Description string         `gorm:"type:text" json:"description"`            // 商品描述
	PriceUSDC   int64          `gorm:"not null;default:0" json:"price_usdc"`    // 价格（USDC 原子单位）
	Images      StringArray    `gorm:"type:json" json:"images"`                 // 图片数组
	SoldUnits   int            `gorm:"not null;default:0" json:"sold_units"`    // 累计销量
	Rating      float64        `gorm:"not null;default:0" json:"rating"`        // 评分
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`     // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                              // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
