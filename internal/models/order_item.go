package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
// 单价为下单时的商品价格快照，后续改价不影响既有订单。
type OrderItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`                          // 主键
	OrderID       uint           `gorm:"index;not null" json:"order_id"`                // 订单ID
	ProductID     uint           `gorm:"index;not null" json:"product_id"`              // 商品ID
	Title         string         `gorm:"not null" json:"title"`                         // 商品标题快照
	UnitPriceUSDC int64          `gorm:"not null;default:0" json:"unit_price_usdc"`     // 单价快照（原子单位）
	Quantity      int            `gorm:"not null" json:"quantity"`                      // 数量
	TotalUSDC     int64          `gorm:"not null;default:0" json:"total_usdc"`          // 小计（原子单位）
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                    // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
