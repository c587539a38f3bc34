package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo               string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号
	CustomerEmail         string         `gorm:"index;not null" json:"customer_email"`                          // 客户邮箱
	CustomerWalletAddress string         `gorm:"type:varchar(64)" json:"customer_wallet_address,omitempty"`     // 客户钱包地址
	Status                string         `gorm:"index;not null" json:"status"`                                  // 订单状态
	TokenSymbol           string         `gorm:"type:varchar(16);not null" json:"token_symbol"`                 // 结算代币
	TotalAmountUSDC       int64          `gorm:"not null;default:0" json:"total_amount_usdc"`                   // 实付金额（原子单位）
	BlockchainTxHash      *string        `gorm:"uniqueIndex;type:varchar(128)" json:"blockchain_tx_hash"`       // 链上交易哈希
	PayoutRequestID       string         `gorm:"index;type:varchar(64)" json:"payout_request_id,omitempty"`     // Mural 出金请求 ID
	PayoutID              string         `gorm:"type:varchar(64)" json:"payout_id,omitempty"`                   // Mural 出金单 ID
	PayoutStatus          string         `gorm:"type:varchar(32)" json:"payout_status,omitempty"`               // 出金状态快照
	PayoutAmount          string         `gorm:"type:varchar(32)" json:"payout_amount,omitempty"`               // 出金结算法币金额
	PaidAt                *time.Time     `gorm:"index" json:"paid_at"`                                          // 支付时间
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
