package repository

import (
	"errors"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByTxHash(txHash string) (*models.Order, error)
	SetTxHash(orderNo, txHash string) (bool, error)
	UpdateStatusIfCurrent(id uint, currentStatus, newStatus string, updates map[string]interface{}) (bool, error)
	UpdatePayoutFields(id uint, updates map[string]interface{}) error
	ListUnsettledPayouts(limit int) ([]models.Order, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项（单事务）
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单编号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByTxHash 根据链上交易哈希获取订单（精确匹配，区分大小写）
func (r *GormOrderRepository) GetByTxHash(txHash string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("blockchain_tx_hash = ?", txHash).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// SetTxHash 绑定链上交易哈希（仅允许在哈希为空时写入一次）
func (r *GormOrderRepository) SetTxHash(orderNo, txHash string) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("order_no = ? AND blockchain_tx_hash IS NULL", orderNo).
		Update("blockchain_tx_hash", txHash)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStatusIfCurrent 条件状态更新。
// 只有当前状态仍为 currentStatus 时才会写入，RowsAffected 决定竞争胜者；
// 这是 webhook 重投并发下保证单次出金触发的串行化点。
func (r *GormOrderRepository) UpdateStatusIfCurrent(id uint, currentStatus, newStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = newStatus
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, currentStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdatePayoutFields 更新出金相关字段
func (r *GormOrderRepository) UpdatePayoutFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// ListUnsettledPayouts 已创建出金请求但尚未结算完成的订单
func (r *GormOrderRepository) ListUnsettledPayouts(limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []models.Order
	err := r.db.Model(&models.Order{}).
		Where("payout_request_id <> ''").
		Where("payout_status NOT IN ?", []string{
			constants.PayoutStatusCompleted,
			constants.PayoutStatusCanceled,
			constants.PayoutStatusFailed,
		}).
		Order("id asc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAdmin 商户端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CustomerEmail != "" {
		query = query.Where("customer_email = ?", filter.CustomerEmail)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
