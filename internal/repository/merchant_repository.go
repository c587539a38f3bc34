package repository

import (
	"errors"

	"github.com/stablefront/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository 商户账号数据访问接口
type MerchantRepository interface {
	GetByID(id uint) (*models.Merchant, error)
	GetByUsername(username string) (*models.Merchant, error)
}

// GormMerchantRepository GORM 实现
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository 创建商户仓库
func NewMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// GetByID 根据 ID 获取商户
func (r *GormMerchantRepository) GetByID(id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// GetByUsername 根据登录名获取商户
func (r *GormMerchantRepository) GetByUsername(username string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.Where("username = ?", username).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}
