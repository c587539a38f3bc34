package models

import (
	"github.com/stablefront/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultMerchant 初始化默认商户账号
func InitDefaultMerchant(username, password string) error {
	var count int64
	DB.Model(&Merchant{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "merchant"
	}
	if password == "" {
		password = "merchant123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	merchant := Merchant{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := DB.Create(&merchant).Error; err != nil {
		return err
	}

	if password == "merchant123" {
		logger.Warnw("default_merchant_created_with_default_password", "username", username)
		logger.Warnw("default_merchant_password_change_required", "username", username)
	} else {
		logger.Warnw("default_merchant_created", "username", username, "password_hidden", true)
	}
	return nil
}
