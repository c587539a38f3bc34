package main

import (
	"github.com/stablefront/internal/config"
	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/models"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 示例商品，价格为 USDC 原子单位（6 位小数）
	products := []models.Product{
		{
			Name:        "Wireless Earbuds Pro",
			Description: "Active noise cancelling earbuds with 30h battery life.",
			PriceUSDC:   49_990_000, // 49.99 USDC
			Images:      models.StringArray{"/uploads/earbuds-1.jpg", "/uploads/earbuds-2.jpg"},
			Rating:      4.7,
			IsActive:    true,
		},
		{
			Name:        "Mechanical Keyboard 75%",
			Description: "Hot-swappable switches, RGB backlight, USB-C.",
			PriceUSDC:   89_000_000, // 89.00 USDC
			Images:      models.StringArray{"/uploads/keyboard-1.jpg"},
			Rating:      4.5,
			IsActive:    true,
		},
		{
			Name:        "USB-C Hub 8-in-1",
			Description: "HDMI 4K, 100W PD, SD card reader, gigabit ethernet.",
			PriceUSDC:   29_500_000, // 29.50 USDC
			Images:      models.StringArray{"/uploads/hub-1.jpg"},
			Rating:      4.3,
			IsActive:    true,
		},
		{
			Name:        "Smart Water Bottle",
			Description: "Tracks hydration, glows to remind you to drink.",
			PriceUSDC:   19_990_000, // 19.99 USDC
			Images:      models.StringArray{"/uploads/bottle-1.jpg"},
			Rating:      4.1,
			IsActive:    true,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", product.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			} else {
				stdLog.Printf("Created product: %s", product.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Name)
		}
	}

	if err := models.InitDefaultMerchant("", ""); err != nil {
		stdLog.Printf("Failed to init default merchant: %v", err)
	}
	stdLog.Printf("Seed completed")
}
