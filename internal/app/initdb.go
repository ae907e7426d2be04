package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "warungpos"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

type settingSchema struct {
	Key         string
	Default     string
	Description string
}

var settingSchemas = []settingSchema{
	{Key: "store.name", Default: "Warung POS", Description: "Store name printed on receipts"},
	{Key: "store.address", Default: "", Description: "Store address printed on receipts"},
	{Key: "store.phone", Default: "", Description: "Store phone printed on receipts"},
	{Key: "pos.receipt_footer", Default: "Thank you for your visit", Description: "Footer line on receipts"},
	{Key: "pos.opr_log_days", Default: "365", Description: "Retention for operator logs in days"},
}

func (a *Application) checkSettings() {
	// Iterate over all configuration definitions, checking and initializing
	// missing entries
	for sortid, schema := range settingSchemas {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}

		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkCatalog seeds a starter menu so a fresh install has something to sell.
func (a *Application) checkCatalog() {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		zap.L().Error("failed to query product count", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	now := time.Now()
	seed := []struct {
		category string
		products []domain.Product
	}{
		{
			category: "Makanan",
			products: []domain.Product{
				{Name: "Nasi Goreng Spesial", Price: 25000, Stock: 40, Description: "Nasi goreng with chicken, egg and crackers"},
				{Name: "Ayam Bakar", Price: 30000, Stock: 25, Description: "Grilled chicken with sambal"},
				{Name: "Mie Goreng", Price: 22000, Stock: 35, Description: "Fried noodles with vegetables"},
			},
		},
		{
			category: "Minuman",
			products: []domain.Product{
				{Name: "Es Teh Manis", Price: 8000, Stock: 100, Description: "Sweet iced tea"},
				{Name: "Kopi Susu", Price: 15000, Stock: 60, Description: "Milk coffee"},
				{Name: "Jus Alpukat", Price: 18000, Stock: 30, Description: "Avocado juice"},
			},
		},
	}

	for _, group := range seed {
		cat := domain.Category{
			ID:        common.UUIDint64(),
			Name:      group.category,
			Remark:    "seed",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := a.gormDB.Create(&cat).Error; err != nil {
			zap.L().Error("failed to seed category", zap.String("name", group.category), zap.Error(err))
			continue
		}
		for _, p := range group.products {
			p.ID = common.UUIDint64()
			p.CategoryID = cat.ID
			p.IsActive = true
			p.CreatedAt = now
			p.UpdatedAt = now
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to seed product", zap.String("name", p.Name), zap.Error(err))
			}
		}
	}
	zap.L().Info("seeded starter catalog")
}
