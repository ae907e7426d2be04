package app

import (
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/pkg/common"
)

// ConfigManager reads and writes runtime settings from the sys_config table.
// Values are stored as strings and cast on access.
type ConfigManager struct {
	app *Application
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app}
}

func (m *ConfigManager) GetString(category, name string) string {
	var cfg domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, name).First(&cfg).Error
	if err != nil {
		return ""
	}
	return cfg.Value
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// SetValue creates or updates a setting.
func (m *ConfigManager) SetValue(category, name, value string) error {
	var cfg domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, name).First(&cfg).Error
	if err != nil {
		return m.app.gormDB.Create(&domain.SysConfig{
			ID:        common.UUIDint64(),
			Type:      category,
			Name:      name,
			Value:     value,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error
	}
	err = m.app.gormDB.Model(&domain.SysConfig{}).
		Where("id = ?", cfg.ID).
		Updates(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		zap.L().Error("failed to update setting",
			zap.String("category", category),
			zap.String("name", name),
			zap.Error(err))
	}
	return err
}
