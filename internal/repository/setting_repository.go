package repository

import (
	"errors"

	"github.com/zhiqutech/tiku/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 设置数据访问
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get 按键获取设置
func (r *SettingRepository) Get(key string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Put 写入设置，存在则更新
func (r *SettingRepository) Put(key string, value datatypes.JSON) error {
	setting := &model.Setting{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
}

// GetPromptValue 取某个提示词设置键的自定义提示词
// 未配置或载荷非法时返回空串，调用方回退到默认提示词
func (r *SettingRepository) GetPromptValue(key string) (string, error) {
	setting, err := r.Get(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	ps, err := setting.PromptSetting()
	if err != nil {
		return "", nil
	}
	return ps.SystemPrompt, nil
}
