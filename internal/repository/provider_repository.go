package repository

import (
	"github.com/zhiqutech/tiku/internal/model"
	"gorm.io/gorm"
)

// ProviderRepository 供应商配置数据访问
type ProviderRepository struct {
	db *gorm.DB
}

// NewProviderRepository 创建供应商仓库
func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// Create 创建供应商配置
func (r *ProviderRepository) Create(cfg *model.ProviderConfig) error {
	return r.db.Create(cfg).Error
}

// GetByID 获取供应商配置
func (r *ProviderRepository) GetByID(id uint) (*model.ProviderConfig, error) {
	var cfg model.ProviderConfig
	err := r.db.Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List 列出供应商配置
func (r *ProviderRepository) List() ([]*model.ProviderConfig, error) {
	var cfgs []*model.ProviderConfig
	err := r.db.Order("id ASC").Find(&cfgs).Error
	return cfgs, err
}

// Update 更新供应商配置
func (r *ProviderRepository) Update(cfg *model.ProviderConfig) error {
	return r.db.Save(cfg).Error
}

// Delete 删除供应商配置
func (r *ProviderRepository) Delete(id uint) error {
	return r.db.Delete(&model.ProviderConfig{}, "id = ?", id).Error
}
