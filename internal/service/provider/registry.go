package provider

import (
	"context"
	"fmt"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

// Registry 供应商注册表服务，解析流水线对其只读
type Registry struct {
	repo *repository.ProviderRepository
}

// NewRegistry 创建供应商注册表服务
func NewRegistry(repo *repository.ProviderRepository) *Registry {
	return &Registry{repo: repo}
}

// SaveProviderRequest 创建/更新供应商请求
type SaveProviderRequest struct {
	Name         string `json:"name" binding:"required"`
	Family       string `json:"family" binding:"required"`
	Endpoint     string `json:"endpoint"`
	APIKey       string `json:"api_key"`
	DefaultModel string `json:"default_model"`
	Active       *bool  `json:"active"`
}

// Create 创建供应商配置
func (r *Registry) Create(ctx context.Context, req *SaveProviderRequest) (*model.ProviderConfig, error) {
	if !model.ValidFamily(req.Family) {
		return nil, fmt.Errorf("unknown provider family: %s", req.Family)
	}

	cfg := &model.ProviderConfig{
		Name:         req.Name,
		Family:       req.Family,
		Endpoint:     req.Endpoint,
		APIKey:       req.APIKey,
		DefaultModel: req.DefaultModel,
		Active:       true,
	}
	if req.Active != nil {
		cfg.Active = *req.Active
	}

	if err := r.repo.Create(cfg); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return cfg, nil
}

// Get 获取供应商配置
func (r *Registry) Get(ctx context.Context, id uint) (*model.ProviderConfig, error) {
	return r.repo.GetByID(id)
}

// List 列出供应商配置
func (r *Registry) List(ctx context.Context) ([]*model.ProviderConfig, error) {
	return r.repo.List()
}

// Update 更新供应商配置
func (r *Registry) Update(ctx context.Context, id uint, req *SaveProviderRequest) (*model.ProviderConfig, error) {
	cfg, err := r.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("provider not found: %w", err)
	}

	if !model.ValidFamily(req.Family) {
		return nil, fmt.Errorf("unknown provider family: %s", req.Family)
	}

	cfg.Name = req.Name
	cfg.Family = req.Family
	cfg.Endpoint = req.Endpoint
	if req.APIKey != "" {
		cfg.APIKey = req.APIKey
	}
	cfg.DefaultModel = req.DefaultModel
	if req.Active != nil {
		cfg.Active = *req.Active
	}

	if err := r.repo.Update(cfg); err != nil {
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}
	return cfg, nil
}

// Delete 删除供应商配置
func (r *Registry) Delete(ctx context.Context, id uint) error {
	if err := r.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete provider: %w", err)
	}
	return nil
}
