// Package setting 实现提示词等键值设置的维护
package setting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

// Service 设置服务
type Service struct {
	repos *repository.Repositories
}

// NewService 创建设置服务
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// validSettingKey 判断是否为支持的设置键
func validSettingKey(key string) bool {
	switch key {
	case model.SettingKeyQuestionPrompt, model.SettingKeyKnowledgePrompt:
		return true
	}
	return false
}

// SavePromptRequest 保存提示词请求
type SavePromptRequest struct {
	SystemPrompt string `json:"system_prompt"`
}

// GetPrompt 获取提示词设置，未配置时返回空载荷
func (s *Service) GetPrompt(ctx context.Context, key string) (*model.PromptSetting, error) {
	if !validSettingKey(key) {
		return nil, fmt.Errorf("unknown setting key: %s", key)
	}

	setting, err := s.repos.Setting.Get(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.PromptSetting{}, nil
		}
		return nil, fmt.Errorf("failed to load setting: %w", err)
	}

	ps, err := setting.PromptSetting()
	if err != nil {
		return nil, fmt.Errorf("setting payload is not valid: %w", err)
	}
	return ps, nil
}

// SavePrompt 保存提示词设置，空提示词表示回退到内置默认
func (s *Service) SavePrompt(ctx context.Context, key string, req *SavePromptRequest) error {
	if !validSettingKey(key) {
		return fmt.Errorf("unknown setting key: %s", key)
	}

	payload, err := json.Marshal(&model.PromptSetting{SystemPrompt: req.SystemPrompt})
	if err != nil {
		return fmt.Errorf("failed to marshal setting: %w", err)
	}

	if err := s.repos.Setting.Put(key, payload); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}
