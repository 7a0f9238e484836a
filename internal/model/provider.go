package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 供应商家族，封闭枚举
// custom 家族无法被解析流水线使用，任何解析请求都会立即失败
const (
	FamilyOpenAI = "openai"
	FamilyGemini = "gemini"
	FamilyQwen   = "qwen"
	FamilyCustom = "custom"
)

// ValidFamily 判断是否为已知家族
func ValidFamily(family string) bool {
	switch family {
	case FamilyOpenAI, FamilyGemini, FamilyQwen, FamilyCustom:
		return true
	}
	return false
}

// ProviderConfig AI 供应商配置，解析流水线只读消费
type ProviderConfig struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Family       string    `gorm:"size:20;not null" json:"family"`
	Endpoint     string    `gorm:"size:500" json:"endpoint"`
	APIKey       string    `gorm:"size:255" json:"-"`
	DefaultModel string    `gorm:"size:100" json:"default_model"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// 提示词设置键
const (
	SettingKeyQuestionPrompt  = "question_parse_format" // 题库解析提示词
	SettingKeyKnowledgePrompt = "knowledge_format"      // 知识库解析提示词
)

// Setting 键值设置
type Setting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Key       string         `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     datatypes.JSON `json:"value"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// PromptSetting 提示词设置的类型化载荷
// SystemPrompt 为空视为未配置，回退到内置默认提示词
type PromptSetting struct {
	SystemPrompt string `json:"system_prompt"`
}

// PromptSetting 解析设置值为类型化的提示词载荷
func (s *Setting) PromptSetting() (*PromptSetting, error) {
	var ps PromptSetting
	if len(s.Value) == 0 {
		return &ps, nil
	}
	if err := json.Unmarshal(s.Value, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

// TableName 指定表名
func (ProviderConfig) TableName() string {
	return "provider_configs"
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
