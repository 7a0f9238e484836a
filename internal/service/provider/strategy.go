// Package provider 实现按供应商家族划分的解析策略
// 每个家族一个实现，负责构造请求报文、调用外部 API 并抽取规范化题目数组
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/service/content"
)

// ParsedQuestion 规范化题目，所有策略的统一产出
type ParsedQuestion struct {
	Number      string   `json:"number,omitempty"`
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  int      `json:"difficulty,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ParseResult 一次解析调用的完整结果
// 无论成败都带上请求与响应报文，供 ParseLog 审计
type ParseResult struct {
	Success         bool             `json:"success"`
	Questions       []ParsedQuestion `json:"questions,omitempty"`
	TotalQuestions  int              `json:"total_questions"`
	Error           string           `json:"error,omitempty"`
	RequestPayload  json.RawMessage  `json:"request_payload,omitempty"`
	ResponsePayload json.RawMessage  `json:"response_payload,omitempty"`
}

// failResult 构造失败结果
func failResult(err error, request, response json.RawMessage) *ParseResult {
	return &ParseResult{
		Success:         false,
		Error:           err.Error(),
		RequestPayload:  request,
		ResponsePayload: response,
	}
}

// Strategy 解析策略
// Parse 不向外抛错：网络失败、响应不可解析、缺少 questions 字段
// 全部折叠为 Success=false 的结果
type Strategy interface {
	// Name 策略标签，记入文档的 parse_method 和解析日志
	Name() string
	// Parse 把适配后的内容交给供应商解析为题目数组
	Parse(ctx context.Context, cont *content.Result, fileName string) *ParseResult
}

// PromptSource 系统提示词来源
// 按业务类型查自定义提示词，未配置时返回空串
type PromptSource interface {
	GetPromptValue(key string) (string, error)
}

// Options 策略构造参数
type Options struct {
	ModelName  string
	Kind       string // question_bank / knowledge_base
	Prompts    PromptSource
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewStrategy 按供应商家族构造解析策略
// custom 家族没有可用的解析实现，立即报错
func NewStrategy(cfg *model.ProviderConfig, opts Options) (Strategy, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	switch cfg.Family {
	case model.FamilyOpenAI:
		return newOpenAIStrategy(cfg, opts), nil
	case model.FamilyGemini:
		return newGeminiStrategy(cfg, opts), nil
	case model.FamilyQwen:
		return newQwenStrategy(cfg, opts), nil
	case model.FamilyCustom:
		return nil, fmt.Errorf("custom provider family is not supported for parsing")
	default:
		return nil, fmt.Errorf("unknown provider family: %s", cfg.Family)
	}
}

// resolvePrompt 解析系统提示词：优先自定义设置，回退内置默认
func resolvePrompt(prompts PromptSource, kind string) string {
	key := model.SettingKeyQuestionPrompt
	if kind == model.DocumentKindKnowledgeBase {
		key = model.SettingKeyKnowledgePrompt
	}

	if prompts != nil {
		custom, err := prompts.GetPromptValue(key)
		if err == nil && custom != "" {
			return custom
		}
	}

	if kind == model.DocumentKindKnowledgeBase {
		return defaultKnowledgePrompt
	}
	return defaultQuestionPrompt
}
