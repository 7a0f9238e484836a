// Package handler 实现 HTTP 接口层
package handler

import (
	"github.com/zhiqutech/tiku/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth     *AuthHandler
	Document *DocumentHandler
	Question *QuestionHandler
	Provider *ProviderHandler
	Setting  *SettingHandler
	Progress *ProgressHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc),
		Document: NewDocumentHandler(svc),
		Question: NewQuestionHandler(svc),
		Provider: NewProviderHandler(svc),
		Setting:  NewSettingHandler(svc),
		Progress: NewProgressHandler(svc),
	}
}
