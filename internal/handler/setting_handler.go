package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zhiqutech/tiku/internal/service"
	"github.com/zhiqutech/tiku/internal/service/setting"
)

// SettingHandler 设置处理器，仅管理员可用
type SettingHandler struct {
	svc *service.Services
}

// NewSettingHandler 创建设置处理器
func NewSettingHandler(svc *service.Services) *SettingHandler {
	return &SettingHandler{svc: svc}
}

// GetPrompt 获取提示词设置
func (h *SettingHandler) GetPrompt(c *gin.Context) {
	key := c.Param("key")

	ps, err := h.svc.Setting.GetPrompt(c.Request.Context(), key)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, ps)
}

// SavePrompt 保存提示词设置
func (h *SettingHandler) SavePrompt(c *gin.Context) {
	key := c.Param("key")

	var req setting.SavePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Setting.SavePrompt(c.Request.Context(), key, &req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	NoContent(c)
}
