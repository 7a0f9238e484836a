package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zhiqutech/tiku/internal/service"
	"github.com/zhiqutech/tiku/internal/service/provider"
)

// ProviderHandler 供应商配置处理器，仅管理员可用
type ProviderHandler struct {
	svc *service.Services
}

// NewProviderHandler 创建供应商配置处理器
func NewProviderHandler(svc *service.Services) *ProviderHandler {
	return &ProviderHandler{svc: svc}
}

// Create 创建供应商
func (h *ProviderHandler) Create(c *gin.Context) {
	var req provider.SaveProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	cfg, err := h.svc.Provider.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, cfg)
}

// Get 获取供应商
func (h *ProviderHandler) Get(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid provider id")
		return
	}

	cfg, err := h.svc.Provider.Get(c.Request.Context(), id)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, cfg)
}

// List 列出供应商
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.svc.Provider.List(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, providers)
}

// Update 更新供应商
func (h *ProviderHandler) Update(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid provider id")
		return
	}

	var req provider.SaveProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	cfg, err := h.svc.Provider.Update(c.Request.Context(), id, &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, cfg)
}

// Delete 删除供应商
func (h *ProviderHandler) Delete(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid provider id")
		return
	}

	if err := h.svc.Provider.Delete(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}
