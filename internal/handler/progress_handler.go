package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zhiqutech/tiku/internal/middleware"
	"github.com/zhiqutech/tiku/internal/service"
	"github.com/zhiqutech/tiku/internal/service/progress"
)

// ProgressHandler 学习进度处理器
type ProgressHandler struct {
	svc *service.Services
}

// NewProgressHandler 创建学习进度处理器
func NewProgressHandler(svc *service.Services) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// Submit 提交进度
func (h *ProgressHandler) Submit(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}

	var req progress.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	p, err := h.svc.Progress.Submit(c.Request.Context(), user.ID, &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, p)
}

// Get 查询某维度进度
func (h *ProgressHandler) Get(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}

	documentID, err := strconv.ParseUint(c.Query("document_id"), 10, 64)
	if err != nil || documentID == 0 {
		BadRequest(c, "invalid document_id")
		return
	}
	mode := c.Query("mode")
	if mode == "" {
		BadRequest(c, "mode is required")
		return
	}
	chapterID, _ := strconv.ParseUint(c.DefaultQuery("chapter_id", "0"), 10, 64)

	p, err := h.svc.Progress.Get(c.Request.Context(), user.ID, uint(documentID), mode, uint(chapterID))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, p)
}

// List 列出当前用户的进度
func (h *ProgressHandler) List(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}

	documentID, _ := strconv.ParseUint(c.DefaultQuery("document_id", "0"), 10, 64)

	list, err := h.svc.Progress.List(c.Request.Context(), user.ID, uint(documentID))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, list)
}
