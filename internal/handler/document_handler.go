package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zhiqutech/tiku/internal/middleware"
	"github.com/zhiqutech/tiku/internal/service"
	"github.com/zhiqutech/tiku/internal/service/document"
	"github.com/zhiqutech/tiku/internal/service/file"
)

// DocumentHandler 文档处理器
type DocumentHandler struct {
	svc *service.Services
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(svc *service.Services) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload 上传文档（multipart 表单）
// 表单字段：file 必填；name/description/kind 可选，name 默认取文件名
func (h *DocumentHandler) Upload(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}

	if !file.AllowedExtension(fileHeader.Filename) {
		BadRequest(c, fmt.Sprintf("file type of %s is not allowed", fileHeader.Filename))
		return
	}

	maxSize := int64(h.svc.Config.Upload.MaxSizeMB) * 1024 * 1024
	if maxSize > 0 && fileHeader.Size > maxSize {
		BadRequest(c, fmt.Sprintf("file exceeds the %dMB limit", h.svc.Config.Upload.MaxSizeMB))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		Error(c, err)
		return
	}
	defer src.Close()

	filePath, err := h.svc.Storage.Save(c.Request.Context(), &file.SaveRequest{
		UserID:   user.ID,
		FileName: fileHeader.Filename,
		Reader:   src,
	})
	if err != nil {
		Error(c, err)
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	doc, err := h.svc.Document.Upload(c.Request.Context(), &document.UploadRequest{
		UserID:      user.ID,
		Name:        name,
		Description: c.PostForm("description"),
		Kind:        c.PostForm("kind"),
		FileName:    fileHeader.Filename,
		FilePath:    filePath,
		FileSize:    fileHeader.Size,
	})
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, doc)
}

// Get 获取文档
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid document id")
		return
	}

	doc, err := h.svc.Document.Get(c.Request.Context(), id)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, doc)
}

// List 列出文档（管理员看全部，普通用户看自己的）
func (h *DocumentHandler) List(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}

	page, pageSize := getPagination(c)
	userID := user.ID
	if user.IsAdmin() {
		userID = 0
	}

	docs, total, err := h.svc.Document.List(c.Request.Context(), &document.ListRequest{
		UserID: userID,
		Page:   page,
		Size:   pageSize,
	})
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, docs, total, page, pageSize)
}

// Delete 删除文档
func (h *DocumentHandler) Delete(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}

	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid document id")
		return
	}

	if err := h.svc.Document.Delete(c.Request.Context(), id, user); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// Parse 触发解析
func (h *DocumentHandler) Parse(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid document id")
		return
	}

	var req document.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Document.Parse(c.Request.Context(), id, &req)
	if err != nil {
		// 409 只给占用冲突；校验失败 400，文档/供应商缺失 404
		switch {
		case errors.Is(err, document.ErrAlreadyParsing), errors.Is(err, document.ErrAlreadyParsed):
			Conflict(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			NotFound(c, err.Error())
		default:
			BadRequest(c, err.Error())
		}
		return
	}
	Success(c, resp)
}

// Status 查询解析状态
func (h *DocumentHandler) Status(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid document id")
		return
	}

	resp, err := h.svc.Document.GetStatus(c.Request.Context(), id)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, resp)
}

// OverrideStatusRequest 状态覆盖请求
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OverrideStatus 人工覆盖文档状态
func (h *DocumentHandler) OverrideStatus(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}

	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid document id")
		return
	}

	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Document.OverrideStatus(c.Request.Context(), id, req.Status, user); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// ListChapters 列出文档章节
func (h *DocumentHandler) ListChapters(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid document id")
		return
	}

	chapters, err := h.svc.Document.ListChapters(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, chapters)
}

// RenameChapterRequest 重命名章节请求
type RenameChapterRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameChapter 重命名章节
func (h *DocumentHandler) RenameChapter(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid chapter id")
		return
	}

	var req RenameChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	chapter, err := h.svc.Document.RenameChapter(c.Request.Context(), id, req.Name)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, chapter)
}

// DeleteChapter 删除章节
func (h *DocumentHandler) DeleteChapter(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid chapter id")
		return
	}

	if err := h.svc.Document.DeleteChapter(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}
