package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zhiqutech/tiku/internal/service"
	"github.com/zhiqutech/tiku/internal/service/question"
	"github.com/zhiqutech/tiku/internal/service/search"
)

// QuestionHandler 题目处理器
type QuestionHandler struct {
	svc *service.Services
}

// NewQuestionHandler 创建题目处理器
func NewQuestionHandler(svc *service.Services) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

// Create 创建题目
func (h *QuestionHandler) Create(c *gin.Context) {
	var req question.SaveQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	q, err := h.svc.Question.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, q)
}

// Get 获取题目
func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid question id")
		return
	}

	q, err := h.svc.Question.Get(c.Request.Context(), id)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, q)
}

// List 列出题目
func (h *QuestionHandler) List(c *gin.Context) {
	var req question.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	questions, total, err := h.svc.Question.List(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.Size
	if size <= 0 || size > 100 {
		size = 20
	}
	SuccessWithPagination(c, questions, total, page, size)
}

// Update 更新题目
func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid question id")
		return
	}

	var req question.SaveQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	q, err := h.svc.Question.Update(c.Request.Context(), id, &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, q)
}

// Delete 删除题目
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := getUintParam(c, "id")
	if !ok {
		BadRequest(c, "invalid question id")
		return
	}

	if err := h.svc.Question.Delete(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// Search 检索题目
func (h *QuestionHandler) Search(c *gin.Context) {
	var req search.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	results, err := h.svc.Search.Search(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, results)
}
