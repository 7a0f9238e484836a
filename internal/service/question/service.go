// Package question 实现题目的人工维护：增删改查与计数联动
package question

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

// Service 题目服务
type Service struct {
	repos *repository.Repositories
}

// NewService 创建题目服务
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// SaveQuestionRequest 创建/更新题目请求
type SaveQuestionRequest struct {
	ChapterID   uint     `json:"chapter_id" binding:"required"`
	Number      string   `json:"number"`
	Type        string   `json:"type" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Difficulty  int      `json:"difficulty"`
	Tags        []string `json:"tags"`
}

// Create 手工创建题目，并刷新章节与文档计数
func (s *Service) Create(ctx context.Context, req *SaveQuestionRequest) (*model.Question, error) {
	if !model.ValidQuestionType(req.Type) {
		return nil, fmt.Errorf("unknown question type: %s", req.Type)
	}

	chapter, err := s.repos.Chapter.GetByID(req.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("chapter not found: %w", err)
	}

	q := &model.Question{
		DocumentID:  chapter.DocumentID,
		ChapterID:   chapter.ID,
		Number:      req.Number,
		Type:        req.Type,
		Content:     req.Content,
		Options:     datatypes.NewJSONSlice(req.Options),
		Answer:      req.Answer,
		Explanation: req.Explanation,
		Difficulty:  normalizeDifficulty(req.Difficulty),
		Tags:        datatypes.NewJSONSlice(req.Tags),
	}

	if err := s.repos.Question.Create(q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	if err := s.refreshCounts(chapter.ID, chapter.DocumentID); err != nil {
		return nil, err
	}
	return q, nil
}

// Get 获取题目
func (s *Service) Get(ctx context.Context, id uint) (*model.Question, error) {
	return s.repos.Question.GetByID(id)
}

// ListRequest 题目列表请求
type ListRequest struct {
	DocumentID uint `form:"document_id" binding:"required"`
	ChapterID  uint `form:"chapter_id"`
	Page       int  `form:"page"`
	Size       int  `form:"size"`
}

// List 列出题目，可按章节过滤
func (s *Service) List(ctx context.Context, req *ListRequest) ([]*model.Question, int64, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 || req.Size > 100 {
		req.Size = 20
	}
	offset := (req.Page - 1) * req.Size
	return s.repos.Question.ListByDocument(req.DocumentID, req.ChapterID, offset, req.Size)
}

// Update 更新题目
// 允许改章节（chapter_id 指向同文档的其他章节），两侧计数都要刷新
func (s *Service) Update(ctx context.Context, id uint, req *SaveQuestionRequest) (*model.Question, error) {
	if !model.ValidQuestionType(req.Type) {
		return nil, fmt.Errorf("unknown question type: %s", req.Type)
	}

	q, err := s.repos.Question.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("question not found: %w", err)
	}
	oldChapterID := q.ChapterID

	if req.ChapterID != q.ChapterID {
		chapter, err := s.repos.Chapter.GetByID(req.ChapterID)
		if err != nil {
			return nil, fmt.Errorf("chapter not found: %w", err)
		}
		if chapter.DocumentID != q.DocumentID {
			return nil, fmt.Errorf("chapter belongs to a different document")
		}
		q.ChapterID = chapter.ID
	}

	q.Number = req.Number
	q.Type = req.Type
	q.Content = req.Content
	q.Options = datatypes.NewJSONSlice(req.Options)
	q.Answer = req.Answer
	q.Explanation = req.Explanation
	q.Difficulty = normalizeDifficulty(req.Difficulty)
	q.Tags = datatypes.NewJSONSlice(req.Tags)

	if err := s.repos.Question.Update(q); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	if oldChapterID != q.ChapterID {
		count, err := s.repos.Question.CountByChapter(oldChapterID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		if err := s.repos.Chapter.UpdateQuestionCount(oldChapterID, int(count)); err != nil {
			return nil, fmt.Errorf("failed to update chapter count: %w", err)
		}
	}
	if err := s.refreshCounts(q.ChapterID, q.DocumentID); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete 删除题目，并刷新章节与文档计数
func (s *Service) Delete(ctx context.Context, id uint) error {
	q, err := s.repos.Question.GetByID(id)
	if err != nil {
		return fmt.Errorf("question not found: %w", err)
	}

	if err := s.repos.Question.Delete(id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return s.refreshCounts(q.ChapterID, q.DocumentID)
}

// refreshCounts 按实际行数刷新章节和文档的题目数缓存
func (s *Service) refreshCounts(chapterID, documentID uint) error {
	chapterCount, err := s.repos.Question.CountByChapter(chapterID)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if err := s.repos.Chapter.UpdateQuestionCount(chapterID, int(chapterCount)); err != nil {
		return fmt.Errorf("failed to update chapter count: %w", err)
	}

	total, err := s.repos.Question.CountByDocument(documentID)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if err := s.repos.Document.UpdateTotalQuestions(documentID, int(total)); err != nil {
		return fmt.Errorf("failed to update document total: %w", err)
	}
	return nil
}

// normalizeDifficulty 难度收敛到 1-3
func normalizeDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 3 {
		return 3
	}
	return d
}
