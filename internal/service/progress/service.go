// Package progress 实现学习进度的提交与查询
package progress

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

// Service 学习进度服务
type Service struct {
	repos *repository.Repositories
}

// NewService 创建学习进度服务
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// SubmitRequest 进度提交请求
// 章节模式必须带 chapter_id，整卷模式 chapter_id 为 0
type SubmitRequest struct {
	DocumentID     uint   `json:"document_id" binding:"required"`
	Mode           string `json:"mode" binding:"required"`
	ChapterID      uint   `json:"chapter_id"`
	LastQuestionID uint   `json:"last_question_id"`
	AnsweredCount  int    `json:"answered_count"`
	CorrectCount   int    `json:"correct_count"`
}

// Submit 提交学习进度，同维度覆盖写
func (s *Service) Submit(ctx context.Context, userID uint, req *SubmitRequest) (*model.StudyProgress, error) {
	if req.Mode != model.StudyModeChapter && req.Mode != model.StudyModeExam {
		return nil, fmt.Errorf("unknown study mode: %s", req.Mode)
	}
	if req.Mode == model.StudyModeChapter && req.ChapterID == 0 {
		return nil, fmt.Errorf("chapter_id is required in chapter mode")
	}
	if req.Mode == model.StudyModeExam {
		req.ChapterID = 0
	}
	if req.CorrectCount > req.AnsweredCount {
		return nil, fmt.Errorf("correct count cannot exceed answered count")
	}

	if _, err := s.repos.Document.GetByID(req.DocumentID); err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}
	if req.ChapterID != 0 {
		chapter, err := s.repos.Chapter.GetByID(req.ChapterID)
		if err != nil {
			return nil, fmt.Errorf("chapter not found: %w", err)
		}
		if chapter.DocumentID != req.DocumentID {
			return nil, fmt.Errorf("chapter belongs to a different document")
		}
	}

	p := &model.StudyProgress{
		UserID:         userID,
		DocumentID:     req.DocumentID,
		Mode:           req.Mode,
		ChapterID:      req.ChapterID,
		LastQuestionID: req.LastQuestionID,
		AnsweredCount:  req.AnsweredCount,
		CorrectCount:   req.CorrectCount,
	}

	if err := s.repos.Progress.Upsert(p); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return s.repos.Progress.Get(userID, req.DocumentID, req.Mode, req.ChapterID)
}

// Get 查询某个维度的进度，未记录时返回零值进度
func (s *Service) Get(ctx context.Context, userID, documentID uint, mode string, chapterID uint) (*model.StudyProgress, error) {
	p, err := s.repos.Progress.Get(userID, documentID, mode, chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.StudyProgress{
				UserID:     userID,
				DocumentID: documentID,
				Mode:       mode,
				ChapterID:  chapterID,
			}, nil
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return p, nil
}

// List 列出用户进度，documentID 为 0 时不过滤
func (s *Service) List(ctx context.Context, userID, documentID uint) ([]*model.StudyProgress, error) {
	return s.repos.Progress.ListByUser(userID, documentID)
}
