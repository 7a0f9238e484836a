// Package document 实现文档解析编排：状态机、任务队列、章节切分与持久化
package document

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zhiqutech/tiku/internal/config"
	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
	"github.com/zhiqutech/tiku/internal/service/content"
	"github.com/zhiqutech/tiku/internal/service/provider"
)

// 解析触发的占用类错误，HTTP 层据此返回 409 而不是 400
var (
	ErrAlreadyParsing = errors.New("document is already being parsed")
	ErrAlreadyParsed  = errors.New("document has already been parsed")
)

// Indexer 题目搜索索引器，解析成功后尽力而为地调用
type Indexer interface {
	IndexQuestions(ctx context.Context, doc *model.Document, questions []*model.Question) error
}

// Service 文档服务，解析状态机的唯一正常写入方
type Service struct {
	repos   *repository.Repositories
	cfg     *config.Config
	adapter *content.Adapter
	queue   Queue
	indexer Indexer // 可为 nil

	// 策略构造钩子，测试时注入假策略
	strategyFactory func(cfg *model.ProviderConfig, opts provider.Options) (provider.Strategy, error)

	httpClient *http.Client
	wg         sync.WaitGroup
	cancel     context.CancelFunc
}

// NewService 创建文档服务
func NewService(repos *repository.Repositories, cfg *config.Config, queue Queue, indexer Indexer) *Service {
	timeout := time.Duration(cfg.Parse.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	return &Service{
		repos:           repos,
		cfg:             cfg,
		adapter:         content.NewAdapter(cfg.Parse.RasterDPI),
		queue:           queue,
		indexer:         indexer,
		strategyFactory: provider.NewStrategy,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Start 启动解析工作协程
func (s *Service) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 2
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.runWorker(ctx, i)
	}
	log.Printf("started %d parse workers", workers)
}

// Stop 停止工作协程并等待收尾
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// UploadRequest 上传请求（文件已由 HTTP 层落盘）
type UploadRequest struct {
	UserID      uint
	Name        string
	Description string
	Kind        string
	FileName    string
	FilePath    string
	FileSize    int64
}

// Upload 创建文档记录，初始状态 pending
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*model.Document, error) {
	kind := req.Kind
	if kind == "" {
		kind = model.DocumentKindQuestionBank
	}
	if kind != model.DocumentKindQuestionBank && kind != model.DocumentKindKnowledgeBase {
		return nil, fmt.Errorf("unknown document kind: %s", kind)
	}

	doc := &model.Document{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		Kind:        kind,
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		FileSize:    req.FileSize,
		Status:      model.DocumentStatusPending,
	}

	if err := s.repos.Document.Create(doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

// Get 获取文档
func (s *Service) Get(ctx context.Context, id uint) (*model.Document, error) {
	return s.repos.Document.GetByID(id)
}

// ListRequest 列表请求
type ListRequest struct {
	UserID uint
	Page   int
	Size   int
}

// List 列出文档
func (s *Service) List(ctx context.Context, req *ListRequest) ([]*model.Document, int64, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 || req.Size > 100 {
		req.Size = 20
	}
	offset := (req.Page - 1) * req.Size
	return s.repos.Document.List(req.UserID, offset, req.Size)
}

// Delete 删除文档，属主或管理员可操作；解析中的文档拒绝删除
func (s *Service) Delete(ctx context.Context, id uint, user *model.User) error {
	doc, err := s.repos.Document.GetByID(id)
	if err != nil {
		return fmt.Errorf("document not found: %w", err)
	}
	if !user.CanManage(doc) {
		return fmt.Errorf("no permission to delete this document")
	}
	if doc.Status == model.DocumentStatusParsing {
		return fmt.Errorf("document is being parsed, try again later")
	}

	if err := s.repos.Document.Delete(id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	// 源文件清理尽力而为
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove uploaded file %s: %v", doc.FilePath, err)
		}
	}
	return nil
}

// ParseRequest 解析触发请求
type ParseRequest struct {
	ProviderID uint   `json:"provider_id" binding:"required"`
	ModelName  string `json:"model_name"`
}

// ParseResponse 解析触发响应，task_id 仅用于展示
type ParseResponse struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// Parse 触发异步解析
// 同步阶段校验配置并原子抢占状态，之后任务进入队列由工作协程执行
func (s *Service) Parse(ctx context.Context, documentID uint, req *ParseRequest) (*ParseResponse, error) {
	doc, err := s.repos.Document.GetByID(documentID)
	if err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}

	switch doc.Status {
	case model.DocumentStatusParsing:
		return nil, ErrAlreadyParsing
	case model.DocumentStatusCompleted:
		return nil, ErrAlreadyParsed
	}

	providerCfg, err := s.repos.Provider.GetByID(req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("provider not found: %w", err)
	}
	if !providerCfg.Active {
		return nil, fmt.Errorf("provider %s is inactive", providerCfg.Name)
	}

	modelName := req.ModelName
	if modelName == "" {
		modelName = providerCfg.DefaultModel
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}

	// 提前构造策略，把不支持的家族挡在状态变更之前
	strategy, err := s.newStrategy(providerCfg, modelName, doc.Kind)
	if err != nil {
		return nil, err
	}

	// 条件更新抢占 pending/failed -> parsing，并发重复触发只有一个成功
	claimed, err := s.repos.Document.ClaimForParse(doc.ID, providerCfg.ID, modelName, strategy.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to update document status: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadyParsing
	}

	task := Task{DocumentID: doc.ID, TaskID: uuid.New().String()}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		// 入队失败时回滚状态，避免文档卡在 parsing
		if rbErr := s.repos.Document.UpdateStatus(doc.ID, model.DocumentStatusPending); rbErr != nil {
			log.Printf("failed to rollback document %d status: %v", doc.ID, rbErr)
		}
		return nil, fmt.Errorf("failed to enqueue parse task: %w", err)
	}

	return &ParseResponse{
		TaskID:  task.TaskID,
		Message: "parse task started",
	}, nil
}

// newStrategy 构造解析策略
func (s *Service) newStrategy(cfg *model.ProviderConfig, modelName, kind string) (provider.Strategy, error) {
	return s.strategyFactory(cfg, provider.Options{
		ModelName:  modelName,
		Kind:       kind,
		Prompts:    s.repos.Setting,
		HTTPClient: s.httpClient,
	})
}

// StatusResponse 状态查询响应
type StatusResponse struct {
	DocumentID     uint            `json:"document_id"`
	Status         string          `json:"status"`
	TotalQuestions int             `json:"total_questions"`
	ParseMethod    string          `json:"parse_method"`
	LatestLog      *model.ParseLog `json:"latest_log,omitempty"`
}

// GetStatus 查询文档解析状态和最近一条解析日志
func (s *Service) GetStatus(ctx context.Context, documentID uint) (*StatusResponse, error) {
	doc, err := s.repos.Document.GetByID(documentID)
	if err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}

	resp := &StatusResponse{
		DocumentID:     doc.ID,
		Status:         doc.Status,
		TotalQuestions: doc.TotalQuestions,
		ParseMethod:    doc.ParseMethod,
	}

	latest, err := s.repos.ParseLog.LatestByDocument(documentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load parse log: %w", err)
	}
	resp.LatestLog = latest
	return resp, nil
}

// OverrideStatus 人工状态覆盖，属主或管理员用于故障恢复
func (s *Service) OverrideStatus(ctx context.Context, documentID uint, status string, user *model.User) error {
	if !model.ValidDocumentStatus(status) {
		return fmt.Errorf("invalid status: %s", status)
	}

	doc, err := s.repos.Document.GetByID(documentID)
	if err != nil {
		return fmt.Errorf("document not found: %w", err)
	}
	if !user.CanManage(doc) {
		return fmt.Errorf("no permission to override document status")
	}

	if err := s.repos.Document.UpdateStatus(documentID, status); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// ListChapters 列出文档章节
func (s *Service) ListChapters(ctx context.Context, documentID uint) ([]*model.Chapter, error) {
	return s.repos.Chapter.ListByDocument(documentID)
}

// RenameChapter 重命名章节
func (s *Service) RenameChapter(ctx context.Context, chapterID uint, name string) (*model.Chapter, error) {
	chapter, err := s.repos.Chapter.GetByID(chapterID)
	if err != nil {
		return nil, fmt.Errorf("chapter not found: %w", err)
	}

	chapter.Name = name
	if err := s.repos.Chapter.Update(chapter); err != nil {
		return nil, fmt.Errorf("failed to rename chapter: %w", err)
	}
	return chapter, nil
}

// DeleteChapter 删除章节及其题目，并刷新文档题目总数
func (s *Service) DeleteChapter(ctx context.Context, chapterID uint) error {
	chapter, err := s.repos.Chapter.GetByID(chapterID)
	if err != nil {
		return fmt.Errorf("chapter not found: %w", err)
	}

	if err := s.repos.Chapter.Delete(chapterID); err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}

	total, err := s.repos.Question.CountByDocument(chapter.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	return s.repos.Document.UpdateTotalQuestions(chapter.DocumentID, int(total))
}
