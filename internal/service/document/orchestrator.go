package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/datatypes"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/service/provider"
)

// runWorker 工作协程主循环，从队列取任务逐个处理
func (s *Service) runWorker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		task, err := s.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Printf("[worker-%d] dequeue failed: %v", workerID, err)
			time.Sleep(time.Second)
			continue
		}

		log.Printf("[worker-%d] parsing document %d (task %s)", workerID, task.DocumentID, task.TaskID)
		s.process(ctx, task.DocumentID)
	}
}

// process 执行一次解析任务
// 任务边界兜底：任何失败（包括 panic）都把文档置为 failed 并追加解析日志，
// 绝不让文档停留在 parsing
func (s *Service) process(ctx context.Context, documentID uint) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("parse task panic for document %d: %v", documentID, r)
			s.markFailed(documentID, "", 0, fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	doc, err := s.repos.Document.GetByID(documentID)
	if err != nil {
		s.markFailed(documentID, "", 0, fmt.Sprintf("document not found: %v", err), nil)
		return
	}

	providerCfg, err := s.repos.Provider.GetByID(doc.ProviderID)
	if err != nil {
		s.markFailed(doc.ID, doc.ParseMethod, 0, fmt.Sprintf("provider not found: %v", err), nil)
		return
	}

	strategy, err := s.newStrategy(providerCfg, doc.ModelName, doc.Kind)
	if err != nil {
		s.markFailed(doc.ID, doc.ParseMethod, 0, err.Error(), nil)
		return
	}

	cont, err := s.adapter.Adapt(ctx, doc.FilePath, providerCfg.Family)
	if err != nil {
		s.markFailed(doc.ID, strategy.Name(), 0, fmt.Sprintf("failed to adapt content: %v", err), nil)
		return
	}

	result := strategy.Parse(ctx, cont, doc.FileName)
	if !result.Success {
		s.markFailed(doc.ID, strategy.Name(), cont.PageCount, result.Error, result)
		return
	}

	backupPath, err := s.writeBackup(doc.ID, result.Questions)
	if err != nil {
		s.markFailed(doc.ID, strategy.Name(), cont.PageCount, fmt.Sprintf("failed to write backup: %v", err), result)
		return
	}

	total, err := s.persistQuestions(doc.ID, result.Questions)
	if err != nil {
		s.markFailed(doc.ID, strategy.Name(), cont.PageCount, fmt.Sprintf("failed to persist questions: %v", err), result)
		return
	}

	if err := s.repos.Document.MarkCompleted(doc.ID, total, backupPath); err != nil {
		s.markFailed(doc.ID, strategy.Name(), cont.PageCount, fmt.Sprintf("failed to mark completed: %v", err), result)
		return
	}

	s.appendLog(doc.ID, model.ParseLogStatusSuccess, strategy.Name(), cont.PageCount, cont.PageCount, "", result)
	log.Printf("document %d parsed: %d questions", doc.ID, total)

	// 搜索索引尽力而为，失败不影响解析结果
	if s.indexer != nil {
		questions, err := s.repos.Question.ListAllByDocument(doc.ID)
		if err == nil {
			if err := s.indexer.IndexQuestions(ctx, doc, questions); err != nil {
				log.Printf("failed to index questions for document %d: %v", doc.ID, err)
			}
		}
	}
}

// markFailed 置文档为 failed 并追加失败日志
func (s *Service) markFailed(documentID uint, method string, pages int, errMsg string, result *provider.ParseResult) {
	if err := s.repos.Document.UpdateStatus(documentID, model.DocumentStatusFailed); err != nil {
		log.Printf("failed to mark document %d failed: %v", documentID, err)
	}
	s.appendLog(documentID, model.ParseLogStatusFailed, method, pages, 0, errMsg, result)
}

// appendLog 追加解析日志，载荷超限时截断
func (s *Service) appendLog(documentID uint, status, method string, totalPages, processedPages int, errMsg string, result *provider.ParseResult) {
	entry := &model.ParseLog{
		DocumentID:     documentID,
		Status:         status,
		Method:         method,
		TotalPages:     totalPages,
		ProcessedPages: processedPages,
		ErrorMessage:   errMsg,
	}
	if result != nil {
		entry.RequestPayload = s.truncatePayload(result.RequestPayload)
		entry.ResponsePayload = s.truncatePayload(result.ResponsePayload)
	}

	if err := s.repos.ParseLog.Create(entry); err != nil {
		log.Printf("failed to append parse log for document %d: %v", documentID, err)
	}
}

// truncatePayload 约束审计载荷大小并保证列合法
// 上游报错时响应体可能是 HTML 等任意字节（网关 502 页面），
// 非 JSON 载荷包装成 JSON 字符串，否则 jsonb 列写入会失败、审计日志丢失
func (s *Service) truncatePayload(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	max := s.cfg.Parse.MaxPayloadSize
	if max <= 0 {
		max = 65536
	}
	if len(raw) <= max {
		if json.Valid(raw) {
			return datatypes.JSON(raw)
		}
		wrapped, err := json.Marshal(string(raw))
		if err != nil {
			return nil
		}
		return wrapped
	}

	truncated, err := json.Marshal(string(raw[:max]) + "...(truncated)")
	if err != nil {
		return nil
	}
	return truncated
}

// writeBackup 把解析出的题目 JSON 落盘备份
// 文件按文档 id 和时间戳命名，只作审计与恢复用，不会被读回
func (s *Service) writeBackup(documentID uint, questions []provider.ParsedQuestion) (string, error) {
	dir := filepath.Join(s.cfg.Upload.Dir, "backups")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	payload, err := json.MarshalIndent(map[string]interface{}{"questions": questions}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("doc_%d_%s.json", documentID, time.Now().Format("20060102150405")))
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}
