// Package search 实现题目检索：优先 Elasticsearch，未配置时退化为数据库 LIKE
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/zhiqutech/tiku/internal/config"
	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

// Service 题目搜索服务
type Service struct {
	repos      *repository.Repositories
	cfg        *config.Config
	esClient   *elasticsearch.Client // 未配置 ES 时为 nil
	esSearcher ESSearcher            // 搜索接口，便于测试
	indexName  string
}

// NewService 创建搜索服务
func NewService(repos *repository.Repositories, cfg *config.Config) *Service {
	s := &Service{
		repos:     repos,
		cfg:       cfg,
		indexName: cfg.Elastic.IndexPrefix + "_questions",
	}

	if cfg.Elastic.Host != "" {
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{cfg.Elastic.Host},
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			log.Printf("failed to create elasticsearch client: %v", err)
			return s
		}
		s.esClient = esClient
		s.esSearcher = newRealESSearcher(func(ctx context.Context, index string, body io.Reader) (*ESResponseImpl, error) {
			res, err := esClient.Search(
				esClient.Search.WithContext(ctx),
				esClient.Search.WithIndex(index),
				esClient.Search.WithBody(body),
			)
			if err != nil {
				return nil, err
			}
			return &ESResponseImpl{
				isError: res.IsError(),
				body:    res.Body,
				str:     res.String(),
			}, nil
		})
	}

	return s
}

// SearchRequest 题目检索请求
type SearchRequest struct {
	DocumentID uint   `form:"document_id" binding:"required"`
	Keyword    string `form:"keyword" binding:"required"`
	TopK       int    `form:"top_k"`
}

// SearchResult 检索结果
type SearchResult struct {
	Question *model.Question `json:"question"`
	Score    float64         `json:"score"`
}

// Search 检索题目
func (s *Service) Search(ctx context.Context, req *SearchRequest) ([]*SearchResult, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	if s.esSearcher == nil {
		return s.searchByDatabase(req.DocumentID, req.Keyword, topK)
	}

	results, err := s.searchByES(ctx, req.DocumentID, req.Keyword, topK)
	if err != nil {
		// ES 故障时退化为数据库查询，不让搜索整体不可用
		log.Printf("elasticsearch search failed, falling back to database: %v", err)
		return s.searchByDatabase(req.DocumentID, req.Keyword, topK)
	}
	return results, nil
}

// searchByES 通过 Elasticsearch 检索
func (s *Service) searchByES(ctx context.Context, documentID uint, keyword string, topK int) ([]*SearchResult, error) {
	query := map[string]interface{}{
		"size": topK,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							"document_id": documentID,
						},
					},
				},
				"should": []interface{}{
					map[string]interface{}{
						"match": map[string]interface{}{
							"content": map[string]interface{}{
								"query": keyword,
							},
						},
					},
					map[string]interface{}{
						"match": map[string]interface{}{
							"answer": map[string]interface{}{
								"query": keyword,
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}

	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.esSearcher.DoSearch(ctx, s.indexName, queryJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String)
	}

	var response struct {
		Hits struct {
			Hits []struct {
				ID    string  `json:"_id"`
				Score float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]*SearchResult, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		questionID, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		question, err := s.repos.Question.GetByID(uint(questionID))
		if err != nil {
			// 索引落后于数据库，跳过已删除的题目
			continue
		}
		results = append(results, &SearchResult{Question: question, Score: hit.Score})
	}
	return results, nil
}

// searchByDatabase 数据库 LIKE 检索
func (s *Service) searchByDatabase(documentID uint, keyword string, topK int) ([]*SearchResult, error) {
	questions, err := s.repos.Question.SearchByKeyword(documentID, keyword, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}

	results := make([]*SearchResult, 0, len(questions))
	for _, q := range questions {
		results = append(results, &SearchResult{Question: q})
	}
	return results, nil
}

// IndexQuestions 把文档题目批量写入 ES 索引
// 解析编排在成功后调用；未配置 ES 时为空操作
func (s *Service) IndexQuestions(ctx context.Context, doc *model.Document, questions []*model.Question) error {
	if s.esClient == nil {
		return nil
	}
	if len(questions) == 0 {
		return nil
	}

	if err := s.ensureIndex(ctx); err != nil {
		return err
	}

	// Bulk NDJSON：action 行 + 文档行
	var buf bytes.Buffer
	for _, q := range questions {
		action := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": s.indexName,
				"_id":    strconv.FormatUint(uint64(q.ID), 10),
			},
		}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to marshal bulk action: %w", err)
		}

		source := map[string]interface{}{
			"document_id": q.DocumentID,
			"chapter_id":  q.ChapterID,
			"type":        q.Type,
			"content":     q.Content,
			"answer":      q.Answer,
			"tags":        []string(q.Tags),
		}
		sourceLine, err := json.Marshal(source)
		if err != nil {
			return fmt.Errorf("failed to marshal question: %w", err)
		}

		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(sourceLine)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	res, err := req.Do(ctx, s.esClient)
	if err != nil {
		return fmt.Errorf("failed to bulk index questions: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to bulk index questions: %s", res.String())
	}

	log.Printf("indexed %d questions for document %d", len(questions), doc.ID)
	return nil
}

// ensureIndex 确保题目索引存在（如不存在则创建）
func (s *Service) ensureIndex(ctx context.Context) error {
	res, err := s.esClient.Indices.Exists([]string{s.indexName})
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"document_id": map[string]interface{}{
					"type": "keyword",
				},
				"chapter_id": map[string]interface{}{
					"type": "keyword",
				},
				"type": map[string]interface{}{
					"type": "keyword",
				},
				"content": map[string]interface{}{
					"type": "text",
				},
				"answer": map[string]interface{}{
					"type": "text",
				},
				"tags": map[string]interface{}{
					"type": "keyword",
				},
			},
		},
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
	}

	mappingData, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{
		Index: s.indexName,
		Body:  bytes.NewReader(mappingData),
	}

	createRes, err := req.Do(ctx, s.esClient)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	log.Printf("index %s created", s.indexName)
	return nil
}
