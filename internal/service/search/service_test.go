package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhiqutech/tiku/internal/config"
	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

// mockESSearcher 测试用 ES 搜索器
type mockESSearcher struct {
	searchFunc func(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error)
}

func (m *mockESSearcher) DoSearch(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, index, queryJSON)
	}
	return &ESResponse{
		IsError: false,
		Body:    io.NopCloser(bytes.NewReader([]byte(`{"hits":{"hits":[]}}`))),
	}, nil
}

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.Elastic.IndexPrefix = "tiku"
	return NewService(repos, cfg), repos
}

func seedQuestions(t *testing.T, repos *repository.Repositories) (*model.Document, []*model.Question) {
	t.Helper()
	doc := &model.Document{UserID: 1, Name: "题库", Status: model.DocumentStatusCompleted}
	if err := repos.Document.Create(doc); err != nil {
		t.Fatalf("failed to create document: %v", err)
	}
	chapter, err := repos.Chapter.GetOrCreate(&model.Chapter{DocumentID: doc.ID, Name: "第1章", SortOrder: 1})
	if err != nil {
		t.Fatalf("failed to create chapter: %v", err)
	}

	questions := []*model.Question{
		{DocumentID: doc.ID, ChapterID: chapter.ID, Type: "single", Content: "牛顿第一定律是什么", Answer: "惯性定律"},
		{DocumentID: doc.ID, ChapterID: chapter.ID, Type: "judge", Content: "光速是常数", Answer: "对"},
	}
	if err := repos.Question.CreateBatch(questions); err != nil {
		t.Fatalf("failed to create questions: %v", err)
	}
	return doc, questions
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	svc, repos := newTestService(t)
	doc, _ := seedQuestions(t, repos)

	// 未配置 ES，直接走数据库 LIKE
	results, err := svc.Search(context.Background(), &SearchRequest{
		DocumentID: doc.ID,
		Keyword:    "牛顿",
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Question.Answer != "惯性定律" {
		t.Errorf("wrong question matched: %+v", results[0].Question)
	}
}

func TestSearchByESResolvesQuestions(t *testing.T) {
	svc, repos := newTestService(t)
	doc, questions := seedQuestions(t, repos)

	svc.esSearcher = &mockESSearcher{
		searchFunc: func(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error) {
			if index != "tiku_questions" {
				t.Errorf("unexpected index: %s", index)
			}
			body := fmt.Sprintf(`{"hits":{"hits":[{"_id":"%d","_score":2.5}]}}`, questions[1].ID)
			return &ESResponse{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
		},
	}

	results, err := svc.Search(context.Background(), &SearchRequest{
		DocumentID: doc.ID,
		Keyword:    "光速",
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Question.ID != questions[1].ID {
		t.Errorf("hit should resolve to the stored question")
	}
	if results[0].Score != 2.5 {
		t.Errorf("score should be carried through, got %f", results[0].Score)
	}
}

func TestSearchESFailureFallsBack(t *testing.T) {
	svc, repos := newTestService(t)
	doc, _ := seedQuestions(t, repos)

	svc.esSearcher = &mockESSearcher{
		searchFunc: func(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	// ES 故障时退化为数据库查询，不向调用方报错
	results, err := svc.Search(context.Background(), &SearchRequest{
		DocumentID: doc.ID,
		Keyword:    "光速",
	})
	if err != nil {
		t.Fatalf("fallback search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result from fallback, got %d", len(results))
	}
}
