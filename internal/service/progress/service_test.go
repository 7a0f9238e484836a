package progress

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/repository"
)

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
	return NewService(repos), repos
}

func seedDocumentWithChapter(t *testing.T, repos *repository.Repositories) (*model.Document, *model.Chapter) {
	t.Helper()
	doc := &model.Document{UserID: 1, Name: "题库", Status: model.DocumentStatusCompleted}
	if err := repos.Document.Create(doc); err != nil {
		t.Fatalf("failed to create document: %v", err)
	}
	chapter, err := repos.Chapter.GetOrCreate(&model.Chapter{DocumentID: doc.ID, Name: "第1章", SortOrder: 1})
	if err != nil {
		t.Fatalf("failed to create chapter: %v", err)
	}
	return doc, chapter
}

func TestSubmitChapterMode(t *testing.T) {
	svc, repos := newTestService(t)
	doc, chapter := seedDocumentWithChapter(t, repos)
	ctx := context.Background()

	p, err := svc.Submit(ctx, 7, &SubmitRequest{
		DocumentID:     doc.ID,
		Mode:           model.StudyModeChapter,
		ChapterID:      chapter.ID,
		LastQuestionID: 3,
		AnsweredCount:  5,
		CorrectCount:   4,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if p.AnsweredCount != 5 || p.CorrectCount != 4 {
		t.Errorf("progress not recorded: %+v", p)
	}

	// 同维度重复提交覆盖而不是新增
	p, err = svc.Submit(ctx, 7, &SubmitRequest{
		DocumentID:     doc.ID,
		Mode:           model.StudyModeChapter,
		ChapterID:      chapter.ID,
		LastQuestionID: 9,
		AnsweredCount:  10,
		CorrectCount:   8,
	})
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	if p.AnsweredCount != 10 || p.LastQuestionID != 9 {
		t.Errorf("progress should be overwritten: %+v", p)
	}

	list, err := svc.List(ctx, 7, doc.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("same dimension should keep one row, got %d", len(list))
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, repos := newTestService(t)
	doc, chapter := seedDocumentWithChapter(t, repos)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *SubmitRequest
	}{
		{
			name: "unknown mode",
			req:  &SubmitRequest{DocumentID: doc.ID, Mode: "random", ChapterID: chapter.ID},
		},
		{
			name: "chapter mode without chapter",
			req:  &SubmitRequest{DocumentID: doc.ID, Mode: model.StudyModeChapter},
		},
		{
			name: "correct exceeds answered",
			req: &SubmitRequest{DocumentID: doc.ID, Mode: model.StudyModeExam,
				AnsweredCount: 1, CorrectCount: 2},
		},
		{
			name: "missing document",
			req:  &SubmitRequest{DocumentID: 9999, Mode: model.StudyModeExam},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, 1, tt.req); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestSubmitExamModeIgnoresChapter(t *testing.T) {
	svc, repos := newTestService(t)
	doc, chapter := seedDocumentWithChapter(t, repos)

	p, err := svc.Submit(context.Background(), 1, &SubmitRequest{
		DocumentID:    doc.ID,
		Mode:          model.StudyModeExam,
		ChapterID:     chapter.ID, // 整卷模式忽略章节
		AnsweredCount: 3,
		CorrectCount:  3,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if p.ChapterID != 0 {
		t.Errorf("exam mode should normalize chapter to 0, got %d", p.ChapterID)
	}
}

func TestGetReturnsZeroProgressWhenMissing(t *testing.T) {
	svc, repos := newTestService(t)
	doc, _ := seedDocumentWithChapter(t, repos)

	p, err := svc.Get(context.Background(), 42, doc.ID, model.StudyModeExam, 0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if p.AnsweredCount != 0 || p.CorrectCount != 0 {
		t.Errorf("missing progress should be zero-valued: %+v", p)
	}
}
