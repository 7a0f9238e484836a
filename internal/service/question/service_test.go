package question

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

func seedChapters(t *testing.T, repos *repository.Repositories) (*model.Document, *model.Chapter, *model.Chapter) {
	t.Helper()
	doc := &model.Document{UserID: 1, Name: "题库", Status: model.DocumentStatusCompleted}
	if err := repos.Document.Create(doc); err != nil {
		t.Fatalf("failed to create document: %v", err)
	}
	ch1, err := repos.Chapter.GetOrCreate(&model.Chapter{DocumentID: doc.ID, Name: "第1章", SortOrder: 1})
	if err != nil {
		t.Fatalf("failed to create chapter: %v", err)
	}
	ch2, err := repos.Chapter.GetOrCreate(&model.Chapter{DocumentID: doc.ID, Name: "第2章", SortOrder: 2})
	if err != nil {
		t.Fatalf("failed to create chapter: %v", err)
	}
	return doc, ch1, ch2
}

func TestCreateMaintainsCounts(t *testing.T) {
	svc, repos := newTestService(t)
	doc, ch1, _ := seedChapters(t, repos)
	ctx := context.Background()

	q, err := svc.Create(ctx, &SaveQuestionRequest{
		ChapterID: ch1.ID,
		Type:      model.QuestionTypeSingle,
		Content:   "1+1=?",
		Options:   []string{"1", "2", "3", "4"},
		Answer:    "2",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if q.DocumentID != doc.ID {
		t.Errorf("document id should come from the chapter")
	}

	chapter, _ := repos.Chapter.GetByID(ch1.ID)
	if chapter.QuestionCount != 1 {
		t.Errorf("chapter count should be 1, got %d", chapter.QuestionCount)
	}
	gotDoc, _ := repos.Document.GetByID(doc.ID)
	if gotDoc.TotalQuestions != 1 {
		t.Errorf("document total should be 1, got %d", gotDoc.TotalQuestions)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, repos := newTestService(t)
	_, ch1, _ := seedChapters(t, repos)

	_, err := svc.Create(context.Background(), &SaveQuestionRequest{
		ChapterID: ch1.ID,
		Type:      "puzzle",
		Content:   "x",
	})
	if err == nil {
		t.Fatal("unknown question type should be rejected")
	}
}

func TestUpdateMovesBetweenChapters(t *testing.T) {
	svc, repos := newTestService(t)
	_, ch1, ch2 := seedChapters(t, repos)
	ctx := context.Background()

	q, err := svc.Create(ctx, &SaveQuestionRequest{
		ChapterID: ch1.ID,
		Type:      model.QuestionTypeSingle,
		Content:   "q",
		Answer:    "a",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Update(ctx, q.ID, &SaveQuestionRequest{
		ChapterID: ch2.ID,
		Type:      model.QuestionTypeJudge,
		Content:   "改过的题干",
		Answer:    "对",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	oldChapter, _ := repos.Chapter.GetByID(ch1.ID)
	newChapter, _ := repos.Chapter.GetByID(ch2.ID)
	if oldChapter.QuestionCount != 0 {
		t.Errorf("old chapter count should drop to 0, got %d", oldChapter.QuestionCount)
	}
	if newChapter.QuestionCount != 1 {
		t.Errorf("new chapter count should be 1, got %d", newChapter.QuestionCount)
	}

	got, _ := repos.Question.GetByID(q.ID)
	if got.ChapterID != ch2.ID || got.Type != model.QuestionTypeJudge {
		t.Errorf("question not updated: %+v", got)
	}
}

func TestDeleteMaintainsCounts(t *testing.T) {
	svc, repos := newTestService(t)
	doc, ch1, _ := seedChapters(t, repos)
	ctx := context.Background()

	q, err := svc.Create(ctx, &SaveQuestionRequest{
		ChapterID: ch1.ID,
		Type:      model.QuestionTypeFill,
		Content:   "填空",
		Answer:    "x",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(ctx, q.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	chapter, _ := repos.Chapter.GetByID(ch1.ID)
	if chapter.QuestionCount != 0 {
		t.Errorf("chapter count should return to 0, got %d", chapter.QuestionCount)
	}
	gotDoc, _ := repos.Document.GetByID(doc.ID)
	if gotDoc.TotalQuestions != 0 {
		t.Errorf("document total should return to 0, got %d", gotDoc.TotalQuestions)
	}
}
