package repository

import (
	"github.com/zhiqutech/tiku/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChapterRepository 章节数据访问
type ChapterRepository struct {
	db *gorm.DB
}

// NewChapterRepository 创建章节仓库
func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// GetOrCreate 按 (document_id, name) 创建章节，唯一键冲突时复用已有行
func (r *ChapterRepository) GetOrCreate(chapter *model.Chapter) (*model.Chapter, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(chapter).Error
	if err != nil {
		return nil, err
	}

	// 冲突时 Create 不回填主键，重新按唯一键取一次
	var existing model.Chapter
	err = r.db.Where("document_id = ? AND name = ?", chapter.DocumentID, chapter.Name).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// GetByID 获取章节
func (r *ChapterRepository) GetByID(id uint) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.db.Where("id = ?", id).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ListByDocument 列出文档的章节，按 sort_order 升序
func (r *ChapterRepository) ListByDocument(documentID uint) ([]*model.Chapter, error) {
	var chapters []*model.Chapter
	err := r.db.Where("document_id = ?", documentID).
		Order("sort_order ASC").Find(&chapters).Error
	return chapters, err
}

// Update 更新章节
func (r *ChapterRepository) Update(chapter *model.Chapter) error {
	return r.db.Save(chapter).Error
}

// UpdateQuestionCount 写入章节题目数缓存
func (r *ChapterRepository) UpdateQuestionCount(id uint, count int) error {
	return r.db.Model(&model.Chapter{}).Where("id = ?", id).
		Update("question_count", count).Error
}

// Delete 删除章节，级联删除其下题目
func (r *ChapterRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Question{}, "chapter_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Chapter{}, "id = ?", id).Error
	})
}
