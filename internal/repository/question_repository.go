package repository

import (
	"github.com/zhiqutech/tiku/internal/model"
	"gorm.io/gorm"
)

// QuestionRepository 题目数据访问
type QuestionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建题目仓库
func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create 创建单个题目
func (r *QuestionRepository) Create(q *model.Question) error {
	return r.db.Create(q).Error
}

// CreateBatch 批量创建题目
func (r *QuestionRepository) CreateBatch(questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.CreateInBatches(questions, 100).Error
}

// GetByID 获取题目
func (r *QuestionRepository) GetByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.db.Where("id = ?", id).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByDocument 列出文档题目，可按章节过滤
func (r *QuestionRepository) ListByDocument(documentID, chapterID uint, offset, limit int) ([]*model.Question, int64, error) {
	var questions []*model.Question
	var total int64

	query := r.db.Model(&model.Question{}).Where("document_id = ?", documentID)
	if chapterID != 0 {
		query = query.Where("chapter_id = ?", chapterID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&questions).Error
	return questions, total, err
}

// ListAllByDocument 取文档全部题目，按章节顺序再按插入顺序
func (r *QuestionRepository) ListAllByDocument(documentID uint) ([]*model.Question, error) {
	var questions []*model.Question
	err := r.db.
		Joins("JOIN chapters ON chapters.id = questions.chapter_id").
		Where("questions.document_id = ?", documentID).
		Order("chapters.sort_order ASC, questions.id ASC").
		Find(&questions).Error
	return questions, err
}

// Update 更新题目
func (r *QuestionRepository) Update(q *model.Question) error {
	return r.db.Save(q).Error
}

// Delete 删除题目
func (r *QuestionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, "id = ?", id).Error
}

// DeleteByChapter 删除章节下全部题目
func (r *QuestionRepository) DeleteByChapter(chapterID uint) error {
	return r.db.Delete(&model.Question{}, "chapter_id = ?", chapterID).Error
}

// CountByChapter 统计章节题目数
func (r *QuestionRepository) CountByChapter(chapterID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("chapter_id = ?", chapterID).Count(&count).Error
	return count, err
}

// CountByDocument 统计文档题目数
func (r *QuestionRepository) CountByDocument(documentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("document_id = ?", documentID).Count(&count).Error
	return count, err
}

// SearchByKeyword 数据库 LIKE 检索（未配置 ES 时的退化路径）
func (r *QuestionRepository) SearchByKeyword(documentID uint, keyword string, limit int) ([]*model.Question, error) {
	var questions []*model.Question
	pattern := "%" + keyword + "%"
	err := r.db.Where("document_id = ? AND (content LIKE ? OR answer LIKE ?)", documentID, pattern, pattern).
		Order("id ASC").Limit(limit).Find(&questions).Error
	return questions, err
}
