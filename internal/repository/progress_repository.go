package repository

import (
	"github.com/zhiqutech/tiku/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository 学习进度数据访问
type ProgressRepository struct {
	db *gorm.DB
}

// NewProgressRepository 创建学习进度仓库
func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert 按 (user, document, mode, chapter) 写入进度，存在则更新
func (r *ProgressRepository) Upsert(p *model.StudyProgress) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "document_id"}, {Name: "mode"}, {Name: "chapter_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_question_id", "answered_count", "correct_count", "updated_at",
		}),
	}).Create(p).Error
}

// Get 获取某个维度的进度
func (r *ProgressRepository) Get(userID, documentID uint, mode string, chapterID uint) (*model.StudyProgress, error) {
	var p model.StudyProgress
	err := r.db.Where("user_id = ? AND document_id = ? AND mode = ? AND chapter_id = ?",
		userID, documentID, mode, chapterID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser 列出用户在某文档下的全部进度
func (r *ProgressRepository) ListByUser(userID, documentID uint) ([]*model.StudyProgress, error) {
	var list []*model.StudyProgress
	query := r.db.Where("user_id = ?", userID)
	if documentID != 0 {
		query = query.Where("document_id = ?", documentID)
	}
	err := query.Order("updated_at DESC").Find(&list).Error
	return list, err
}
