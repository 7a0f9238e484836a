package repository

import (
	"github.com/zhiqutech/tiku/internal/model"
	"gorm.io/gorm"
)

// DocumentRepository 文档数据访问
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create 创建文档
func (r *DocumentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

// GetByID 获取文档
func (r *DocumentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List 列出文档（按用户过滤，userID 为 0 时不过滤）
func (r *DocumentRepository) List(userID uint, offset, limit int) ([]*model.Document, int64, error) {
	var docs []*model.Document
	var total int64

	query := r.db.Model(&model.Document{})
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&docs).Error
	return docs, total, err
}

// Update 更新文档
func (r *DocumentRepository) Update(doc *model.Document) error {
	return r.db.Save(doc).Error
}

// ClaimForParse 原子地把文档从 pending/failed 置为 parsing
// 条件更新保证并发的重复触发只有一个能抢到任务，返回是否抢占成功
func (r *DocumentRepository) ClaimForParse(id, providerID uint, modelName, parseMethod string) (bool, error) {
	result := r.db.Model(&model.Document{}).
		Where("id = ? AND status IN ?", id, []string{model.DocumentStatusPending, model.DocumentStatusFailed}).
		Updates(map[string]interface{}{
			"status":       model.DocumentStatusParsing,
			"provider_id":  providerID,
			"model_name":   modelName,
			"parse_method": parseMethod,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStatus 更新文档状态
func (r *DocumentRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&model.Document{}).Where("id = ?", id).
		Update("status", status).Error
}

// MarkCompleted 标记解析完成，写入题目总数和备份路径
func (r *DocumentRepository) MarkCompleted(id uint, totalQuestions int, backupPath string) error {
	return r.db.Model(&model.Document{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          model.DocumentStatusCompleted,
			"total_questions": totalQuestions,
			"backup_path":     backupPath,
		}).Error
}

// UpdateTotalQuestions 刷新文档题目总数
func (r *DocumentRepository) UpdateTotalQuestions(id uint, total int) error {
	return r.db.Model(&model.Document{}).Where("id = ?", id).
		Update("total_questions", total).Error
}

// Delete 删除文档，级联删除章节、题目和解析日志
func (r *DocumentRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Question{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Chapter{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ParseLog{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Document{}, "id = ?", id).Error
	})
}
