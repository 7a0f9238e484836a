package repository

import (
	"github.com/zhiqutech/tiku/internal/model"
	"gorm.io/gorm"
)

// ParseLogRepository 解析日志数据访问，只追加
type ParseLogRepository struct {
	db *gorm.DB
}

// NewParseLogRepository 创建解析日志仓库
func NewParseLogRepository(db *gorm.DB) *ParseLogRepository {
	return &ParseLogRepository{db: db}
}

// Create 追加一条解析日志
func (r *ParseLogRepository) Create(logEntry *model.ParseLog) error {
	return r.db.Create(logEntry).Error
}

// LatestByDocument 获取文档最近一条解析日志
func (r *ParseLogRepository) LatestByDocument(documentID uint) (*model.ParseLog, error) {
	var entry model.ParseLog
	err := r.db.Where("document_id = ?", documentID).
		Order("id DESC").First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByDocument 列出文档全部解析日志
func (r *ParseLogRepository) ListByDocument(documentID uint) ([]*model.ParseLog, error) {
	var entries []*model.ParseLog
	err := r.db.Where("document_id = ?", documentID).
		Order("id DESC").Find(&entries).Error
	return entries, err
}
