package model

import (
	"time"

	"gorm.io/datatypes"
)

// 文档状态
const (
	DocumentStatusPending   = "pending"   // 已上传，等待解析
	DocumentStatusParsing   = "parsing"   // 解析中
	DocumentStatusCompleted = "completed" // 解析完成
	DocumentStatusFailed    = "failed"    // 解析失败
)

// 文档业务类型
const (
	DocumentKindQuestionBank  = "question_bank"  // 题库
	DocumentKindKnowledgeBase = "knowledge_base" // 知识库
)

// ValidDocumentStatus 判断是否为合法状态
func ValidDocumentStatus(status string) bool {
	switch status {
	case DocumentStatusPending, DocumentStatusParsing, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

// Document 文档（题库记录），解析流水线的聚合根
type Document struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index" json:"user_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Kind           string    `gorm:"size:20;default:question_bank" json:"kind"`
	FileName       string    `gorm:"size:255" json:"file_name"`
	FilePath       string    `gorm:"size:500" json:"file_path"`
	FileSize       int64     `gorm:"default:0" json:"file_size"`
	ProviderID     uint      `gorm:"default:0" json:"provider_id"`
	ModelName      string    `gorm:"size:100" json:"model_name"`
	ParseMethod    string    `gorm:"size:50" json:"parse_method"`
	Status         string    `gorm:"size:20;index;default:pending" json:"status"`
	TotalQuestions int       `gorm:"default:0" json:"total_questions"`
	BackupPath     string    `gorm:"size:500" json:"backup_path"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Chapters       []Chapter `gorm:"foreignKey:DocumentID" json:"chapters,omitempty"`
}

// Chapter 章节，按题目的第一个标签聚合而来
// (document_id, name) 唯一；sort_order 从 1 开始连续编号
type Chapter struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	DocumentID    uint       `gorm:"uniqueIndex:idx_document_chapter;index" json:"document_id"`
	Name          string     `gorm:"size:255;uniqueIndex:idx_document_chapter" json:"name"`
	SortOrder     int        `gorm:"default:0" json:"sort_order"`
	QuestionCount int        `gorm:"default:0" json:"question_count"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Questions     []Question `gorm:"foreignKey:ChapterID" json:"questions,omitempty"`
}

// 题目类型
const (
	QuestionTypeSingle   = "single"   // 单选
	QuestionTypeMultiple = "multiple" // 多选
	QuestionTypeJudge    = "judge"    // 判断
	QuestionTypeFill     = "fill"     // 填空
	QuestionTypeEssay    = "essay"    // 问答
)

// ValidQuestionType 判断是否为合法题型
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeSingle, QuestionTypeMultiple, QuestionTypeJudge, QuestionTypeFill, QuestionTypeEssay:
		return true
	}
	return false
}

// Question 题目
type Question struct {
	ID          uint                         `gorm:"primaryKey" json:"id"`
	DocumentID  uint                         `gorm:"index" json:"document_id"`
	ChapterID   uint                         `gorm:"index" json:"chapter_id"`
	Number      string                       `gorm:"size:50" json:"number"`
	Type        string                       `gorm:"size:20;default:single" json:"type"`
	Content     string                       `gorm:"type:text;not null" json:"content"`
	Options     datatypes.JSONSlice[string]  `json:"options"`
	Answer      string                       `gorm:"type:text" json:"answer"`
	Explanation string                       `gorm:"type:text" json:"explanation"`
	Difficulty  int                          `gorm:"default:1" json:"difficulty"` // 1-3
	Tags        datatypes.JSONSlice[string]  `json:"tags"`
	CreatedAt   time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}

// 解析结果状态
const (
	ParseLogStatusSuccess = "success"
	ParseLogStatusPartial = "partial"
	ParseLogStatusFailed  = "failed"
)

// ParseLog 解析日志，一次解析尝试一条，只追加不修改
// 请求/响应载荷保存完整的上下行报文用于事后排查，超限时截断
type ParseLog struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	DocumentID      uint           `gorm:"index" json:"document_id"`
	Status          string         `gorm:"size:20" json:"status"`
	Method          string         `gorm:"size:50" json:"method"`
	TotalPages      int            `gorm:"default:0" json:"total_pages"`
	ProcessedPages  int            `gorm:"default:0" json:"processed_pages"`
	ErrorMessage    string         `gorm:"type:text" json:"error_message"`
	RequestPayload  datatypes.JSON `json:"request_payload,omitempty"`
	ResponsePayload datatypes.JSON `json:"response_payload,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// TableName 指定表名
func (Question) TableName() string {
	return "questions"
}

// TableName 指定表名
func (ParseLog) TableName() string {
	return "parse_logs"
}
