package model

import "time"

// 练习模式
const (
	StudyModeChapter = "chapter" // 按章节练习
	StudyModeExam    = "exam"    // 整卷模拟
)

// StudyProgress 学习进度
// 按 (user, document, mode, chapter) 维度记录；整卷模式 chapter_id 为 0
type StudyProgress struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex:idx_user_doc_mode_chapter" json:"user_id"`
	DocumentID     uint      `gorm:"uniqueIndex:idx_user_doc_mode_chapter" json:"document_id"`
	Mode           string    `gorm:"size:20;uniqueIndex:idx_user_doc_mode_chapter" json:"mode"`
	ChapterID      uint      `gorm:"default:0;uniqueIndex:idx_user_doc_mode_chapter" json:"chapter_id"`
	LastQuestionID uint      `gorm:"default:0" json:"last_question_id"`
	AnsweredCount  int       `gorm:"default:0" json:"answered_count"`
	CorrectCount   int       `gorm:"default:0" json:"correct_count"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (StudyProgress) TableName() string {
	return "study_progress"
}
