package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB       *gorm.DB // 直接访问数据库
	User     *UserRepository
	Document *DocumentRepository
	Chapter  *ChapterRepository
	Question *QuestionRepository
	ParseLog *ParseLogRepository
	Provider *ProviderRepository
	Setting  *SettingRepository
	Progress *ProgressRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:       db,
		User:     NewUserRepository(db),
		Document: NewDocumentRepository(db),
		Chapter:  NewChapterRepository(db),
		Question: NewQuestionRepository(db),
		ParseLog: NewParseLogRepository(db),
		Provider: NewProviderRepository(db),
		Setting:  NewSettingRepository(db),
		Progress: NewProgressRepository(db),
	}
}
