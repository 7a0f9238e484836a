// Package service 组装全部业务服务
package service

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/zhiqutech/tiku/internal/config"
	"github.com/zhiqutech/tiku/internal/repository"
	"github.com/zhiqutech/tiku/internal/service/auth"
	"github.com/zhiqutech/tiku/internal/service/document"
	"github.com/zhiqutech/tiku/internal/service/file"
	"github.com/zhiqutech/tiku/internal/service/progress"
	"github.com/zhiqutech/tiku/internal/service/provider"
	"github.com/zhiqutech/tiku/internal/service/question"
	"github.com/zhiqutech/tiku/internal/service/search"
	"github.com/zhiqutech/tiku/internal/service/setting"
)

// Services 服务集合
type Services struct {
	Auth     *auth.Service
	Document *document.Service
	Question *question.Service
	Provider *provider.Registry
	Search   *search.Service
	Setting  *setting.Service
	Progress *progress.Service
	Storage  *file.LocalStorage

	Config *config.Config
}

// NewServices 创建所有服务并启动解析工作协程
func NewServices(ctx context.Context, repos *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	storage, err := file.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	searchSvc := search.NewService(repos, cfg)

	// 任务队列：单实例默认走进程内通道，多实例部署切到 Redis
	var queue document.Queue
	if cfg.Parse.Queue == "redis" && redisClient != nil {
		queue = document.NewRedisQueue(redisClient, "")
		log.Printf("using redis parse queue")
	} else {
		queue = document.NewMemoryQueue(cfg.Parse.QueueSize)
	}

	documentSvc := document.NewService(repos, cfg, queue, searchSvc)
	documentSvc.Start(ctx, cfg.Parse.Workers)

	return &Services{
		Auth:     auth.NewService(repos),
		Document: documentSvc,
		Question: question.NewService(repos),
		Provider: provider.NewRegistry(repos.Provider),
		Search:   searchSvc,
		Setting:  setting.NewService(repos),
		Progress: progress.NewService(repos),
		Storage:  storage,
		Config:   cfg,
	}, nil
}

// Stop 停止后台工作协程
func (s *Services) Stop() {
	s.Document.Stop()
}
