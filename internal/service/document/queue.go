package document

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Task 一次解析任务
type Task struct {
	DocumentID uint   `json:"document_id"`
	TaskID     string `json:"task_id"`
}

// Queue 解析任务队列
// 有界：Enqueue 在队列满时立即报错而不是阻塞请求
type Queue interface {
	// Enqueue 投递任务，队列满时报错
	Enqueue(ctx context.Context, task Task) error
	// Dequeue 阻塞取出任务，ctx 取消时返回错误
	Dequeue(ctx context.Context) (Task, error)
}

// memoryQueue 进程内通道队列，默认实现
type memoryQueue struct {
	ch chan Task
}

// NewMemoryQueue 创建进程内任务队列
func NewMemoryQueue(size int) Queue {
	if size <= 0 {
		size = 64
	}
	return &memoryQueue{ch: make(chan Task, size)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, task Task) error {
	select {
	case q.ch <- task:
		return nil
	default:
		return fmt.Errorf("parse queue is full")
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-q.ch:
		return task, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// redisQueue Redis 列表队列，多实例部署时共享任务
type redisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue 创建 Redis 任务队列
func NewRedisQueue(client *redis.Client, key string) Queue {
	if key == "" {
		key = "tiku:parse_queue"
	}
	return &redisQueue{client: client, key: key}
}

func (q *redisQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

func (q *redisQueue) Dequeue(ctx context.Context) (Task, error) {
	// BRPOP 阻塞等待，超时 0 表示一直等到 ctx 取消
	result, err := q.client.BRPop(ctx, 0, q.key).Result()
	if err != nil {
		return Task{}, err
	}
	if len(result) < 2 {
		return Task{}, fmt.Errorf("unexpected brpop result")
	}

	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return Task{}, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return task, nil
}
