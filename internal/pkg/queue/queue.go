// Copyright 2025 Tenancy Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/go-tenancy/tenancy/pkg/log"
	"github.com/go-tenancy/tenancy/pkg/mail"
)

// 队列名称
const (
	Critical = "critical"
	Default  = "default"
	Low      = "low"
)

// Config 队列配置
type Config struct {
	Concurrency     int            `mapstructure:"concurrency"`
	Queues          map[string]int `mapstructure:"queues"`
	DefaultQueue    string         `mapstructure:"defaultQueue"`
	MaxRetry        int            `mapstructure:"maxRetry"`
	Timeout         int            `mapstructure:"timeout"`         // 任务超时，秒
	ShutdownTimeout int            `mapstructure:"shutdownTimeout"` // 秒
	LogLevel        string         `mapstructure:"logLevel"`

	RedisClient redis.UniversalClient `mapstructure:"-"`
}

// SetDefaults 设置默认值
func (c *Config) SetDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if len(c.Queues) == 0 {
		c.Queues = map[string]int{
			Critical: 6,
			Default:  3,
			Low:      1,
		}
	}
	if c.DefaultQueue == "" {
		c.DefaultQueue = Default
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10
	}
}

// MailQueue 邮件投递队列，发布与消费共用一个 Redis 连接
type MailQueue struct {
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	config   *Config
	redisOpt asynq.RedisConnOpt
}

// NewMailQueue 创建邮件队列
func NewMailQueue(cfg *Config, sender mail.Sender) (*MailQueue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("queue config is required")
	}
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	cfg.SetDefaults()

	redisOpt := &redisConnOptWrapper{client: cfg.RedisClient}

	var logLevel asynq.LogLevel
	if cfg.LogLevel != "" {
		if err := logLevel.Set(cfg.LogLevel); err != nil {
			log.Warnw("invalid log level, using default info", "logLevel", cfg.LogLevel, "error", err)
			logLevel = asynq.InfoLevel
		}
	} else {
		logLevel = asynq.InfoLevel
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Concurrency,
		Queues:          cfg.Queues,
		Logger:          &asynqLoggerAdapter{},
		LogLevel:        logLevel,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeout) * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInvitationEmail, newInvitationEmailHandler(sender))

	q := &MailQueue{
		client:   asynq.NewClient(redisOpt),
		server:   server,
		mux:      mux,
		config:   cfg,
		redisOpt: redisOpt,
	}

	log.Infow("mail queue created", "queues", cfg.Queues, "concurrency", cfg.Concurrency)

	return q, nil
}

// Enqueue 入队任务
func (q *MailQueue) Enqueue(taskType string, payload []byte, queueName string) error {
	if queueName == "" {
		queueName = q.config.DefaultQueue
	}

	task := asynq.NewTask(taskType, payload)
	info, err := q.client.Enqueue(task,
		asynq.Queue(queueName),
		asynq.MaxRetry(q.config.MaxRetry),
		asynq.Timeout(time.Duration(q.config.Timeout)*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue task %s: %w", taskType, err)
	}

	log.Debugw("task enqueued", "taskType", taskType, "taskId", info.ID, "queue", info.Queue)

	return nil
}

// Start 启动消费端
func (q *MailQueue) Start() error {
	return q.server.Start(q.mux)
}

// Shutdown 优雅停机，先停消费端再关发布端
func (q *MailQueue) Shutdown() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		log.Warnw("close queue client", "error", err)
	}
}

// redisConnOptWrapper 包装已有的 Redis 客户端实现 RedisConnOpt 接口
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

// MakeRedisClient 实现 RedisConnOpt 接口
func (r *redisConnOptWrapper) MakeRedisClient() interface{} {
	return r.client
}
