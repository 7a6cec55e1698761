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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/go-tenancy/tenancy/internal/engine/conf"
	"github.com/go-tenancy/tenancy/internal/engine/logic"
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/internal/engine/repo"
	"github.com/go-tenancy/tenancy/internal/engine/router"
	"github.com/go-tenancy/tenancy/internal/pkg/queue"
	"github.com/go-tenancy/tenancy/pkg/cache"
	"github.com/go-tenancy/tenancy/pkg/ctx"
	"github.com/go-tenancy/tenancy/pkg/database"
	"github.com/go-tenancy/tenancy/pkg/log"
	"github.com/go-tenancy/tenancy/pkg/mail"
)

type App struct {
	HttpApp   *fiber.App
	MailQueue *queue.MailQueue
	Cron      *cron.Cron
	Logger    *zap.Logger
	AppConf   conf.AppConfig
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string) (*App, func(), error) {
	// load config
	appConf := conf.NewConf(configFile)

	// init logger
	logger, err := log.NewLog(&appConf.Log)
	if err != nil {
		return nil, nil, err
	}

	// init Redis, database, context
	redisClient, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		return nil, nil, err
	}
	dbClient, err := database.NewDatabase(appConf.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := autoMigrate(dbClient); err != nil {
		return nil, nil, err
	}

	db := database.NewGormDB(dbClient)
	appCtx := ctx.NewContext(context.Background(), dbClient, redisClient, logger.Sugar())

	// mail sender + queue
	sender := mail.NewClient(appConf.Mail)
	appConf.Queue.RedisClient = redisClient
	mailQueue, err := queue.NewMailQueue(&appConf.Queue, sender)
	if err != nil {
		return nil, nil, err
	}

	// repos
	userRepo := repo.NewUserRepo(db)
	sessionRepo := repo.NewSessionRepo(db, redisClient)
	orgRepo := repo.NewOrganizationRepo(db)
	memberRepo := repo.NewMemberRepo(db)
	invRepo := repo.NewInvitationRepo(db)

	// logics
	userLogic := logic.NewUserLogic(appCtx, userRepo, sessionRepo, memberRepo)
	orgLogic := logic.NewOrganizationLogic(appCtx, orgRepo, memberRepo)
	invLogic := logic.NewInvitationLogic(appCtx, orgRepo, memberRepo, invRepo, userRepo, mailQueue, appConf.Http.BaseURL)

	rt := router.NewRouter(&appConf.Http, appCtx, userLogic, orgLogic, invLogic)
	httpApp := rt.Router(logger)

	// 周期清理过期邀请
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if _, err := invLogic.SweepExpired(); err != nil {
			log.Errorf("sweep expired invitations: %v", err)
		}
	}); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		c.Stop()
		mailQueue.Shutdown()
		if err := redisClient.Close(); err != nil {
			logger.Sugar().Warnf("close redis: %v", err)
		}
	}

	app := &App{
		HttpApp:   httpApp,
		MailQueue: mailQueue,
		Cron:      c,
		Logger:    logger,
		AppConf:   appConf,
	}
	return app, cleanup, nil
}

// autoMigrate 建表与结构演进
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Account{},
		&model.Verification{},
		&model.Organization{},
		&model.Member{},
		&model.Invitation{},
		&model.Passkey{},
		&model.OAuthClient{},
		&model.OAuthCode{},
		&model.DeviceCode{},
	)
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	logger := app.Logger
	appConf := app.AppConf

	// start mail queue worker (async)
	if err := app.MailQueue.Start(); err != nil {
		logger.Sugar().Errorf("mail queue start failed: %v", err)
	}

	// start invitation expiry sweeper
	app.Cron.Start()

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// start HTTP server (async)
	go func() {
		addr := appConf.Http.Host + ":" + fmt.Sprintf("%d", appConf.Http.Port)
		logger.Sugar().Infow("HTTP listener started",
			"address", addr,
		)
		if err := app.HttpApp.Listen(addr); err != nil {
			logger.Sugar().Errorw("HTTP listener failed",
				"address", addr,
				"error", err,
			)
		}
	}()

	// wait for exit signal
	sig := <-quit
	logger.Sugar().Infof("Received signal: %v, shutting down gracefully...", sig)

	shutdownTimeout := time.Duration(appConf.Http.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Sugar().Errorf("HTTP server shutdown error: %v", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	cleanup()

	logger.Info("Server shutdown complete")
}
