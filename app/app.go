package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labgiga/lending-service/config"
	"github.com/labgiga/lending-service/internal/handler"
	"github.com/labgiga/lending-service/internal/repository"
	"github.com/labgiga/lending-service/internal/server"
	authsvc "github.com/labgiga/lending-service/internal/service/auth"
	borrowingsvc "github.com/labgiga/lending-service/internal/service/borrowing"
	commentsvc "github.com/labgiga/lending-service/internal/service/comment"
	itemsvc "github.com/labgiga/lending-service/internal/service/item"
	"github.com/labgiga/lending-service/migrations"
	"github.com/labgiga/lending-service/pkg/kafka"
	"github.com/labgiga/lending-service/pkg/logger"
	"github.com/labgiga/lending-service/pkg/postgres"
	"github.com/labgiga/lending-service/pkg/tokenstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "labgiga")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %v", err)
	}
	tokens := tokenstore.New(cfg.Redis)

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("kafka producer %v", err)
	}
	queue := kafka.NewEnqueuer(producer)

	authSvc := authsvc.NewService(repo, tokens, cfg.Auth, log)
	itemSvc := itemsvc.NewService(repo, log)
	borrowingSvc := borrowingsvc.NewService(repo, repo, repo, queue, log)
	commentSvc := commentsvc.NewService(repo, log)

	h := handler.New(authSvc, itemSvc, borrowingSvc, commentSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter([]byte(cfg.Auth.SigningKey)))

	bgCtx, bgCancel := context.WithCancel(context.Background())
	g, gCtx := errgroup.WithContext(bgCtx)
	g.Go(func() error {
		return borrowingSvc.RunOverdueSweep(gCtx, cfg.OverdueSweepInterval)
	})
	g.Go(func() error {
		consumerGroup, err := kafka.NewConsumerGroup(cfg.Kafka, kafka.NotifierGroup)
		if err != nil {
			return fmt.Errorf("kafka consumer %v", err)
		}
		defer consumerGroup.Close() //nolint:errcheck
		kafka.Consume(gCtx, consumerGroup, handler.NewConsumer(repo.CreateNotification, log), log, kafka.BorrowingEventsTopic)
		return nil
	})

	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	bgCancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("background workers", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	if err := tokens.Close(); err != nil {
		log.Error("tokens.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
