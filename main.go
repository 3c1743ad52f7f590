package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-lists/bot"
	"discord-lists/channel"
	"discord-lists/command"
	"discord-lists/config"
	"discord-lists/database"
	admin "discord-lists/grpc"
	"discord-lists/handlers"
	"discord-lists/utils"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config-dir", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	store, err := database.InitDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("error initializing database", zap.Error(err))
	}
	defer store.Close()

	b, err := bot.NewBot(cfg.Bot, logger)
	if err != nil {
		logger.Fatal("error initializing bot", zap.Error(err))
	}

	// From here on warnings and errors are mirrored to the admin channel.
	logger = utils.WithAdminChannel(logger, b.Session, cfg.Bot.AdminChannelID)

	manager := channel.NewManager(store, channel.NewBaseURLFormatter(cfg.Links.BaseURL), logger)

	scheduler, err := bot.NewScheduler(cfg.Scheduler.AuditSpec, store, logger)
	if err != nil {
		logger.Fatal("error initializing scheduler", zap.Error(err))
	}
	b.UseScheduler(scheduler)
	b.RegisterCommands(command.AllCommands)

	timeout := time.Duration(cfg.GRPC.TimeoutSeconds) * time.Second
	h := handlers.NewHandler(manager, logger, timeout)

	var adminServer interface{ GracefulStop() }
	if cfg.GRPC.Address != "" {
		lis, err := admin.Listen(cfg.GRPC.Address, cfg.GRPC.MaxConnections)
		if err != nil {
			logger.Fatal("error starting admin listener", zap.Error(err))
		}
		gs := admin.NewGRPCServer(admin.NewServer(manager, logger))
		adminServer = gs
		go func() {
			logger.Info("admin gRPC server listening", zap.String("address", lis.Addr().String()))
			if err := gs.Serve(lis); err != nil {
				logger.Error("admin gRPC server stopped", zap.Error(err))
			}
		}()
	}

	if err := b.Start(handlers.Register(h)); err != nil {
		logger.Fatal("error starting bot", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if adminServer != nil {
		adminServer.GracefulStop()
	}
	b.Stop()
}
