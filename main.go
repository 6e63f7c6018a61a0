package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fulfillment-export-service/config"
	"fulfillment-export-service/core"
	"fulfillment-export-service/workers/export"
	"fulfillment-export-service/workers/export/models"
	"fulfillment-export-service/workers/export/notify"
	"fulfillment-export-service/workers/export/render"
	"fulfillment-export-service/workers/export/repositories"
	"fulfillment-export-service/workers/export/transport"
)

func main() {
	once := flag.Bool("once", false, "run a single export batch and exit")
	flag.Parse()

	cfg := config.LoadConfig()

	logger, err := core.NewLogger(*cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		log.Fatal(err)
	}

	transporter := transport.NewSFTPTransporter(logger, transport.Config{
		Host:      cfg.SFTP.Host,
		Port:      cfg.SFTP.Port,
		Username:  cfg.SFTP.Username,
		Password:  cfg.SFTP.Password,
		RemoteDir: cfg.SFTP.RemoteDir,
	})

	var notifier notify.Notifier = notify.NopNotifier{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier, err := notify.NewKafkaNotifier(logger, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatal(err)
		}
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	worker, err := export.NewWorker(
		logger,
		repositories.NewOrderRepository(db),
		repositories.NewExportLogRepository(db),
		transporter,
		notifier,
		export.Config{
			Schedule:      cfg.Schedule,
			ReadyStatus:   cfg.ReadyStatus,
			CutoffHour:    cfg.CutoffHour,
			CutoffMinute:  cfg.CutoffMinute,
			ArchiveDir:    cfg.ArchiveDirectory,
			RetentionDays: cfg.RetentionDays,
			Render: render.Settings{
				AccountRef:  cfg.AccountRef,
				Courier:     cfg.Courier,
				ServiceCode: cfg.ServiceCode,
			},
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	// One-shot mode for an external scheduler: the exit code reports
	// the run outcome (failed batches retry on the next invocation).
	if *once {
		status := worker.Run()
		logger.Info("Export run finished", zap.String("status", string(status)))
		logger.Sync()
		if status == models.ExportFailed {
			os.Exit(1)
		}
		return
	}

	orchestrator := core.NewOrchestrator(logger, []core.Worker{worker})

	c, err := orchestrator.Start(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Stop()

	// Wait for termination signal to exit gracefully
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
