package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yeti47/reelpress/config"
	"github.com/yeti47/reelpress/logging"
	"github.com/yeti47/reelpress/pipeline"
	"github.com/yeti47/reelpress/processing"
	"github.com/yeti47/reelpress/publish"
	"github.com/yeti47/reelpress/schedule"
	"github.com/yeti47/reelpress/storage"
	"github.com/yeti47/reelpress/web"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.json", "Path to the config file")

	// Config override flags
	sourceFolder := flag.String("source-folder", "", "Source folder id (overrides config)")
	processedFolder := flag.String("processed-folder", "", "Processed folder id (overrides config)")
	accountID := flag.String("account-id", "", "Publish account id (overrides config)")
	accessToken := flag.String("access-token", "", "Publish access token (overrides config)")
	watermark := flag.String("watermark", "", "Watermark image path (overrides config)")
	maxSegment := flag.Float64("max-segment-seconds", 0, "Maximum reel duration in seconds (overrides config)")
	sweepInterval := flag.Int("sweep-interval-minutes", 0, "Sweep interval in minutes (overrides config)")
	dailyHour := flag.Int("daily-hour", -1, "Daily sweep hour 0-23 (overrides config)")

	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Apply CLI overrides if provided
	overrides := config.ConfigOverrides{
		SourceFolderID:     sourceFolder,
		ProcessedFolderID:  processedFolder,
		PublishAccountID:   accountID,
		PublishAccessToken: accessToken,
		WatermarkPath:      watermark,
		MaxSegmentSeconds:  maxSegment,
		SweepInterval:      sweepInterval,
	}
	if *dailyHour >= 0 {
		overrides.DailyHour = dailyHour
	}
	cfg.Override(overrides)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	logger := logging.CreateLogger(logging.LogLevel(cfg.LogLevel), cfg.LogPath, "reelpress")
	logger.Info("Starting reelpress",
		"canvas", fmt.Sprintf("%dx%d", cfg.CanvasWidth, cfg.CanvasHeight),
		"maxSegmentSeconds", cfg.MaxSegmentSeconds,
		"sweepIntervalMinutes", cfg.SweepIntervalMinutes,
		"dailyHour", cfg.DailyHour)

	// Initialize database and post ledger
	database, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ledger, err := pipeline.NewLedger(database)
	if err != nil {
		log.Fatalf("Failed to create post ledger: %v", err)
	}

	// Initialize pipeline components
	httpTimeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	store := storage.NewDriveStoreClient(logger, cfg.StoreBaseURL, cfg.StoreUploadURL, cfg.StoreAccessToken, httpTimeout)
	prober := processing.NewFFprobeDurationProber(logger)
	transcoder := processing.NewFFmpegTranscoder(logger, cfg.FFmpegPath, time.Duration(cfg.TranscodeTimeoutSeconds)*time.Second)
	publisher := publish.NewGraphPublisher(logger, cfg.PublishBaseURL, cfg.PublishAccountID, cfg.PublishAccessToken, httpTimeout)

	orchestrator := pipeline.NewOrchestrator(logger, cfg, store, prober, transcoder, publisher, ledger)

	// Start the sweep scheduler
	interval := time.Duration(cfg.SweepIntervalMinutes) * time.Minute
	scheduler := schedule.NewScheduler(logger, interval, cfg.DailyHour, orchestrator.RunSweep)

	stopChan := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go scheduler.Start(stopChan, &wg)

	// Start the control server
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := web.NewServer(logger, orchestrator, ledger, scheduler.NextRun)
	addr := fmt.Sprintf("%s:%d", cfg.WebAddr, cfg.WebPort)
	go func() {
		logger.Info("Control server listening", "address", addr)
		if err := http.ListenAndServe(addr, server.Router()); err != nil {
			logger.Error("Control server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received, stopping scheduler")
	close(stopChan)
	wg.Wait()

	logger.Info("reelpress stopped")
}
