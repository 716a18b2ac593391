package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/alerts"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/approval"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/bot"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/camera"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/config"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/dispatch"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/door"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/enroll"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/evidence"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/facedb"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/status"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/storage"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/vision"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/watch"
)

const (
	approvalTTL = time.Hour

	// consecutive capture failures before the owner is alerted
	cameraAlertAfter = 10
)

func init() {
	godotenv.Load()
}

// alertingSource wraps the camera so that a persistently dead camera reaches
// the owner's chat, not just the log.
type alertingSource struct {
	src      watch.FrameSource
	alerter  *alerts.Alerter
	failures int
}

func (s *alertingSource) Read() ([]byte, bool) {
	frame, ok := s.src.Read()
	if ok {
		s.failures = 0
		return frame, true
	}

	s.failures++
	if s.failures == cameraAlertAfter {
		s.alerter.Critical("camera", "repeated capture failures", nil)
	}
	return nil, false
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	db, err := facedb.Open(cfg.Face.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open face database", "error", err)
	}
	if db.Len() == 0 {
		logger.Warn("no faces enrolled yet, everyone at the door is a stranger")
	}

	recognizer, err := vision.NewRecognizer(cfg.Face.ModelsPath)
	if err != nil {
		logger.Fatal("failed to load face recognizer", "error", err)
	}
	defer recognizer.Close()

	relay, err := door.NewRelay(cfg.Door.RelayPin)
	if err != nil {
		logger.Fatal("failed to initialize gpio", "error", err)
	}

	cam, err := camera.Open(cfg.Camera)
	if err != nil {
		relay.Cleanup()
		logger.Fatal("failed to open camera", "error", err)
	}

	// minio evidence mirror (optional)
	var store *storage.Client
	if cfg.Storage.Enabled {
		store, err = storage.NewClient(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			logger.Error("failed to create storage client", "error", err)
			store = nil
		} else {
			initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := store.Init(initCtx); err != nil {
				logger.Error("failed to init storage bucket", "error", err)
				store = nil
			} else {
				logger.Info("evidence mirror enabled", "endpoint", cfg.Storage.Endpoint)
			}
			cancel()
		}
	}

	ev, err := evidence.NewStore(cfg.Evidence.UnknownFacesPath, store)
	if err != nil {
		cam.Release()
		relay.Cleanup()
		logger.Fatal("failed to create evidence store", "error", err)
	}

	enroller, err := enroll.NewService(recognizer, db, cfg.Face.KnownFacesPath)
	if err != nil {
		cam.Release()
		relay.Cleanup()
		logger.Fatal("failed to create enrollment service", "error", err)
	}

	approvals := approval.NewManager(approvalTTL)

	b, err := bot.New(bot.Config{
		Provider:       cfg.Bot.Provider,
		Token:          cfg.Bot.Token,
		AdminChatID:    cfg.Bot.AdminChatID,
		UnlockDuration: cfg.Door.UnlockDuration,
	}, bot.Deps{
		Approvals: approvals,
		Door:      relay,
		Enroller:  enroller,
		Status:    func() string { return status.Snapshot(db.Len()) },
	})
	if err != nil {
		cam.Release()
		relay.Cleanup()
		logger.Fatal("failed to create bot", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("bot stopped", "error", err)
		}
	}()

	alerter := alerts.New(func(msg string) {
		if err := b.Send(msg); err != nil {
			logger.Error("operator alert failed", "error", err)
		}
	}, time.Hour)

	pool := dispatch.NewPool(cfg.Dispatch.Workers, cfg.Dispatch.QueueSize)
	dispatcher := dispatch.New(pool, relay, ev, b, cfg.Door.UnlockDuration)

	loop := watch.New(
		&alertingSource{src: cam, alerter: alerter},
		recognizer,
		dispatcher,
		db.Snapshot,
		watch.Config{
			Threshold: cfg.Face.Threshold,
			Cooldown:  cfg.Door.Cooldown,
		},
	)

	// housekeeping: evidence retention, stale approvals, nightly backup
	scheduler := cron.New()
	scheduler.AddFunc(cfg.Evidence.SweepSchedule, func() {
		if _, err := ev.Sweep(cfg.Evidence.Retention); err != nil {
			logger.Error("evidence sweep failed", "error", err)
		}
		approvals.Sweep()

		if store != nil {
			healthCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if !store.Healthy(healthCtx) {
				alerter.Warn("storage", "evidence mirror unreachable", nil)
			}
			cancel()
		}
	})
	if store != nil {
		scheduler.AddFunc("30 3 * * *", func() {
			data, err := db.Export()
			if err != nil {
				logger.Error("database export failed", "error", err)
				return
			}
			backupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := store.BackupDatabase(backupCtx, data); err != nil {
				logger.Error("database backup failed", "error", err)
			}
		})
	}
	scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("decision loop panicked: %v", r)
			}
		}()
		errCh <- loop.Run(ctx)
	}()

	logger.Info("door system ready",
		"bot", cfg.Bot.Provider,
		"faces", db.Len(),
		"threshold", cfg.Face.Threshold,
		"cooldown", cfg.Door.Cooldown,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	abnormal := false
	select {
	case <-sigCh:
		logger.Info("shutting down on interrupt")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("decision loop failed", "error", err)
			abnormal = true
		}
	}

	cancel()
	scheduler.Stop()
	pool.Close()
	cam.Release()
	relay.Cleanup()

	logger.Info("shutdown complete")
	if abnormal {
		os.Exit(1)
	}
}
