package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carinfo/api/internal/batch"
	"carinfo/api/internal/catalog"
	"carinfo/api/internal/config"
	"carinfo/api/internal/logger"
	"carinfo/api/internal/notify"
	"carinfo/api/internal/report"
	"carinfo/api/internal/store"
	"carinfo/api/internal/vision"
	"carinfo/api/internal/vision/gemini"
	"carinfo/api/internal/vision/openai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()
	runID := uuid.New()
	lg = lg.With(zap.String("run_id", runID.String()))

	engines := &vision.Engines{
		OpenAI: openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel).WithBaseURL(cfg.OpenAIBaseURL),
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
	}
	engine, err := engines.GetEngine(cfg.Provider)
	if err != nil {
		lg.Fatal("select engine", zap.Error(err))
	}

	items, err := catalog.Scan(cfg.ImagesDir)
	if err != nil {
		lg.Fatal("scan images", zap.String("dir", cfg.ImagesDir), zap.Error(err))
	}
	lg.Info("found images",
		zap.Int("count", len(items)),
		zap.String("dir", cfg.ImagesDir),
		zap.String("engine", engine.Name()),
		zap.String("model", engine.GetModel()),
	)

	started := time.Now()
	records := batch.New(engine, batch.WithLogger(lg)).Run(ctx, items)
	finished := time.Now()

	if err := report.Write(cfg.OutputPath, records); err != nil {
		lg.Fatal("write report", zap.String("path", cfg.OutputPath), zap.Error(err))
	}
	sum := report.Summarize(records)
	lg.Info("car information written", zap.String("path", cfg.OutputPath))
	lg.Info(fmt.Sprintf("Successfully processed: %d/%d", sum.Succeeded, sum.Total),
		zap.Duration("took", finished.Sub(started)),
	)

	if cfg.DatabaseURL != "" {
		run := store.Run{
			ID:         runID,
			StartedAt:  started,
			FinishedAt: finished,
			Engine:     engine.Name(),
			Model:      engine.GetModel(),
		}
		if err := archive(ctx, cfg.DatabaseURL, run, records); err != nil {
			lg.Warn("archive run", zap.String("db", safeDSNSummary(cfg.DatabaseURL)), zap.Error(err))
		} else {
			lg.Info("run archived", zap.String("db", safeDSNSummary(cfg.DatabaseURL)))
		}
	}

	if cfg.NotifyEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err == nil {
			err = tg.Notify(sum, cfg.OutputPath)
		}
		if err != nil {
			lg.Warn("telegram summary", zap.Error(err))
		}
	}
}

func archive(ctx context.Context, dsn string, run store.Run, records []report.Record) error {
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.NewReportRepo(db)
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return repo.SaveRun(ctx, run, records)
}

func safeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
