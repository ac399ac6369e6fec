package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/internal/repository"
	"github.com/noah-isme/peach-brawl/internal/service"
	"github.com/noah-isme/peach-brawl/pkg/config"
	"github.com/noah-isme/peach-brawl/pkg/logger"
)

func main() {
	var (
		source  string
		format  string
		output  string
		timeout time.Duration
	)

	flag.StringVar(&source, "source", "canvas", "Where to read assignments from: canvas or endpoint")
	flag.StringVar(&format, "format", "text", "Output format: text, csv or pdf")
	flag.StringVar(&output, "out", "", "Write to this file instead of stdout")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Overall time limit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg, "calendar")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	assignments, err := loadAssignments(ctx, cfg, source, logr)
	if err != nil {
		logr.Fatal("failed to load assignments", zap.String("source", source), zap.Error(err))
	}

	dates, err := service.NewDueDateFormatter(cfg.Display.TimeZone, cfg.Display.DateLayout)
	if err != nil {
		logr.Warn("unknown display time zone, using UTC", zap.String("zone", cfg.Display.TimeZone))
	}
	calendar := service.NewCalendarService(dates)
	view := calendar.Weeks(assignments)

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			logr.Fatal("failed to create output", zap.String("path", output), zap.Error(err))
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	if format == "text" {
		if len(view.Weeks) == 0 && len(view.Undated) == 0 {
			fmt.Fprintln(out, "No upcoming assignments")
			return
		}
		if err := calendar.WriteText(out, view); err != nil {
			logr.Fatal("failed to write calendar", zap.Error(err))
		}
		return
	}

	file, err := calendar.Export(view, format)
	if err != nil {
		logr.Fatal("failed to export calendar", zap.String("format", format), zap.Error(err))
	}
	if _, err := out.Write(file.Body); err != nil {
		logr.Fatal("failed to write calendar", zap.Error(err))
	}
}

func loadAssignments(ctx context.Context, cfg *config.Config, source string, logr *zap.Logger) ([]models.AssignmentRecord, error) {
	switch source {
	case "canvas":
		if cfg.Canvas.URL == "" || cfg.Canvas.Token == "" {
			return nil, fmt.Errorf("CANVAS_URL and CANVAS_TOKEN are required")
		}
		repo := repository.NewCanvasRepository(cfg.Canvas.URL, cfg.Canvas.Token, cfg.Canvas.Timeout, logr)
		svc := service.NewCanvasService(repo, nil, nil, logr, service.CanvasServiceConfig{Horizon: cfg.Canvas.Horizon})
		return svc.Assignments(ctx)
	case "endpoint":
		svc := service.NewSyncService(service.SyncServiceParams{
			Endpoint: cfg.Sync.Endpoint,
			Client:   &http.Client{Timeout: cfg.Sync.Timeout},
			Logger:   logr,
		})
		payload, err := svc.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if payload.AssignmentsErr != nil {
			return nil, payload.AssignmentsErr
		}
		return payload.Assignments, nil
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}
