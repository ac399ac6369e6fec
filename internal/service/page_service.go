package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
	"github.com/noah-isme/peach-brawl/web"
)

type regionReader interface {
	Get(ctx context.Context, region models.Region) (models.RegionSnapshot, error)
}

// PageConfig describes the page shell and its offline worker.
type PageConfig struct {
	Title              string
	RefreshInterval    time.Duration
	ServiceWorkerPath  string
	ServiceWorkerScope string
	CacheName          string
	Assets             []string
}

type layoutView struct {
	Title              string
	RefreshSeconds     int
	Assignments        template.HTML
	Schedule           template.HTML
	ServiceWorkerPath  string
	ServiceWorkerScope string
}

// PageService renders the dashboard shell around the current region fragments.
type PageService struct {
	regions regionReader
	cfg     PageConfig
	layout  *template.Template
	worker  []byte
	logger  *zap.Logger
}

// NewPageService parses the layout and renders the service worker script once.
func NewPageService(regions regionReader, cfg PageConfig, logger *zap.Logger) (*PageService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Course Dashboard"
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}
	if cfg.ServiceWorkerScope == "" {
		cfg.ServiceWorkerScope = "/"
	}
	if len(cfg.Assets) == 0 {
		cfg.Assets = []string{"/", "/static/app.css", "/fragments/assignments", "/fragments/schedule"}
	}

	layout, err := template.ParseFS(web.FS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	worker, err := renderServiceWorker(cfg)
	if err != nil {
		return nil, err
	}
	return &PageService{regions: regions, cfg: cfg, layout: layout, worker: worker, logger: logger}, nil
}

func renderServiceWorker(cfg PageConfig) ([]byte, error) {
	tmpl, err := texttemplate.ParseFS(web.FS, "templates/sw.js")
	if err != nil {
		return nil, fmt.Errorf("parse service worker: %w", err)
	}
	cacheName, err := json.Marshal(cfg.CacheName)
	if err != nil {
		return nil, err
	}
	assets, err := json.Marshal(cfg.Assets)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{"CacheName": string(cacheName), "Assets": string(assets)}); err != nil {
		return nil, fmt.Errorf("render service worker: %w", err)
	}
	return buf.Bytes(), nil
}

// Fragment returns the current HTML of region. Regions not rendered yet show the loading text.
func (s *PageService) Fragment(ctx context.Context, region models.Region) (template.HTML, error) {
	snapshot, err := s.regions.Get(ctx, region)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return LoadingFragment, nil
		}
		return "", err
	}
	return snapshot.HTML, nil
}

// Page renders the full dashboard.
func (s *PageService) Page(ctx context.Context) (template.HTML, error) {
	view := layoutView{
		Title:              s.cfg.Title,
		RefreshSeconds:     int(s.cfg.RefreshInterval / time.Second),
		ServiceWorkerPath:  s.cfg.ServiceWorkerPath,
		ServiceWorkerScope: s.cfg.ServiceWorkerScope,
	}
	if view.RefreshSeconds < 1 {
		view.RefreshSeconds = 1
	}
	var err error
	if view.Assignments, err = s.Fragment(ctx, models.RegionAssignments); err != nil {
		return "", err
	}
	if view.Schedule, err = s.Fragment(ctx, models.RegionSchedule); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.layout.Execute(&buf, view); err != nil {
		s.logger.Error("render page", zap.Error(err))
		return "", fmt.Errorf("render page: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// ServiceWorker returns the offline caching script.
func (s *PageService) ServiceWorker() []byte {
	return s.worker
}

// ServiceWorkerScope returns the scope browsers may grant the worker.
func (s *PageService) ServiceWorkerScope() string {
	return s.cfg.ServiceWorkerScope
}
