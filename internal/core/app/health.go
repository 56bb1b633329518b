package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.parser != nil {
		status.Components["parser"] = fmt.Sprintf("ok (%d extensions)", len(s.app.parser.SupportedExtensions()))
	} else {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	}

	if s.app.origins != nil {
		status.Components["resolver"] = fmt.Sprintf("ok (%d cached)", s.app.origins.CacheLen())
	} else {
		status.Status = "degraded"
		status.Components["resolver"] = "missing"
	}

	s.app.reportsMu.RLock()
	status.Components["reports"] = fmt.Sprintf("%d files", len(s.app.reports))
	s.app.reportsMu.RUnlock()

	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	if s.app.activeWatcher != nil {
		status.Components["watcher"] = "running"
	}

	return status
}

// Components flattens Check into the map served on /health.
func (s *HealthService) Components(ctx context.Context) map[string]string {
	check := s.Check(ctx)
	out := make(map[string]string, len(check.Components)+1)
	for k, v := range check.Components {
		out[k] = v
	}
	out["status"] = check.Status
	return out
}
