package app

import (
	"context"
	"fmt"
	"time"
	"verylcheck/internal/shared/observability"
)

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	m := s.app.Metadata()
	if m == nil {
		status.Status = "degraded"
		status.Components["metadata"] = "missing"
	} else {
		status.Components["metadata"] = fmt.Sprintf("ok (%s)", m.Project.Name)
	}

	if s.app.FactStore() != nil {
		status.Components["facts_store"] = "ok"
	} else if m != nil && m.Analysis.PersistFacts {
		status.Status = "degraded"
		status.Components["facts_store"] = "missing but enabled in config"
	}

	if last := s.app.LastResult(); last != nil {
		status.Components["last_check"] = fmt.Sprintf("ok (%d files, %d diagnostics, %s)",
			len(last.Files), len(last.Diagnostics), last.StartedAt.Format(time.RFC3339))
	} else {
		status.Components["last_check"] = "pending"
	}

	return status
}
