// Package health contiene el service de readiness.
package health

import (
	"context"
	"fmt"
	"time"

	dto "github.com/dropDatabas3/efedauth/internal/http/dto/health"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Check es un ping a una dependencia.
type Check func(ctx context.Context) error

// Deps: DB y sesiones son críticos; Limiter (backend compartido) no.
type Deps struct {
	DBCheck      Check
	SessionCheck Check
	LimiterCheck Check
	Version      string
	Commit       string
	Timeout      time.Duration
	Now          func() time.Time
}

type healthService struct {
	deps Deps
}

func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("health"), logger.Op("Check"))

	resp := dto.HealthResponse{
		Components: make(map[string]dto.ComponentStatus),
		Version:    s.deps.Version,
		Commit:     s.deps.Commit,
		Timestamp:  s.deps.Now(),
	}

	critical, degraded := false, false
	probe := func(name string, check Check, isCritical bool) {
		if check == nil {
			resp.Components[name] = dto.ComponentStatus{Status: "disabled"}
			return
		}
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		defer cancel()
		if err := check(cctx); err != nil {
			resp.Components[name] = dto.ComponentStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
			log.Warn("component unavailable", logger.String("component", name), logger.Err(err))
			if isCritical {
				critical = true
			} else {
				degraded = true
			}
			return
		}
		resp.Components[name] = dto.ComponentStatus{Status: "ok"}
	}

	probe("db", s.deps.DBCheck, true)
	probe("sessions", s.deps.SessionCheck, true)
	probe("rate_limiter", s.deps.LimiterCheck, false)

	switch {
	case critical:
		resp.Status = "unavailable"
	case degraded:
		resp.Status = "degraded"
	default:
		resp.Status = "ready"
	}
	return resp
}
