// Package dialer provides the power-dialer domain module: leads, call
// dispositions, the queue builder, caller-ID rotation and stats.
package dialer

import (
	"dialer_portal_backend/internal/dialer/handler"
	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/internal/dialer/service"
	apphttp "dialer_portal_backend/internal/http"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/events"
	"dialer_portal_backend/platform/logger"
	"dialer_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the dialer domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates a new dialer module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator, cfg config.DialerConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log, cfg)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "dialer"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for scheduler task handlers
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/dialer"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
