package webhook

import (
	"dialer_portal_backend/internal/events"
	apphttp "dialer_portal_backend/internal/http"
	"dialer_portal_backend/platform/httpkit"
	"dialer_portal_backend/platform/logger"
	"dialer_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the telephony webhook bounded context module implementing
// http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
	service *Service
}

// NewModule creates and initializes the webhook module with all its
// dependencies.
func NewModule(pool *pgxpool.Pool, leads LeadResolver, numbers NumberResolver, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, leads, numbers, eventBus, log)
	handler := NewHandler(service, val)

	return &Module{
		handler: handler,
		repo:    repo,
		service: service,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// Repository returns the repository for cross-module wiring (recordings).
func (m *Module) Repository() *Repository {
	return m.repo
}

// SetRecordingPresigner enables presigned downloads of archived recordings.
func (m *Module) SetRecordingPresigner(presigner RecordingPresigner) {
	m.service.SetRecordingPresigner(presigner)
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Provider callbacks (API key auth, no JWT)
	providerGroup := ctx.V1.Group("/webhook/telephony")
	providerGroup.Use(APIKeyAuthMiddleware(m.repo))
	providerGroup.POST("/status", m.handler.HandleStatusCallback)

	// Call-log read side for the dialer UI (JWT auth)
	ctx.Protected.GET("/dialer/leads/:id/calls", m.handler.HandleListCallLogs)
	ctx.Protected.GET("/dialer/calls/:callSid/recording", m.handler.HandleRecordingDownload)

	// API key management (JWT auth, admin only)
	keysGroup := ctx.Protected.Group("/webhook/keys")
	keysGroup.Use(httpkit.RequireRole("admin"))
	keysGroup.POST("", m.handler.HandleCreateAPIKey)
	keysGroup.GET("", m.handler.HandleListAPIKeys)
	keysGroup.DELETE("/:keyId", m.handler.HandleRevokeAPIKey)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
