package annotator

import (
	"net/http"

	apphttp "dialer_portal_backend/internal/http"
	"dialer_portal_backend/platform/httpkit"
	"dialer_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module exposes the transcript annotator over HTTP.
type Module struct {
	service *Service
	val     *validator.Validator
}

// NewModule creates the annotator module.
func NewModule(service *Service, val *validator.Validator) *Module {
	return &Module{service: service, val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "annotator"
}

type suggestRequest struct {
	Transcript string `json:"transcript" validate:"required,min=1,max=50000"`
}

// RegisterRoutes mounts the annotator routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/dialer/annotator/suggest", m.handleSuggest)
}

func (m *Module) handleSuggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	suggestion, err := m.service.Suggest(c.Request.Context(), req.Transcript)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, suggestion)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
