package webhook

import (
	"net/http"
	"strconv"
	"time"

	"dialer_portal_backend/platform/httpkit"
	"dialer_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
	errInvalidID      = "invalid id"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleStatusCallback processes a provider call lifecycle event.
// POST /api/v1/webhook/telephony/status
// The provider posts application/x-www-form-urlencoded fields.
func (h *Handler) HandleStatusCallback(c *gin.Context) {
	event := NormalizeStatusEvent(c.PostForm)

	callLog, err := h.service.ProcessStatusEvent(c.Request.Context(), event)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusOK, toCallLogResponse(callLog))
}

// HandleListCallLogs returns a lead's call logs.
// GET /api/v1/dialer/leads/:id/calls
func (h *Handler) HandleListCallLogs(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.service.CallLogsForLead(c.Request.Context(), leadID, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]CallLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, toCallLogResponse(log))
	}
	httpkit.OK(c, gin.H{"calls": responses})
}

// HandleRecordingDownload resolves a download URL for a call's recording.
// GET /api/v1/dialer/calls/:callSid/recording
func (h *Handler) HandleRecordingDownload(c *gin.Context) {
	callSID := c.Param("callSid")
	if callSID == "" {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return
	}

	download, err := h.service.RecordingDownloadURL(c.Request.Context(), callSID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := gin.H{"url": download.URL}
	if download.ExpiresAt != nil {
		resp["expiresAt"] = download.ExpiresAt
	}
	httpkit.OK(c, resp)
}

type createAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// HandleCreateAPIKey mints a new webhook API key.
// POST /api/v1/webhook/keys
func (h *Handler) HandleCreateAPIKey(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	key, plaintext, err := h.service.CreateAPIKey(c.Request.Context(), req.Name)
	if httpkit.HandleError(c, err) {
		return
	}

	// The plaintext key is shown exactly once.
	c.JSON(http.StatusCreated, gin.H{
		"id":        key.ID,
		"name":      key.Name,
		"key":       plaintext,
		"keyPrefix": key.KeyPrefix,
		"createdAt": key.CreatedAt,
	})
}

// HandleListAPIKeys lists webhook API keys without their hashes.
// GET /api/v1/webhook/keys
func (h *Handler) HandleListAPIKeys(c *gin.Context) {
	keys, err := h.service.ListAPIKeys(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		out = append(out, gin.H{
			"id":        key.ID,
			"name":      key.Name,
			"keyPrefix": key.KeyPrefix,
			"isActive":  key.IsActive,
			"createdAt": key.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"keys": out})
}

// HandleRevokeAPIKey deactivates a webhook API key.
// DELETE /api/v1/webhook/keys/:keyId
func (h *Handler) HandleRevokeAPIKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return
	}

	if err := h.service.RevokeAPIKey(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "revoked"})
}

// CallLogResponse is the JSON shape of one normalized call.
type CallLogResponse struct {
	ID              uuid.UUID  `json:"id"`
	CallSID         string     `json:"callSid"`
	LeadID          *uuid.UUID `json:"leadId,omitempty"`
	NumberID        *uuid.UUID `json:"numberId,omitempty"`
	FromNumber      string     `json:"fromNumber"`
	ToNumber        string     `json:"toNumber"`
	Direction       string     `json:"direction"`
	Status          string     `json:"status"`
	DurationSeconds int        `json:"durationSeconds"`
	RecordingURL    *string    `json:"recordingUrl,omitempty"`
	RecordingKey    *string    `json:"recordingKey,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toCallLogResponse(log CallLog) CallLogResponse {
	return CallLogResponse{
		ID:              log.ID,
		CallSID:         log.CallSID,
		LeadID:          log.LeadID,
		NumberID:        log.NumberID,
		FromNumber:      log.FromNumber,
		ToNumber:        log.ToNumber,
		Direction:       log.Direction,
		Status:          string(log.Status),
		DurationSeconds: log.DurationSeconds,
		RecordingURL:    log.RecordingURL,
		RecordingKey:    log.RecordingKey,
		CreatedAt:       log.CreatedAt,
		UpdatedAt:       log.UpdatedAt,
	}
}
