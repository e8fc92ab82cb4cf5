package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/application/service"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/payload"
	"github.com/traveldesk/traveldesk/internal/settlement"
	"github.com/traveldesk/traveldesk/internal/validate"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	travel       service.TravelService
	claims       service.ClaimService
	master       port.MasterDataRepository
	statements   *settlement.Generator
	statementDir string
	logger       Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	travel service.TravelService,
	claims service.ClaimService,
	master port.MasterDataRepository,
	statements *settlement.Generator,
	statementDir string,
	logger Logger,
) *Handlers {
	return &Handlers{
		travel:       travel,
		claims:       claims,
		master:       master,
		statements:   statements,
		statementDir: statementDir,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ViolationsResponse carries validation violations back to the client.
type ViolationsResponse struct {
	Violations []validate.Violation `json:"violations"`
}

// ActionRequest is the body of POST /api/applications/:id/actions.
type ActionRequest struct {
	Action  string `json:"action" binding:"required"`
	Remarks string `json:"remarks"`
}

// ListRequest represents pagination query parameters
type ListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateApplication handles POST /api/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var app entity.TravelApplication
	if err := c.ShouldBindJSON(&app); err != nil {
		h.logger.Error("Invalid application body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid application body",
		})
		return
	}

	created, violations, err := h.travel.CreateDraft(c.Request.Context(), app)
	if err != nil {
		h.logger.Error("Failed to create draft", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to create draft: " + err.Error(),
		})
		return
	}
	if len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    ViolationsResponse{Violations: violations},
			Error:   "application failed validation",
		})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    created,
	})
}

// ValidateApplication handles POST /api/applications/validate. With a
// ?field= query parameter only the rules scoped to that field run; the
// resulting violations are always a subset of the full run.
func (h *Handlers) ValidateApplication(c *gin.Context) {
	var app entity.TravelApplication
	if err := c.ShouldBindJSON(&app); err != nil {
		h.logger.Error("Invalid application body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid application body",
		})
		return
	}

	var violations []validate.Violation
	if field := c.Query("field"); field != "" {
		violations = validate.ValidateField(app, field)
	} else {
		violations = validate.ValidateApplication(app)
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ViolationsResponse{Violations: violations},
	})
}

// ListApplications handles GET /api/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	apps, err := h.travel.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list applications", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve applications",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    apps,
	})
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	app, err := h.travel.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "application")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    app,
	})
}

// GetSubmissionPayload handles GET /api/applications/:id/payload. The
// payload is the canonical wire form of the application; encoding the same
// application twice yields byte-identical output.
func (h *Handlers) GetSubmissionPayload(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	app, err := h.travel.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "application")
		return
	}

	wire, err := payload.ToSubmissionPayload(*app)
	if err != nil {
		h.logger.Error("Failed to build payload", "id", id, "error", err)
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}
	encoded, err := payload.Encode(wire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to encode payload",
		})
		return
	}

	c.Data(http.StatusOK, "application/json", encoded)
}

// ApplicationAction handles POST /api/applications/:id/actions
func (h *Handlers) ApplicationAction(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "action is required",
		})
		return
	}

	var app *entity.TravelApplication
	var err error
	switch req.Action {
	case "submit":
		app, err = h.travel.Submit(c.Request.Context(), id)
	case "approve", "reject":
		app, err = h.travel.Decide(c.Request.Context(), id, service.Decision(req.Action), req.Remarks)
	default:
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "unknown action: " + req.Action,
		})
		return
	}
	if err != nil {
		h.respondError(c, err, "application")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    app,
	})
}

// CompleteBooking handles POST /api/applications/:id/bookings/:bookingID/complete
func (h *Handlers) CompleteBooking(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	bookingID, ok := h.pathID(c, "bookingID")
	if !ok {
		return
	}

	app, err := h.travel.CompleteBooking(c.Request.Context(), id, bookingID)
	if err != nil {
		h.respondError(c, err, "booking")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    app,
	})
}

// pathID parses a numeric path parameter, responding with 400 on failure.
func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Error("Invalid path id", "param", name, "value", raw)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid " + name,
		})
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto HTTP statuses.
func (h *Handlers) respondError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   what + " not found",
		})
	case errors.Is(err, service.ErrNotClaimable),
		errors.Is(err, service.ErrClaimExists),
		errors.Is(err, service.ErrClaimImmutable):
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   err.Error(),
		})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
		})
	}
}
