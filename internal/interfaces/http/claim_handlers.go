package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// CreateClaimRequest is the body of POST /api/claims.
type CreateClaimRequest struct {
	ApplicationID int64 `json:"application_id" binding:"required"`
}

// UpdateAmountRequest is the body of PUT /api/claims/:id/items/:clientRef/amount.
type UpdateAmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SubmitClaimResponse pairs the frozen claim with its final computation.
type SubmitClaimResponse struct {
	Claim       *entity.Claim            `json:"claim"`
	Computation *entity.ClaimComputation `json:"computation"`
}

// CreateClaim handles POST /api/claims
func (h *Handlers) CreateClaim(c *gin.Context) {
	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "application_id is required",
		})
		return
	}

	claim, err := h.claims.CreateFromApplication(c.Request.Context(), req.ApplicationID)
	if err != nil {
		h.respondError(c, err, "application")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    claim,
	})
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	claim, err := h.claims.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "claim")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    claim,
	})
}

// AddClaimItem handles POST /api/claims/:id/items
func (h *Handlers) AddClaimItem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var item entity.ClaimItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid claim item body",
		})
		return
	}

	added, err := h.claims.AddAdHocItem(c.Request.Context(), id, item)
	if err != nil {
		h.respondError(c, err, "claim")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    added,
	})
}

// UpdateClaimItemAmount handles PUT /api/claims/:id/items/:clientRef/amount
func (h *Handlers) UpdateClaimItemAmount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	clientRef := c.Param("clientRef")

	var req UpdateAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "amount is required",
		})
		return
	}

	if err := h.claims.UpdateItemAmount(c.Request.Context(), id, clientRef, req.Amount); err != nil {
		h.respondError(c, err, "claim item")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// AttachReceipt handles POST /api/claims/:id/receipts. The multipart form
// carries the client_ref of the target item and the receipt file; the
// pairing is explicit, never positional.
func (h *Handlers) AttachReceipt(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	clientRef := c.PostForm("client_ref")
	if clientRef == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "client_ref is required",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "file is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "failed to open uploaded file",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "failed to read uploaded file",
		})
		return
	}

	item, err := h.claims.AttachReceipt(c.Request.Context(), id, clientRef, fileHeader.Filename, content)
	if err != nil {
		h.respondError(c, err, "claim item")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    item,
	})
}

// ValidateClaim handles POST /api/claims/:id/validate
func (h *Handlers) ValidateClaim(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	computation, err := h.claims.Validate(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "claim")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    computation,
	})
}

// SubmitClaim handles POST /api/claims/:id/submit
func (h *Handlers) SubmitClaim(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	claim, computation, err := h.claims.Submit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "claim")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: SubmitClaimResponse{
			Claim:       claim,
			Computation: computation,
		},
	})
}

// GetStatement handles GET /api/claims/:id/statement. The statement is
// rendered on demand and served as an attachment.
func (h *Handlers) GetStatement(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	claim, err := h.claims.Get(ctx, id)
	if err != nil {
		h.respondError(c, err, "claim")
		return
	}
	app, err := h.travel.Get(ctx, claim.ApplicationID)
	if err != nil {
		h.respondError(c, err, "application")
		return
	}
	computation, err := h.claims.Validate(ctx, id)
	if err != nil {
		h.respondError(c, err, "claim")
		return
	}

	types, err := h.master.ExpenseTypes(ctx)
	if err != nil {
		h.respondError(c, err, "expense types")
		return
	}
	typeNames := make(map[int64]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}

	filename := fmt.Sprintf("statement-claim-%d.xlsx", id)
	outputPath := filepath.Join(h.statementDir, filename)
	if err := h.statements.Generate(app, claim, computation, typeNames, outputPath); err != nil {
		h.logger.Error("Failed to generate statement", "claim_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to generate statement",
		})
		return
	}

	c.FileAttachment(outputPath, filename)
}
