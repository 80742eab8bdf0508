package handler

import (
	"io"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

type LetterHandler struct {
	letterService     service.LetterService
	attachmentService service.AttachmentService
}

// NewLetterHandler sets up the routing dependencies for letter endpoints
func NewLetterHandler(letterService service.LetterService, attachmentService service.AttachmentService) *LetterHandler {
	return &LetterHandler{letterService: letterService, attachmentService: attachmentService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *LetterHandler) RegisterRoutes(router *gin.RouterGroup) {
	letters := router.Group("/letters")
	{
		letters.POST("", middleware.RequireRole(model.RoleStudent), h.Submit)
		letters.GET("", middleware.RequireAuth(), h.ListLetters)
		letters.GET("/:id", middleware.RequireAuth(), h.GetLetter)
		letters.GET("/:id/history", middleware.RequireAuth(), h.ListHistory)

		letters.PUT("/:id/approve", middleware.RequireAuth(), h.Approve)
		letters.PUT("/:id/reject", middleware.RequireAuth(), h.Reject)
		letters.PUT("/:id/revise", middleware.RequireAuth(), h.Revise)
		letters.PUT("/:id/self-revise", middleware.RequireRole(model.RoleStudent), h.SelfRevise)
		letters.PUT("/:id/resubmit", middleware.RequireRole(model.RoleStudent), h.Resubmit)
		letters.PUT("/:id/cancel", middleware.RequireRole(model.RoleStudent), h.Cancel)

		letters.POST("/:id/attachments", middleware.RequireRole(model.RoleStudent), h.UploadAttachment)
		letters.GET("/:id/attachments", middleware.RequireAuth(), h.ListAttachments)
		letters.DELETE("/:id/attachments/:attachmentID", middleware.RequireRole(model.RoleStudent), h.DeactivateAttachment)
	}
}

// Submit creates a new letter request and routes it to the first approver
// @Summary      Submit a letter request
// @Description  Creates a PKL letter, freezes its approver chain and places it at step 1
// @Tags         letters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitLetterRequest  true  "Submission Payload"
// @Success      201      {object}  response.Response{data=service.LetterResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /letters [post]
func (h *LetterHandler) Submit(c *gin.Context) {
	var req service.SubmitLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	letter, err := h.letterService.Submit(c.Request.Context(), callerID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, letter))
}

// ListLetters returns letters visible to the caller
// @Summary      List letters
// @Description  Lists letters, optionally filtered by status, ownership (mine=true) or current assignment (assigned=true)
// @Tags         letters
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "PROCESSING | COMPLETED | REJECTED | CANCELLED"
// @Param        mine      query     bool    false  "Only letters created by the caller"
// @Param        assigned  query     bool    false  "Only letters waiting on the caller"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Paginated
// @Router       /letters [get]
func (h *LetterHandler) ListLetters(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.LetterFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if caller, err := uuid.Parse(callerID(c)); err == nil {
		if c.Query("mine") == "true" {
			filter.CreatedBy = &caller
		}
		if c.Query("assigned") == "true" {
			filter.AssigneeID = &caller
		}
	}

	letters, total, err := h.letterService.ListLetters(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Page(letters, total, params.Page, params.Limit))
}

// GetLetter returns one letter with its frozen approver chain
// @Summary      Get a letter
// @Tags         letters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  response.Response{data=service.LetterResponse}
// @Failure      404  {object}  response.Response
// @Router       /letters/{id} [get]
func (h *LetterHandler) GetLetter(c *gin.Context) {
	letter, err := h.letterService.GetLetter(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, letter))
}

// ListHistory returns the letter's full append-only ledger
// @Summary      Letter history
// @Description  Returns every workflow event of the letter in chronological order
// @Tags         letters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  response.Response{data=[]service.HistoryResponse}
// @Failure      404  {object}  response.Response
// @Router       /letters/{id}/history [get]
func (h *LetterHandler) ListHistory(c *gin.Context) {
	history, err := h.letterService.ListHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// Approve advances the letter one step
// @Summary      Approve at the current step
// @Description  Advances the letter to the next step; the wakil dekan step additionally requires a signature data URL
// @Tags         letters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true   "Letter ID"
// @Param        payload  body      service.ApproveLetterRequest  false  "Optional comment / signature"
// @Success      200      {object}  response.Response{data=service.LetterResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /letters/{id}/approve [put]
func (h *LetterHandler) Approve(c *gin.Context) {
	var req service.ApproveLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body — comment and signature are contextual
		req = service.ApproveLetterRequest{}
	}

	letter, err := h.letterService.Approve(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, letter))
}

// Reject terminates the letter with a mandatory comment
// @Summary      Reject the letter
// @Tags         letters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Letter ID"
// @Param        payload  body      service.CommentRequest  true  "Rejection comment (min 10 chars)"
// @Success      200      {object}  response.Response{data=service.LetterResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /letters/{id}/reject [put]
func (h *LetterHandler) Reject(c *gin.Context) {
	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	letter, err := h.letterService.Reject(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, letter))
}

// Revise sends the letter back one step with a mandatory comment
// @Summary      Request a revision
// @Description  Moves the letter back to the previous step (step 1 revises in place)
// @Tags         letters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Letter ID"
// @Param        payload  body      service.CommentRequest  true  "Revision comment (min 10 chars)"
// @Success      200      {object}  response.Response{data=service.LetterResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /letters/{id}/revise [put]
func (h *LetterHandler) Revise(c *gin.Context) {
	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	letter, err := h.letterService.Revise(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, letter))
}

// SelfRevise lets the requester pull the letter back to step 1
// @Summary      Self-revise
// @Description  The requester resets the letter to step 1; impossible once signed
// @Tags         letters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  response.Response{data=service.LetterResponse}
// @Failure      409  {object}  response.Response
// @Router       /letters/{id}/self-revise [put]
func (h *LetterHandler) SelfRevise(c *gin.Context) {
	letter, err := h.letterService.SelfRevise(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, letter))
}

// Resubmit updates the form values after a revision request
// @Summary      Resubmit after revision
// @Description  Replaces the form values and records the resubmission; only legal after at least one revision
// @Tags         letters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Letter ID"
// @Param        payload  body      service.ResubmitLetterRequest  true  "Updated form values"
// @Success      200      {object}  response.Response{data=service.LetterResponse}
// @Failure      400      {object}  response.Response
// @Router       /letters/{id}/resubmit [put]
func (h *LetterHandler) Resubmit(c *gin.Context) {
	var req service.ResubmitLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	letter, err := h.letterService.Resubmit(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, letter))
}

// Cancel terminates the letter at the requester's initiative
// @Summary      Cancel the letter
// @Description  The requester withdraws the letter; impossible once signed
// @Tags         letters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  response.Response{data=service.LetterResponse}
// @Failure      409  {object}  response.Response
// @Router       /letters/{id}/cancel [put]
func (h *LetterHandler) Cancel(c *gin.Context) {
	letter, err := h.letterService.Cancel(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, letter))
}

// UploadAttachment stores one supporting file for the letter
// @Summary      Upload an attachment
// @Description  Stores a supporting file (category: proposal, ktm or utama) for the first-approval gate
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true  "Letter ID"
// @Param        category  formData  string  true  "proposal | ktm | utama"
// @Param        file      formData  file    true  "The file"
// @Success      201       {object}  response.Response{data=service.AttachmentResponse}
// @Failure      400       {object}  response.Response
// @Router       /letters/{id}/attachments [post]
func (h *LetterHandler) UploadAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file: "+err.Error()))
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "File exceeds the 10 MiB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to open file: "+err.Error()))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read file: "+err.Error()))
		return
	}

	attachment, err := h.attachmentService.Upload(
		c.Request.Context(),
		c.Param("id"),
		callerID(c),
		c.PostForm("category"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		content,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, attachment))
}

// ListAttachments returns the letter's active attachments
// @Summary      List attachments
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  response.Response{data=[]service.AttachmentResponse}
// @Router       /letters/{id}/attachments [get]
func (h *LetterHandler) ListAttachments(c *gin.Context) {
	attachments, err := h.attachmentService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, attachments))
}

// DeactivateAttachment soft-removes one attachment
// @Summary      Remove an attachment
// @Description  Marks the attachment inactive; the stored file is kept for audit
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true  "Letter ID"
// @Param        attachmentID  path      string  true  "Attachment ID"
// @Success      200           {object}  response.Response
// @Failure      404           {object}  response.Response
// @Router       /letters/{id}/attachments/{attachmentID} [delete]
func (h *LetterHandler) DeactivateAttachment(c *gin.Context) {
	err := h.attachmentService.Deactivate(c.Request.Context(), c.Param("id"), c.Param("attachmentID"), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": true}))
}
