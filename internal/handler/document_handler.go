package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService  service.DocumentService
	numberingService service.NumberingService
}

func NewDocumentHandler(documentService service.DocumentService, numberingService service.NumberingService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, numberingService: numberingService}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	letters := router.Group("/letters")
	{
		letters.POST("/:id/versions", middleware.RequireRole(model.RoleAcademicSupervisor), h.PublishVersion)
		letters.GET("/:id/versions", middleware.RequireAuth(), h.ListVersions)
		letters.GET("/:id/versions/:version/download", middleware.RequireAuth(), h.DownloadVersion)
		letters.POST("/:id/number", middleware.RequireRole(model.RoleNumbering), h.AssignNumber)
	}
}

// PublishVersion renders and stores a new editable document version
// @Summary      Publish a document version
// @Description  The dosen PA renders the current form values into a new editable HTML version; the workflow position does not move
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true   "Letter ID"
// @Param        payload  body      service.PublishVersionRequest  false  "Optional reason"
// @Success      201      {object}  response.Response{data=service.VersionResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /letters/{id}/versions [post]
func (h *DocumentHandler) PublishVersion(c *gin.Context) {
	var req service.PublishVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Reason is optional
		req = service.PublishVersionRequest{}
	}

	version, err := h.documentService.PublishVersion(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, version))
}

// ListVersions returns the letter's document version chain
// @Summary      List document versions
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  response.Response{data=[]service.VersionResponse}
// @Failure      404  {object}  response.Response
// @Router       /letters/{id}/versions [get]
func (h *DocumentHandler) ListVersions(c *gin.Context) {
	versions, err := h.documentService.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, versions))
}

// DownloadVersion streams one stored version artifact
// @Summary      Download a document version
// @Tags         documents
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id       path  string  true  "Letter ID"
// @Param        version  path  int     true  "Version number"
// @Success      200      {file}    binary
// @Failure      404      {object}  response.Response
// @Router       /letters/{id}/versions/{version}/download [get]
func (h *DocumentHandler) DownloadVersion(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid version number"))
		return
	}

	download, err := h.documentService.DownloadVersion(c.Request.Context(), c.Param("id"), version)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+download.FileName+"\"")
	c.Data(http.StatusOK, download.MimeType, download.Content)
}

// AssignNumber runs the numbering saga and completes the letter
// @Summary      Assign the institutional number
// @Description  Reserves the next daily counter, renders the final PDF and completes the letter; this is the only path to COMPLETED
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true   "Letter ID"
// @Param        payload  body      service.AssignNumberRequest  false  "Letter type code (default PKL)"
// @Success      200      {object}  response.Response{data=service.NumberResponse}
// @Failure      409      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /letters/{id}/number [post]
func (h *DocumentHandler) AssignNumber(c *gin.Context) {
	var req service.AssignNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Type code is optional
		req = service.AssignNumberRequest{}
	}

	result, err := h.numberingService.AssignNumber(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
