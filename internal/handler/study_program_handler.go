package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StudyProgramHandler struct {
	programService service.StudyProgramService
}

func NewStudyProgramHandler(programService service.StudyProgramService) *StudyProgramHandler {
	return &StudyProgramHandler{programService: programService}
}

func (h *StudyProgramHandler) RegisterRoutes(router *gin.RouterGroup) {
	programs := router.Group("/programs")
	{
		programs.GET("", middleware.RequireAuth(), h.ListPrograms)
		programs.GET("/:id", middleware.RequireAuth(), h.GetProgram)
		programs.POST("", middleware.RequirePermission("programs.manage"), h.CreateProgram)
		programs.PUT("/:id", middleware.RequirePermission("programs.manage"), h.UpdateProgram)
	}
}

// ListPrograms handles GET /programs
// @Summary      List study programs
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Paginated
// @Router       /programs [get]
func (h *StudyProgramHandler) ListPrograms(c *gin.Context) {
	params := pagination.Parse(c)

	programs, total, err := h.programService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Page(programs, total, params.Page, params.Limit))
}

// GetProgram handles GET /programs/:id
// @Summary      Get a study program
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Program ID"
// @Success      200  {object}  response.Response{data=service.StudyProgramResponse}
// @Failure      404  {object}  response.Response
// @Router       /programs/{id} [get]
func (h *StudyProgramHandler) GetProgram(c *gin.Context) {
	program, err := h.programService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, program))
}

// CreateProgram handles POST /programs
// @Summary      Create a study program
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateStudyProgramRequest  true  "Program Payload"
// @Success      201      {object}  response.Response{data=service.StudyProgramResponse}
// @Failure      400      {object}  response.Response
// @Router       /programs [post]
func (h *StudyProgramHandler) CreateProgram(c *gin.Context) {
	var req service.CreateStudyProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	program, err := h.programService.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, program))
}

// UpdateProgram handles PUT /programs/:id
// @Summary      Update a study program
// @Description  Updates program metadata and the koordinator PKL / kaprodi assignments used for future submissions
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true  "Program ID"
// @Param        payload  body      service.UpdateStudyProgramRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.StudyProgramResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /programs/{id} [put]
func (h *StudyProgramHandler) UpdateProgram(c *gin.Context) {
	var req service.UpdateStudyProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	program, err := h.programService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, program))
}
