package handler

import (
	"net/http"
	"strconv"

	"github.com/examina/examina-backend/internal/middleware"
	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/examina/examina-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TestHandler struct {
	testService *service.TestService
}

func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// Create godoc
// POST /api/v1/supervisor/tests
func (h *TestHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Create(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// Get godoc
// GET /api/v1/supervisor/tests/:id
func (h *TestHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	test, err := h.testService.GetByID(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// ListBySubject godoc
// GET /api/v1/supervisor/subjects/:id/tests
func (h *TestHandler) ListBySubject(c *gin.Context) {
	subjectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	tests, total, err := h.testService.ListBySubject(c.Request.Context(), subjectID, page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"tests": tests},
		response.NewPagination(page, perPage, total))
}

// Update godoc
// PUT /api/v1/supervisor/tests/:id
func (h *TestHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	test, decision, err := h.testService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"test":     test,
		"decision": decision,
	})
}

// Delete godoc
// DELETE /api/v1/supervisor/tests/:id
func (h *TestHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "test deleted"})
}
