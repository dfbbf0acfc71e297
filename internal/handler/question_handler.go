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

type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Create godoc
// POST /api/v1/supervisor/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Get godoc
// GET /api/v1/supervisor/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// ListBySubject godoc
// GET /api/v1/supervisor/subjects/:id/questions
func (h *QuestionHandler) ListBySubject(c *gin.Context) {
	subjectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	questions, total, err := h.questionService.ListBySubject(c.Request.Context(), subjectID, page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions},
		response.NewPagination(page, perPage, total))
}

// Update godoc
// PUT /api/v1/supervisor/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	question, decision, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"question": question,
		"decision": decision,
	})
}

// Delete godoc
// DELETE /api/v1/supervisor/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}

// AddAnswer godoc
// POST /api/v1/supervisor/questions/:id/answers
func (h *QuestionHandler) AddAnswer(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	var req model.AnswerPayload
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	answer, err := h.questionService.AddAnswer(c.Request.Context(), questionID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"answer": answer})
}

// UpdateAnswer godoc
// PUT /api/v1/supervisor/questions/:id/answers/:answer_id
func (h *QuestionHandler) UpdateAnswer(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}
	answerID, err := uuid.Parse(c.Param("answer_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	var req model.UpdateAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	answer, decision, err := h.questionService.UpdateAnswer(c.Request.Context(), questionID, answerID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"answer":   answer,
		"decision": decision,
	})
}
