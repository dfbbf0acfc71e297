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

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ─── Learner operations ──────────────────────────────────────────────

// Start godoc
// POST /api/v1/learner/tests/:id/sessions
// Starting is idempotent: an existing in-progress session is returned.
func (h *SessionHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// Paper godoc
// GET /api/v1/learner/sessions/:id/paper
func (h *SessionHandler) Paper(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	paper, err := h.sessionService.GetPaper(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// State godoc
// GET /api/v1/learner/sessions/:id/state
func (h *SessionHandler) State(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.GetState(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// SaveDrafts godoc
// PUT /api/v1/learner/sessions/:id/drafts
func (h *SessionHandler) SaveDrafts(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	var req model.SaveDraftRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.SaveDrafts(c.Request.Context(), sessionID, claims.UserID, &req); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "drafts saved"})
}

// Submit godoc
// POST /api/v1/learner/sessions/:id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	var req model.SubmitSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Submit(c.Request.Context(), sessionID, claims.UserID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// History godoc
// GET /api/v1/learner/sessions
func (h *SessionHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessions, err := h.sessionService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Review godoc
// GET /api/v1/learner/sessions/:id
// Full review with snapshots and recorded answers; owner only.
func (h *SessionHandler) Review(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	detail, err := h.sessionService.GetDetail(c.Request.Context(), sessionID, claims.UserID, false)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"detail": detail})
}

// ─── Supervisor operations ───────────────────────────────────────────

// ListByTest godoc
// GET /api/v1/supervisor/tests/:id/sessions
func (h *SessionHandler) ListByTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, total, err := h.sessionService.ListByTest(c.Request.Context(), testID, page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"sessions": results},
		response.NewPagination(page, perPage, total))
}

// Detail godoc
// GET /api/v1/supervisor/sessions/:id
func (h *SessionHandler) Detail(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	detail, err := h.sessionService.GetDetail(c.Request.Context(), sessionID, claims.UserID, true)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"detail": detail})
}

// Grade godoc
// POST /api/v1/supervisor/sessions/:id/grade
func (h *SessionHandler) Grade(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrInvalidID)
		return
	}

	var req model.GradeSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.RequestLocale(c), response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.GradeEssays(c.Request.Context(), sessionID, &req, claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}
