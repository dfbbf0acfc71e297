package handler

import (
	"errors"
	"net/http"

	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// failFromError translates service-layer errors into HTTP status codes and
// localized error envelopes.
func failFromError(c *gin.Context, err error) {
	loc := response.RequestLocale(c)

	var setErr *model.AnswerSetError
	if errors.As(err, &setErr) {
		response.Fail(c, http.StatusBadRequest, loc, answerSetCode(setErr.Reason))
		return
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, loc, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, loc, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrSubjectCodeTaken):
		response.Fail(c, http.StatusConflict, loc, response.ErrSubjectCodeTaken)
	case errors.Is(err, service.ErrSubjectHasContent):
		response.Fail(c, http.StatusConflict, loc, response.ErrSubjectHasContent)
	case errors.Is(err, service.ErrContentInUse):
		response.Fail(c, http.StatusConflict, loc, response.ErrContentInUse)
	case errors.Is(err, service.ErrQuestionInUse):
		response.Fail(c, http.StatusConflict, loc, response.ErrQuestionHasUsage)
	case errors.Is(err, service.ErrTestNotPublished), errors.Is(err, service.ErrTestNotLatest):
		response.Fail(c, http.StatusConflict, loc, response.ErrTestNotPublished)
	case errors.Is(err, service.ErrInsufficientQuestions):
		response.Fail(c, http.StatusConflict, loc, response.ErrInsufficientQuestions)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, loc, response.ErrNotSessionOwner)
	case errors.Is(err, service.ErrSessionAlreadySubmitted):
		response.Fail(c, http.StatusConflict, loc, response.ErrSessionAlreadySubmitted)
	case errors.Is(err, service.ErrSessionNotSubmitted):
		response.Fail(c, http.StatusConflict, loc, response.ErrSessionNotSubmitted)
	case errors.Is(err, service.ErrTimeLimitExceeded):
		response.Fail(c, http.StatusConflict, loc, response.ErrTimeLimitExceeded)
	case errors.Is(err, service.ErrNotEssayQuestion), errors.Is(err, service.ErrPointsExceedMaximum):
		response.Fail(c, http.StatusBadRequest, loc, response.ErrInvalidPayload)
	default:
		response.Fail(c, http.StatusInternalServerError, loc, response.ErrInternal)
	}
}

func answerSetCode(reason string) response.ErrCode {
	switch reason {
	case model.ReasonAnswerCountRange:
		return response.ErrAnswerCountRange
	case model.ReasonCorrectCount:
		return response.ErrAnswerCorrectCount
	case model.ReasonInactiveCorrect:
		return response.ErrAnswerInactiveTrue
	case model.ReasonEssayAnswerCount, model.ReasonEssayCorrectCount:
		return response.ErrEssayAnswerCount
	case model.ReasonEssayModelEmpty:
		return response.ErrEssayModelEmpty
	}
	return response.ErrValidation
}
