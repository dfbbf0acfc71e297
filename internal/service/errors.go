package service

import "errors"

// Domain Errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrSubjectCodeTaken  = errors.New("subject code already in use")
	ErrSubjectHasContent = errors.New("subject still has questions or tests")

	ErrContentInUse  = errors.New("content is referenced by an active session")
	ErrQuestionInUse = errors.New("question has answers or recorded session usage")

	ErrTestNotPublished        = errors.New("test is not published")
	ErrTestNotLatest           = errors.New("test version is superseded")
	ErrInsufficientQuestions   = errors.New("not enough active questions for the test composition")
	ErrNotSessionOwner         = errors.New("session belongs to another learner")
	ErrSessionAlreadyActive    = errors.New("an in-progress session already exists for this test")
	ErrSessionAlreadySubmitted = errors.New("session has already been submitted")
	ErrSessionNotSubmitted     = errors.New("session has not been submitted yet")
	ErrTimeLimitExceeded       = errors.New("submission arrived after the time limit")
	ErrNotEssayQuestion        = errors.New("question is not an essay question")
	ErrPointsExceedMaximum     = errors.New("awarded points exceed the question maximum")
)
