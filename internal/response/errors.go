package response

// ErrCode is a typed error code enum for consistent API error identification.
// Codes are machine-stable: clients localize on the code, never the message.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrLearnerAccessOnly  ErrCode = "LEARNER_ACCESS_ONLY"
	ErrSupervisorOnly     ErrCode = "SUPERVISOR_ACCESS_ONLY"
	ErrNotSessionOwner    ErrCode = "NOT_SESSION_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Content authoring ─────────────────────────────────────────────
	ErrSubjectCodeTaken    ErrCode = "SUBJECT_CODE_TAKEN"
	ErrSubjectHasContent   ErrCode = "SUBJECT_HAS_CONTENT"
	ErrQuestionHasUsage    ErrCode = "QUESTION_HAS_USAGE"
	ErrContentInUse        ErrCode = "CONTENT_IN_USE"
	ErrAnswerCountRange    ErrCode = "ANSWER_COUNT_OUT_OF_RANGE"
	ErrAnswerCorrectCount  ErrCode = "ANSWER_CORRECT_COUNT_INVALID"
	ErrAnswerInactiveTrue  ErrCode = "ANSWER_INACTIVE_CORRECT"
	ErrEssayAnswerCount    ErrCode = "ESSAY_ANSWER_COUNT_INVALID"
	ErrEssayModelEmpty     ErrCode = "ESSAY_MODEL_ANSWER_EMPTY"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrTestNotPublished        ErrCode = "TEST_NOT_PUBLISHED"
	ErrInsufficientQuestions   ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrSessionAlreadySubmitted ErrCode = "SESSION_ALREADY_SUBMITTED"
	ErrSessionNotSubmitted     ErrCode = "SESSION_NOT_SUBMITTED"
	ErrTimeLimitExceeded       ErrCode = "TIME_LIMIT_EXCEEDED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// messages holds per-locale human-readable texts. English is the fallback
// for any locale or code without an entry.
var messages = map[Locale]map[ErrCode]string{
	LocaleEN: {
		ErrInvalidCredentials: "Email or password is incorrect.",
		ErrSessionInvalidated: "Your login session has ended. Please sign in again.",
		ErrTokenRequired:      "An authentication token is required.",
		ErrTokenInvalid:       "The authentication token is invalid.",

		ErrForbidden:         "You do not have permission to access this resource.",
		ErrLearnerAccessOnly: "This resource is restricted to learners.",
		ErrSupervisorOnly:    "This resource is restricted to supervisors.",
		ErrNotSessionOwner:   "This test session belongs to another user.",

		ErrValidation:     "Validation failed. Please check your input.",
		ErrInvalidID:      "Invalid ID format.",
		ErrInvalidPayload: "Invalid request payload.",

		ErrNotFound: "Resource not found.",
		ErrConflict: "The resource already exists.",

		ErrSubjectCodeTaken:   "A subject with this code already exists.",
		ErrSubjectHasContent:  "The subject still owns questions or tests and cannot be deleted.",
		ErrQuestionHasUsage:   "The question has answers or recorded usage and cannot be deleted.",
		ErrContentInUse:       "The content is part of a test session currently in progress.",
		ErrAnswerCountRange:   "A multiple-choice question needs between 2 and 4 active answers.",
		ErrAnswerCorrectCount: "Exactly one active answer must be marked correct.",
		ErrAnswerInactiveTrue: "An inactive answer cannot be marked correct.",
		ErrEssayAnswerCount:   "An essay question can have at most one active answer.",
		ErrEssayModelEmpty:    "The model essay answer text must not be empty.",

		ErrTestNotPublished:        "This test is not published.",
		ErrInsufficientQuestions:   "Not enough active questions to build this test.",
		ErrSessionAlreadySubmitted: "This test session has already been submitted.",
		ErrSessionNotSubmitted:     "This test session has not been submitted yet.",
		ErrTimeLimitExceeded:       "The time limit for this test session has passed.",

		ErrRateLimitExceeded: "Too many requests. Please try again later.",

		ErrInternal: "An internal server error occurred.",
	},
	LocaleID: {
		ErrInvalidCredentials: "Email atau kata sandi salah.",
		ErrSessionInvalidated: "Sesi Anda telah berakhir. Silakan login kembali.",
		ErrTokenRequired:      "Token autentikasi diperlukan.",
		ErrTokenInvalid:       "Token autentikasi tidak valid.",

		ErrForbidden:         "Anda tidak memiliki izin untuk mengakses sumber daya ini.",
		ErrLearnerAccessOnly: "Sumber daya ini terbatas untuk peserta.",
		ErrSupervisorOnly:    "Sumber daya ini terbatas untuk pengawas.",
		ErrNotSessionOwner:   "Sesi ujian ini milik pengguna lain.",

		ErrValidation:     "Validasi gagal. Silakan periksa masukan Anda.",
		ErrInvalidID:      "Format ID tidak valid.",
		ErrInvalidPayload: "Payload permintaan tidak valid.",

		ErrNotFound: "Sumber daya tidak ditemukan.",
		ErrConflict: "Sumber daya sudah ada.",

		ErrSubjectCodeTaken:   "Mata pelajaran dengan kode ini sudah ada.",
		ErrSubjectHasContent:  "Mata pelajaran masih memiliki soal atau ujian dan tidak dapat dihapus.",
		ErrQuestionHasUsage:   "Soal memiliki jawaban atau riwayat penggunaan dan tidak dapat dihapus.",
		ErrContentInUse:       "Konten sedang digunakan dalam sesi ujian yang berlangsung.",
		ErrAnswerCountRange:   "Soal pilihan ganda membutuhkan 2 sampai 4 jawaban aktif.",
		ErrAnswerCorrectCount: "Tepat satu jawaban aktif harus ditandai benar.",
		ErrAnswerInactiveTrue: "Jawaban nonaktif tidak boleh ditandai benar.",
		ErrEssayAnswerCount:   "Soal esai hanya boleh memiliki satu jawaban aktif.",
		ErrEssayModelEmpty:    "Teks jawaban model esai tidak boleh kosong.",

		ErrTestNotPublished:        "Ujian ini belum dipublikasikan.",
		ErrInsufficientQuestions:   "Soal aktif tidak cukup untuk menyusun ujian ini.",
		ErrSessionAlreadySubmitted: "Sesi ujian ini sudah dikumpulkan.",
		ErrSessionNotSubmitted:     "Sesi ujian ini belum dikumpulkan.",
		ErrTimeLimitExceeded:       "Batas waktu sesi ujian ini telah berakhir.",

		ErrRateLimitExceeded: "Terlalu banyak permintaan. Silakan coba lagi nanti.",

		ErrInternal: "Terjadi kesalahan server internal.",
	},
}

// GetMessage returns the human-readable message for a code in the given
// locale, falling back to English and then to a generic text.
func GetMessage(loc Locale, code ErrCode) string {
	if m, ok := messages[loc]; ok {
		if msg, ok := m[code]; ok {
			return msg
		}
	}
	if msg, ok := messages[LocaleEN][code]; ok {
		return msg
	}
	return "An unexpected error occurred."
}
