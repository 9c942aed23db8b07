package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Quiz flow ─────────────────────────────────────────────────────
	ErrInvalidState           ErrCode = "INVALID_STATE"
	ErrMalformedAnswer        ErrCode = "MALFORMED_ANSWER"
	ErrExhaustedBank          ErrCode = "EXHAUSTED_BANK"
	ErrConcurrentModification ErrCode = "CONCURRENT_MODIFICATION"

	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired   ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid    ErrCode = "TOKEN_INVALID"
	ErrInvalidPassword ErrCode = "INVALID_PASSWORD"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
// Messages are in Russian, the language of the quiz audience.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Quiz flow ─────────────────────────────────────────────────────
	case ErrInvalidState:
		return "Тест уже завершён или ещё не начат."
	case ErrMalformedAnswer:
		return "Ответ имеет неверный формат."
	case ErrExhaustedBank:
		return "Недостаточно вопросов для выбранного уровня."
	case ErrConcurrentModification:
		return "Предыдущий ответ ещё обрабатывается. Попробуйте ещё раз."

	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Требуется токен сессии."
	case ErrTokenInvalid:
		return "Токен сессии недействителен."
	case ErrInvalidPassword:
		return "Неверный пароль."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Проверьте правильность заполнения полей."
	case ErrInvalidPayload:
		return "Тело запроса имеет неверный формат."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ресурс не найден."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Слишком много запросов. Попробуйте позже."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Внутренняя ошибка сервера."
	default:
		return "Произошла непредвиденная ошибка."
	}
}
