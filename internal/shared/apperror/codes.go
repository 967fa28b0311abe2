package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput     = "INVALID_INPUT"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInvalidState     = "INVALID_STATE"
	CodeProcessing       = "PROCESSING"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeInvalidRange     = "INVALID_RANGE"
	CodeUnsupportedRange = "UNSUPPORTED_RANGE"
	CodeBackdated        = "BACKDATED"
	CodePriorToJoining   = "PRIOR_TO_JOINING"
	CodeOverlap          = "OVERLAP"
	CodeInsufficient     = "INSUFFICIENT_BALANCE"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
