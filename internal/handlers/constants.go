package handlers

// User-facing error messages
const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Authentication required"
	ErrInvalidToken        = "Invalid or expired token"
	ErrTooManyRequests     = "Too many requests"
	ErrSessionNotFound     = "Session not found"
	ErrGameNotFound        = "Game not found"
	ErrForbidden           = "Session belongs to another player"
	ErrWrongGame           = "Event does not apply to this game"
	ErrLevelNotComplete    = "Level is not complete"
	ErrInternalServerError = "Internal server error"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20
