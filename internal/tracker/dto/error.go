package dto

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ActionResponse is the response body for mutating endpoints.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
