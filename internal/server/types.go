package server

// StatusResponse is returned by the health check.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
