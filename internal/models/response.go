// internal/models/response.go
package models

type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
	Details   string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DestinationsResponse struct {
	Destinations []Destination `json:"destinations"`
}
