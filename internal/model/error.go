package model

// ErrorDetail is the error body used by the API: {"detail": "..."}.
type ErrorDetail struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
