package dto

// ErrorResponse is the error envelope for every endpoint:
// {"success": false, "message": "..."} with the status code carrying the class.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Error(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message}
}

// MessageResponse is the success envelope for endpoints with no payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func OK(message string) MessageResponse {
	return MessageResponse{Success: true, Message: message}
}
